package models

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// Specialization accepts either a plain string or a structured {"name": ...} value.
type Specialization struct {
	Name string `bson:"name" json:"name"`
}

func (s *Specialization) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		s.Name = text
		return nil
	}
	var structured struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &structured); err != nil {
		return fmt.Errorf("specialization must be a string or an object with a name: %w", err)
	}
	s.Name = structured.Name
	return nil
}

func (s Specialization) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Name)
}

// AvailabilityEntry is a practitioner-declared time window. Exactly one shape is populated:
// a free-text range such as "9am-5pm", or a date with discrete bookable slots.
type AvailabilityEntry struct {
	Range string   `bson:"range,omitempty" json:"-"`
	Date  string   `bson:"date,omitempty" json:"-"`
	Slots []string `bson:"slots,omitempty" json:"-"`
}

// RangeEntry builds a free-text availability entry.
func RangeEntry(text string) AvailabilityEntry {
	return AvailabilityEntry{Range: text}
}

// SlotEntry builds a discrete availability entry.
func SlotEntry(date string, slots ...string) AvailabilityEntry {
	return AvailabilityEntry{Date: date, Slots: slots}
}

// IsRange reports whether the entry is free text.
func (a AvailabilityEntry) IsRange() bool {
	return a.Date == "" && len(a.Slots) == 0
}

// String returns the entry as declared.
func (a AvailabilityEntry) String() string {
	if a.IsRange() {
		return a.Range
	}
	return a.Date + ": " + strings.Join(a.Slots, ", ")
}

func (a *AvailabilityEntry) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*a = RangeEntry(text)
		return nil
	}
	var pair struct {
		Date  string   `json:"date"`
		Slots []string `json:"slots"`
	}
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("availability entry must be a string or {date, slots}: %w", err)
	}
	*a = SlotEntry(pair.Date, pair.Slots...)
	return nil
}

func (a AvailabilityEntry) MarshalJSON() ([]byte, error) {
	if a.IsRange() {
		return json.Marshal(a.Range)
	}
	return json.Marshal(struct {
		Date  string   `json:"date"`
		Slots []string `json:"slots"`
	}{a.Date, a.Slots})
}

// Practitioner is a care provider offered in the practitioner list.
type Practitioner struct {
	ID             string              `bson:"id" json:"id"`
	Name           string              `bson:"name" json:"name"`
	Specialization Specialization      `bson:"specialization" json:"specialization"`
	Rating         *float64            `bson:"rating,omitempty" json:"rating,omitempty"` // 0-5, nil when unrated
	Experience     string              `bson:"experience" json:"experience"`
	Availability   []AvailabilityEntry `bson:"availability" json:"availability"`
}

// RatingLabel renders the rating for display; an absent rating is "N/A", never zero.
func (p Practitioner) RatingLabel() string {
	if p.Rating == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", *p.Rating)
}

// AvailabilityStrings lists every declared entry verbatim.
func (p Practitioner) AvailabilityStrings() []string {
	out := make([]string, 0, len(p.Availability))
	for _, a := range p.Availability {
		out = append(out, a.String())
	}
	return out
}
