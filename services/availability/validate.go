package availability

import (
	"strings"

	"toltimed/models"
)

// Result is the outcome of checking a time against a practitioner's availability.
// Message is set only when Valid is false.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// ValidateTime checks selectedTime against every availability entry of p.
// A practitioner with no declared availability accepts any time.
// Entries that cannot be parsed never match and never raise an error.
func ValidateTime(selectedTime string, p models.Practitioner) Result {
	return validate("", selectedTime, p)
}

// ValidateTimeOn is ValidateTime where dated slot entries only count on date.
func ValidateTimeOn(date, selectedTime string, p models.Practitioner) Result {
	return validate(date, selectedTime, p)
}

func validate(date, selectedTime string, p models.Practitioner) Result {
	if len(p.Availability) == 0 {
		return Result{Valid: true}
	}
	if minute, ok := ParseClock(selectedTime); ok {
		for _, entry := range p.Availability {
			if entryAccepts(entry, date, minute) {
				return Result{Valid: true}
			}
		}
	}
	return Result{
		Valid:   false,
		Message: "Selected time is outside " + displayName(p) + "'s availability. Available: " + strings.Join(p.AvailabilityStrings(), "; "),
	}
}

func entryAccepts(entry models.AvailabilityEntry, date string, minute int) bool {
	if entry.IsRange() {
		return ParseRange(entry.Range).Contains(minute)
	}
	if date != "" && entry.Date != "" && entry.Date != date {
		return false
	}
	for _, slot := range entry.Slots {
		if m, ok := ParseClock(slot); ok && m == minute {
			return true
		}
	}
	return false
}

func displayName(p models.Practitioner) string {
	if p.Name == "" {
		return "the practitioner"
	}
	return p.Name
}
