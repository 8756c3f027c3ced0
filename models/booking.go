package models

import (
	"strings"
	"time"
)

// SubjectKind records whom the booking is for.
type SubjectKind string

const (
	SubjectUnset SubjectKind = ""
	SubjectSelf  SubjectKind = "self"
	SubjectOther SubjectKind = "other"
)

// SelfSubject is collected when the account holder books for themselves.
type SelfSubject struct {
	Address    string `bson:"address" json:"address"`
	TestResult string `bson:"testResult,omitempty" json:"testResult,omitempty"` // attachment reference, optional
}

// OtherSubject is collected when booking for someone else. Every field is mandatory.
type OtherSubject struct {
	FirstName    string `bson:"firstName" json:"firstName"`
	LastName     string `bson:"lastName" json:"lastName"`
	Email        string `bson:"email" json:"email"`
	Phone        string `bson:"phone" json:"phone"`
	Address      string `bson:"address" json:"address"`
	Relationship string `bson:"relationship" json:"relationship"`
}

// BookingSubject is a tagged union: Kind selects which of Self or Other is meaningful.
type BookingSubject struct {
	Kind  SubjectKind   `bson:"kind" json:"kind"`
	Self  *SelfSubject  `bson:"self,omitempty" json:"self,omitempty"`
	Other *OtherSubject `bson:"other,omitempty" json:"other,omitempty"`
}

// BookingForSelf mirrors the tri-state self/other choice: nil while unset.
func (s BookingSubject) BookingForSelf() *bool {
	var v bool
	switch s.Kind {
	case SubjectSelf:
		v = true
	case SubjectOther:
		v = false
	default:
		return nil
	}
	return &v
}

// Clone returns a deep copy.
func (s BookingSubject) Clone() BookingSubject {
	out := BookingSubject{Kind: s.Kind}
	if s.Self != nil {
		self := *s.Self
		out.Self = &self
	}
	if s.Other != nil {
		other := *s.Other
		out.Other = &other
	}
	return out
}

// MissingFields lists the mandatory fields that are blank after trimming.
// An unset subject reports "bookingForSelf".
func (s BookingSubject) MissingFields() []string {
	blank := func(v string) bool { return strings.TrimSpace(v) == "" }
	var missing []string
	switch s.Kind {
	case SubjectSelf:
		if s.Self == nil || blank(s.Self.Address) {
			missing = append(missing, "address")
		}
	case SubjectOther:
		o := s.Other
		if o == nil {
			o = &OtherSubject{}
		}
		fields := []struct {
			name, value string
		}{
			{"firstName", o.FirstName},
			{"lastName", o.LastName},
			{"email", o.Email},
			{"phone", o.Phone},
			{"address", o.Address},
			{"relationship", o.Relationship},
		}
		for _, f := range fields {
			if blank(f.value) {
				missing = append(missing, f.name)
			}
		}
	default:
		missing = append(missing, "bookingForSelf")
	}
	return missing
}

// BookingPayload is handed to the submission endpoint.
type BookingPayload struct {
	SessionID      string            `bson:"sessionId" json:"sessionId"`
	UserID         string            `bson:"userId" json:"userId"`
	Services       []SelectedService `bson:"services" json:"services"`
	Practitioner   Practitioner      `bson:"practitioner" json:"practitioner"`
	Schedule       ScheduleConfig    `bson:"scheduleConfig" json:"scheduleConfig"`
	BookingForSelf bool              `bson:"bookingForSelf" json:"bookingForSelf"`
	Subject        BookingSubject    `bson:"bookingDetails" json:"bookingDetails"`
	Multiplier     int               `bson:"multiplier" json:"multiplier"`
	TotalCost      float64           `bson:"totalCost" json:"totalCost"`
	Currency       string            `bson:"currency" json:"currency"`
}

// Booking statuses.
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusPending   = "pending"
)

// Booking is the record returned by the submission endpoint once accepted.
type Booking struct {
	ID        string         `bson:"id" json:"id"`
	Status    string         `bson:"status" json:"status"`
	CreatedAt time.Time      `bson:"createdAt" json:"createdAt"`
	Payload   BookingPayload `bson:"payload" json:"payload"`
}

// Receipt is the route state passed to the receipt view.
type Receipt struct {
	BookingID           string    `json:"bookingId"`
	PractitionerName    string    `json:"practitionerName"`
	ScheduleDescription string    `json:"scheduleDescription"`
	StartDate           string    `json:"startDate"`
	TimeSlot            string    `json:"timeSlot"`
	TotalCost           float64   `json:"totalCost"`
	Currency            string    `json:"currency"`
	IssuedAt            time.Time `json:"issuedAt"`
	Booking             Booking   `json:"booking"`
}
