package models

// Frequency is the recurrence of a care programme.
type Frequency string

const (
	FrequencyDaily         Frequency = "daily"
	FrequencySpecificDays  Frequency = "specific-days"
	FrequencyEveryOtherDay Frequency = "every-other-day"
	FrequencyWeekly        Frequency = "weekly"
)

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencySpecificDays, FrequencyEveryOtherDay, FrequencyWeekly:
		return true
	}
	return false
}

// Weekday is a lower-case English weekday name.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays is the canonical order used for display and storage.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Valid reports whether d is a known weekday.
func (d Weekday) Valid() bool {
	return d.Index() >= 0
}

// Index returns the position of d in Weekdays, or -1.
func (d Weekday) Index() int {
	for i, w := range Weekdays {
		if w == d {
			return i
		}
	}
	return -1
}

// DateLayout is the calendar date format used across the booking flow.
const DateLayout = "2006-01-02"

// ScheduleConfig is the wizard-local recurrence configuration.
// SelectedDays is non-empty only when Frequency is FrequencySpecificDays.
type ScheduleConfig struct {
	Frequency    Frequency `bson:"frequency" json:"frequency"`
	SelectedDays []Weekday `bson:"selectedDays,omitempty" json:"selectedDays,omitempty"`
	StartDate    string    `bson:"startDate" json:"startDate"` // YYYY-MM-DD
	TimeSlot     string    `bson:"timeSlot" json:"timeSlot"`
	TotalDays    int       `bson:"totalDays" json:"totalDays"`
}

// Clone returns a copy that shares no slices with c.
func (c ScheduleConfig) Clone() ScheduleConfig {
	out := c
	if c.SelectedDays != nil {
		out.SelectedDays = append([]Weekday(nil), c.SelectedDays...)
	}
	return out
}
