package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"toltimed/models"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		text string
		want Range
	}{
		{"9am-5pm", Range{Parsed: true, Start: 540, End: 1020}},
		{"9AM - 5PM", Range{Parsed: true, Start: 540, End: 1020}},
		{" 12am-12pm ", Range{Parsed: true, Start: 0, End: 720}},
		{"12pm-11pm", Range{Parsed: true, Start: 720, End: 1380}},
		{"13pm-5pm", Unparsed},
		{"0am-5pm", Unparsed},
		{"9:30am-5pm", Unparsed},
		{"weekdays only", Unparsed},
		{"", Unparsed},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRange(tt.text))
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		text   string
		minute int
		ok     bool
	}{
		{"10:00", 600, true},
		{"00:15", 15, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"9:30 am", 570, true},
		{"12pm", 720, true},
		{"12:05AM", 5, true},
		{"noon", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ParseClock(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.minute, got)
			}
		})
	}
}

func TestValidateTimeWithinRange(t *testing.T) {
	p := models.Practitioner{Name: "Nurse Ada", Availability: []models.AvailabilityEntry{models.RangeEntry("9am-5pm")}}

	res := ValidateTime("10:00", p)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Message)

	assert.True(t, ValidateTime("09:00", p).Valid, "start is inclusive")
	assert.True(t, ValidateTime("17:00", p).Valid, "end is inclusive")
}

func TestValidateTimeOutsideRange(t *testing.T) {
	p := models.Practitioner{Name: "Nurse Ada", Availability: []models.AvailabilityEntry{models.RangeEntry("9am-5pm")}}

	res := ValidateTime("18:00", p)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Message, "9am-5pm")
}

func TestValidateTimeNoAvailabilityIsPermissive(t *testing.T) {
	assert.True(t, ValidateTime("03:00", models.Practitioner{}).Valid)
	assert.True(t, ValidateTime("garbage", models.Practitioner{}).Valid)
}

func TestValidateTimeSkipsUnparseableEntries(t *testing.T) {
	p := models.Practitioner{Availability: []models.AvailabilityEntry{
		models.RangeEntry("by appointment"),
		models.RangeEntry("6pm-10pm"),
	}}
	assert.True(t, ValidateTime("19:30", p).Valid)

	res := ValidateTime("08:00", p)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Message, "by appointment")
	assert.Contains(t, res.Message, "6pm-10pm")
}

func TestValidateTimeUnparseableCandidate(t *testing.T) {
	p := models.Practitioner{Availability: []models.AvailabilityEntry{models.RangeEntry("9am-5pm")}}
	res := ValidateTime("soonish", p)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Message, "9am-5pm")
}

func TestValidateTimeSlots(t *testing.T) {
	p := models.Practitioner{Availability: []models.AvailabilityEntry{
		models.SlotEntry("2026-04-01", "09:00", "2:30pm"),
		models.SlotEntry("2026-04-02", "11:00"),
	}}

	assert.True(t, ValidateTime("14:30", p).Valid)
	assert.True(t, ValidateTime("11:00", p).Valid)
	assert.False(t, ValidateTime("10:00", p).Valid)

	assert.True(t, ValidateTimeOn("2026-04-02", "11:00", p).Valid)
	res := ValidateTimeOn("2026-04-01", "11:00", p)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Message, "2026-04-01: 09:00, 2:30pm")
}
