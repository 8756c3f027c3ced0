package availability

import (
	"regexp"
	"strconv"
	"strings"
)

// Range is the tagged result of parsing a free-text window such as "9am-5pm".
// When Parsed is false Start and End are meaningless.
type Range struct {
	Parsed bool
	Start  int // minutes since midnight
	End    int
}

// Unparsed is the zero Range.
var Unparsed = Range{}

// Contains reports whether minute falls in [Start, End].
func (r Range) Contains(minute int) bool {
	return r.Parsed && minute >= r.Start && minute <= r.End
}

var rangePattern = regexp.MustCompile(`(?i)^(\d+)(am|pm)\s*-\s*(\d+)(am|pm)$`)

// ParseRange parses "<h><am|pm>-<h><am|pm>" case-insensitively, with optional
// whitespace around the hyphen. Anything else is Unparsed.
func ParseRange(text string) Range {
	m := rangePattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return Unparsed
	}
	start, ok := twelveHour(m[1], m[2], 0)
	if !ok {
		return Unparsed
	}
	end, ok := twelveHour(m[3], m[4], 0)
	if !ok {
		return Unparsed
	}
	return Range{Parsed: true, Start: start, End: end}
}

// twelveHour converts an hour, minute and meridiem to minutes since midnight.
// 12am is midnight and 12pm is noon.
func twelveHour(hourText, meridiem string, minute int) (int, bool) {
	hour, err := strconv.Atoi(hourText)
	if err != nil || hour < 1 || hour > 12 {
		return 0, false
	}
	hour %= 12
	if strings.EqualFold(meridiem, "pm") {
		hour += 12
	}
	return hour*60 + minute, true
}

var (
	clock24Pattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	clock12Pattern = regexp.MustCompile(`(?i)^(\d{1,2})(?::(\d{2}))?\s*(am|pm)$`)
)

// ParseClock reads a candidate time: "HH:MM" on a 24-hour clock, or "h[:mm]am|pm".
func ParseClock(text string) (int, bool) {
	text = strings.TrimSpace(text)
	if m := clock24Pattern.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 || minute > 59 {
			return 0, false
		}
		return hour*60 + minute, true
	}
	if m := clock12Pattern.FindStringSubmatch(text); m != nil {
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
			if minute > 59 {
				return 0, false
			}
		}
		return twelveHour(m[1], m[3], minute)
	}
	return 0, false
}
