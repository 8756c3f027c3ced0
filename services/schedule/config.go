package schedule

import (
	"fmt"
	"time"

	"toltimed/models"
)

// SetFrequency changes the frequency. Leaving specific-days drops the selected weekdays
// so they cannot resurface on a later switch back.
func SetFrequency(cfg *models.ScheduleConfig, f models.Frequency) {
	cfg.Frequency = f
	if f != models.FrequencySpecificDays {
		cfg.SelectedDays = nil
	}
}

// ToggleDay adds or removes day. Ignored unless the frequency is specific-days.
func ToggleDay(cfg *models.ScheduleConfig, day models.Weekday) error {
	if !day.Valid() {
		return models.NewValidationError(fmt.Sprintf("unknown weekday %q", day))
	}
	if cfg.Frequency != models.FrequencySpecificDays {
		return nil
	}
	set := make(map[models.Weekday]bool, len(cfg.SelectedDays)+1)
	for _, d := range cfg.SelectedDays {
		set[d] = true
	}
	set[day] = !set[day]
	cfg.SelectedDays = canonicalDays(set)
	return nil
}

// SetDays replaces the weekday set. Ignored unless the frequency is specific-days.
func SetDays(cfg *models.ScheduleConfig, days []models.Weekday) error {
	if cfg.Frequency != models.FrequencySpecificDays {
		cfg.SelectedDays = nil
		return nil
	}
	set := make(map[models.Weekday]bool, len(days))
	for _, d := range days {
		if !d.Valid() {
			return models.NewValidationError(fmt.Sprintf("unknown weekday %q", d))
		}
		set[d] = true
	}
	cfg.SelectedDays = canonicalDays(set)
	return nil
}

func canonicalDays(set map[models.Weekday]bool) []models.Weekday {
	var out []models.Weekday
	for _, d := range models.Weekdays {
		if set[d] {
			out = append(out, d)
		}
	}
	return out
}

// Validate checks that cfg is complete. today is truncated to a date in its own location.
func Validate(cfg models.ScheduleConfig, today time.Time) error {
	var problems []string
	switch {
	case cfg.Frequency == "":
		problems = append(problems, "frequency is required")
	case !cfg.Frequency.Valid():
		problems = append(problems, fmt.Sprintf("unknown frequency %q", cfg.Frequency))
	case cfg.Frequency == models.FrequencySpecificDays && len(cfg.SelectedDays) == 0:
		problems = append(problems, "select at least one day")
	}

	if cfg.StartDate == "" {
		problems = append(problems, "start date is required")
	} else if start, err := time.ParseInLocation(models.DateLayout, cfg.StartDate, today.Location()); err != nil {
		problems = append(problems, fmt.Sprintf("start date %q is not YYYY-MM-DD", cfg.StartDate))
	} else if start.Before(midnight(today)) {
		problems = append(problems, "start date cannot be in the past")
	}

	if cfg.TotalDays <= 0 {
		problems = append(problems, "total days must be positive")
	}

	if len(problems) > 0 {
		return &models.ValidationError{Problems: problems}
	}
	return nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
