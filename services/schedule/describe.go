package schedule

import (
	"fmt"
	"strings"

	"toltimed/models"
)

// Describe renders a human-readable summary of the frequency, weekdays and length.
func Describe(cfg models.ScheduleConfig) string {
	span := fmt.Sprintf("for %d %s", cfg.TotalDays, plural(cfg.TotalDays, "day", "days"))
	switch cfg.Frequency {
	case models.FrequencyDaily:
		return "Daily " + span
	case models.FrequencySpecificDays:
		if len(cfg.SelectedDays) == 0 {
			return "On selected days " + span
		}
		return "Every " + joinDays(cfg.SelectedDays) + " " + span
	case models.FrequencyEveryOtherDay:
		return "Every other day " + span
	case models.FrequencyWeekly:
		return "Once a week " + span
	}
	return "No schedule selected"
}

func joinDays(days []models.Weekday) string {
	names := make([]string, 0, len(days))
	for _, d := range days {
		s := string(d)
		if s == "" {
			continue
		}
		names = append(names, strings.ToUpper(s[:1])+s[1:])
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
