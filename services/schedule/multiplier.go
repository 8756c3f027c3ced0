package schedule

import "toltimed/models"

// Multiplier returns the number of billable sessions implied by cfg.
// Partial weeks and odd day counts round up; totalDays <= 0 yields 0.
func Multiplier(cfg models.ScheduleConfig) int {
	days := cfg.TotalDays
	if days <= 0 {
		return 0
	}
	switch cfg.Frequency {
	case models.FrequencyDaily:
		return days
	case models.FrequencySpecificDays:
		return ceilDiv(days, 7) * len(cfg.SelectedDays)
	case models.FrequencyEveryOtherDay:
		return ceilDiv(days, 2)
	case models.FrequencyWeekly:
		return ceilDiv(days, 7)
	}
	return 0
}

// Cost is price multiplied by the session count.
func Cost(price float64, cfg models.ScheduleConfig) float64 {
	return price * float64(Multiplier(cfg))
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
