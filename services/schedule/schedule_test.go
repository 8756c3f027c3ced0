package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toltimed/models"
)

func TestMultiplier(t *testing.T) {
	tests := []struct {
		name string
		cfg  models.ScheduleConfig
		want int
	}{
		{"daily is total days", models.ScheduleConfig{Frequency: models.FrequencyDaily, TotalDays: 7}, 7},
		{"every other day odd", models.ScheduleConfig{Frequency: models.FrequencyEveryOtherDay, TotalDays: 7}, 4},
		{"every other day even", models.ScheduleConfig{Frequency: models.FrequencyEveryOtherDay, TotalDays: 8}, 4},
		{"weekly rounds partial weeks up", models.ScheduleConfig{Frequency: models.FrequencyWeekly, TotalDays: 10}, 2},
		{"specific days", models.ScheduleConfig{
			Frequency:    models.FrequencySpecificDays,
			SelectedDays: []models.Weekday{models.Monday, models.Wednesday},
			TotalDays:    10,
		}, 4},
		{"specific days none selected", models.ScheduleConfig{Frequency: models.FrequencySpecificDays, TotalDays: 14}, 0},
		{"zero days", models.ScheduleConfig{Frequency: models.FrequencyWeekly, TotalDays: 0}, 0},
		{"negative days", models.ScheduleConfig{Frequency: models.FrequencyDaily, TotalDays: -3}, 0},
		{"unset frequency", models.ScheduleConfig{TotalDays: 10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Multiplier(tt.cfg))
		})
	}
}

func TestDailyMultiplierMatchesTotalDays(t *testing.T) {
	for days := 0; days <= 60; days++ {
		cfg := models.ScheduleConfig{Frequency: models.FrequencyDaily, TotalDays: days}
		require.Equal(t, days, Multiplier(cfg))
	}
}

func TestEveryOtherDayMultiplierIsHalfRoundedUp(t *testing.T) {
	for days := 0; days <= 60; days++ {
		cfg := models.ScheduleConfig{Frequency: models.FrequencyEveryOtherDay, TotalDays: days}
		require.Equal(t, (days+1)/2, Multiplier(cfg), "days=%d", days)
	}
}

func TestCostIsIdempotent(t *testing.T) {
	cfg := models.ScheduleConfig{
		Frequency:    models.FrequencySpecificDays,
		SelectedDays: []models.Weekday{models.Tuesday, models.Friday},
		TotalDays:    21,
	}
	first := Cost(35.5, cfg)
	second := Cost(35.5, cfg)
	assert.Equal(t, first, second)
	assert.Equal(t, 35.5*6, first)
}

func TestSetFrequencyClearsDays(t *testing.T) {
	cfg := models.ScheduleConfig{Frequency: models.FrequencySpecificDays}
	require.NoError(t, ToggleDay(&cfg, models.Friday))
	require.Len(t, cfg.SelectedDays, 1)

	SetFrequency(&cfg, models.FrequencyWeekly)
	assert.Empty(t, cfg.SelectedDays)

	SetFrequency(&cfg, models.FrequencySpecificDays)
	assert.Empty(t, cfg.SelectedDays, "stale weekdays must not come back")
}

func TestToggleDay(t *testing.T) {
	cfg := models.ScheduleConfig{Frequency: models.FrequencySpecificDays}
	require.NoError(t, ToggleDay(&cfg, models.Sunday))
	require.NoError(t, ToggleDay(&cfg, models.Monday))
	assert.Equal(t, []models.Weekday{models.Monday, models.Sunday}, cfg.SelectedDays)

	require.NoError(t, ToggleDay(&cfg, models.Sunday))
	assert.Equal(t, []models.Weekday{models.Monday}, cfg.SelectedDays)

	assert.Error(t, ToggleDay(&cfg, models.Weekday("someday")))
}

func TestToggleDayIgnoredOutsideSpecificDays(t *testing.T) {
	cfg := models.ScheduleConfig{Frequency: models.FrequencyDaily}
	require.NoError(t, ToggleDay(&cfg, models.Monday))
	assert.Empty(t, cfg.SelectedDays)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		cfg  models.ScheduleConfig
		want string
	}{
		{models.ScheduleConfig{Frequency: models.FrequencyDaily, TotalDays: 7}, "Daily for 7 days"},
		{models.ScheduleConfig{Frequency: models.FrequencyDaily, TotalDays: 1}, "Daily for 1 day"},
		{models.ScheduleConfig{Frequency: models.FrequencyEveryOtherDay, TotalDays: 10}, "Every other day for 10 days"},
		{models.ScheduleConfig{Frequency: models.FrequencyWeekly, TotalDays: 28}, "Once a week for 28 days"},
		{models.ScheduleConfig{
			Frequency:    models.FrequencySpecificDays,
			SelectedDays: []models.Weekday{models.Monday, models.Wednesday},
			TotalDays:    10,
		}, "Every Monday and Wednesday for 10 days"},
		{models.ScheduleConfig{
			Frequency:    models.FrequencySpecificDays,
			SelectedDays: []models.Weekday{models.Monday, models.Wednesday, models.Friday},
			TotalDays:    14,
		}, "Every Monday, Wednesday and Friday for 14 days"},
		{models.ScheduleConfig{Frequency: models.FrequencySpecificDays, TotalDays: 3}, "On selected days for 3 days"},
		{models.ScheduleConfig{}, "No schedule selected"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.cfg))
			assert.Equal(t, Describe(tt.cfg), Describe(tt.cfg))
		})
	}
}

func TestValidate(t *testing.T) {
	today := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	valid := models.ScheduleConfig{Frequency: models.FrequencyDaily, StartDate: "2026-03-10", TotalDays: 5}
	require.NoError(t, Validate(valid, today), "today is an acceptable start date")

	err := Validate(models.ScheduleConfig{
		Frequency: models.FrequencySpecificDays,
		StartDate: "2026-03-09",
		TotalDays: 0,
	}, today)
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ElementsMatch(t, []string{
		"select at least one day",
		"start date cannot be in the past",
		"total days must be positive",
	}, verr.Problems)

	err = Validate(models.ScheduleConfig{Frequency: "hourly", StartDate: "10/03/2026", TotalDays: 2}, today)
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Problems, 2)
}
