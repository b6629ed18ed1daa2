package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSettingsHappyPath(t *testing.T) {
	cfg, fallbacks := ParseSettings(RawSettings{
		Mode:        "business_hours",
		Timezone:    "Europe/Berlin",
		WorkingDays: "Mon,Tue,Wed,Thu,Fri",
		StartTime:   "08:30",
		EndTime:     "18:00",
	})

	assert.Empty(t, fallbacks)
	assert.Equal(t, ModeBusinessHours, cfg.Mode)
	assert.Equal(t, "Europe/Berlin", cfg.Location.String())
	assert.Equal(t, 8*time.Hour+30*time.Minute, cfg.DayStart)
	assert.Equal(t, 18*time.Hour, cfg.DayEnd)
	assert.True(t, cfg.WorkingDays[time.Wednesday])
	assert.False(t, cfg.WorkingDays[time.Saturday])
	assert.NoError(t, cfg.Validate())
}

func TestParseSettingsFallbacks(t *testing.T) {
	cfg, fallbacks := ParseSettings(RawSettings{
		Mode:        "lunar_hours",
		Timezone:    "Mars/Olympus",
		WorkingDays: "Funday",
		StartTime:   "9am",
		EndTime:     "late",
	})

	settings := make(map[string]Fallback, len(fallbacks))
	for _, fb := range fallbacks {
		settings[fb.Setting] = fb
	}
	assert.Contains(t, settings, "sla_calculation_mode")
	assert.Contains(t, settings, "timezone")
	assert.Contains(t, settings, "working_days")
	assert.Contains(t, settings, "working_hour_start")
	assert.Contains(t, settings, "working_hour_end")

	assert.Equal(t, ModeCalendarHours, cfg.Mode)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 9*time.Hour, cfg.DayStart)
	assert.Equal(t, 17*time.Hour, cfg.DayEnd)
	for wd := time.Monday; wd <= time.Friday; wd++ {
		assert.True(t, cfg.WorkingDays[wd], "weekday %v should default to working", wd)
	}
}

func TestParseSettingsEmptyUsesDefaultsSilently(t *testing.T) {
	cfg, fallbacks := ParseSettings(RawSettings{})

	assert.Empty(t, fallbacks, "absent settings are defaults, not substitutions")
	assert.Equal(t, ModeCalendarHours, cfg.Mode)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestParseSettingsInvertedWindow(t *testing.T) {
	cfg, fallbacks := ParseSettings(RawSettings{
		Mode:      "business_hours",
		StartTime: "18:00",
		EndTime:   "09:00",
	})

	require.NotEmpty(t, fallbacks)
	assert.Equal(t, 9*time.Hour, cfg.DayStart)
	assert.Equal(t, 17*time.Hour, cfg.DayEnd)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	valid := utcBusinessConfig()
	assert.NoError(t, valid.Validate())

	noDays := utcBusinessConfig()
	noDays.WorkingDays = map[time.Weekday]bool{time.Monday: false}
	assert.ErrorIs(t, noDays.Validate(), ErrNoWorkingDays)

	inverted := utcBusinessConfig()
	inverted.DayStart, inverted.DayEnd = inverted.DayEnd, inverted.DayStart
	assert.Error(t, inverted.Validate())

	badMode := utcBusinessConfig()
	badMode.Mode = "half_hours"
	assert.Error(t, badMode.Validate())

	// calendar mode does not require working days
	calendarOnly := Config{Mode: ModeCalendarHours, Location: time.UTC, DayStart: 9 * time.Hour, DayEnd: 17 * time.Hour}
	assert.NoError(t, calendarOnly.Validate())
}
