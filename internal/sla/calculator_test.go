package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// utcBusinessConfig is the calendar used by most fixtures: Mon-Fri 09:00-17:00 UTC.
func utcBusinessConfig() Config {
	return Config{
		Mode:     ModeBusinessHours,
		Location: time.UTC,
		WorkingDays: map[time.Weekday]bool{
			time.Monday:    true,
			time.Tuesday:   true,
			time.Wednesday: true,
			time.Thursday:  true,
			time.Friday:    true,
		},
		DayStart: 9 * time.Hour,
		DayEnd:   17 * time.Hour,
	}
}

func hoursPtr(h int) *int { return &h }

func TestComputeDueDateCalendarHours(t *testing.T) {
	cfg := Config{Mode: ModeCalendarHours, Location: time.UTC}
	start := time.Date(2024, 1, 5, 15, 0, 0, 0, time.UTC) // Friday 15:00

	for _, h := range []int{0, 1, 4, 24, 100} {
		due, err := ComputeDueDate(start, hoursPtr(h), cfg)
		require.NoError(t, err)
		require.NotNil(t, due)
		assert.Equal(t, start.Add(time.Duration(h)*time.Hour), *due, "h=%d", h)
	}
}

func TestComputeDueDateBusinessHours(t *testing.T) {
	cfg := utcBusinessConfig()

	tests := []struct {
		name  string
		start time.Time
		hours int
		want  time.Time
	}{
		{
			name:  "weekend skip",
			start: time.Date(2024, 1, 5, 15, 0, 0, 0, time.UTC), // Friday 15:00
			hours: 4,
			want:  time.Date(2024, 1, 8, 11, 0, 0, 0, time.UTC), // Monday 11:00
		},
		{
			name:  "lands exactly on end of day",
			start: time.Date(2024, 1, 5, 15, 0, 0, 0, time.UTC),
			hours: 10,
			want:  time.Date(2024, 1, 8, 17, 0, 0, 0, time.UTC), // Monday 17:00
		},
		{
			name:  "multi day skip",
			start: time.Date(2024, 1, 5, 15, 0, 0, 0, time.UTC),
			hours: 12,
			want:  time.Date(2024, 1, 9, 11, 0, 0, 0, time.UTC), // Tuesday 11:00
		},
		{
			name:  "weekend creation snaps to monday",
			start: time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC), // Saturday 12:00
			hours: 1,
			want:  time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC), // Monday 10:00
		},
		{
			name:  "before hours snap",
			start: time.Date(2024, 1, 8, 4, 0, 0, 0, time.UTC), // Monday 04:00
			hours: 2,
			want:  time.Date(2024, 1, 8, 11, 0, 0, 0, time.UTC),
		},
		{
			name:  "after hours rolls to next day",
			start: time.Date(2024, 1, 8, 18, 30, 0, 0, time.UTC), // Monday 18:30
			hours: 1,
			want:  time.Date(2024, 1, 9, 10, 0, 0, 0, time.UTC), // Tuesday 10:00
		},
		{
			name:  "zero hours inside window is unchanged",
			start: time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC),
			hours: 0,
			want:  time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "zero hours on weekend rolls forward",
			start: time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC),
			hours: 0,
			want:  time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC), // Monday 09:00
		},
		{
			name:  "spans three weekends",
			start: time.Date(2024, 1, 5, 15, 0, 0, 0, time.UTC),
			hours: 88, // 2h Fri + two full weeks (80h) + 6h
			want:  time.Date(2024, 1, 22, 15, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due, err := ComputeDueDate(tt.start, hoursPtr(tt.hours), cfg)
			require.NoError(t, err)
			require.NotNil(t, due)
			assert.True(t, tt.want.Equal(*due), "got %v, want %v", *due, tt.want)
		})
	}
}

func TestComputeDueDateNilHours(t *testing.T) {
	for _, cfg := range []Config{utcBusinessConfig(), {Mode: ModeCalendarHours, Location: time.UTC}} {
		due, err := ComputeDueDate(time.Date(2024, 1, 5, 15, 0, 0, 0, time.UTC), nil, cfg)
		require.NoError(t, err)
		assert.Nil(t, due)
	}
}

func TestComputeDueDateNegativeHours(t *testing.T) {
	_, err := ComputeDueDate(time.Now().UTC(), hoursPtr(-1), utcBusinessConfig())
	assert.Error(t, err)
}

func TestComputeDueDateIdempotent(t *testing.T) {
	cfg := utcBusinessConfig()
	start := time.Date(2024, 1, 5, 15, 0, 0, 0, time.UTC)

	first, err := ComputeDueDate(start, hoursPtr(12), cfg)
	require.NoError(t, err)
	second, err := ComputeDueDate(start, hoursPtr(12), cfg)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeDueDateMonotonic(t *testing.T) {
	cfg := utcBusinessConfig()
	start := time.Date(2024, 1, 5, 15, 0, 0, 0, time.UTC)

	var prev time.Time
	for h := 0; h <= 60; h++ {
		due, err := ComputeDueDate(start, hoursPtr(h), cfg)
		require.NoError(t, err)
		require.NotNil(t, due)
		assert.False(t, due.Before(prev), "due date regressed at h=%d", h)
		prev = *due
	}
}

func TestComputeDueDateRespectsTimezone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	cfg := utcBusinessConfig()
	cfg.Location = loc

	// Monday 13:00 UTC is 08:00 in New York, before the working window:
	// the clock snaps to 09:00 local (14:00 UTC) before consuming two hours.
	start := time.Date(2024, 1, 8, 13, 0, 0, 0, time.UTC)
	due, err := ComputeDueDate(start, hoursPtr(2), cfg)
	require.NoError(t, err)
	require.NotNil(t, due)
	assert.True(t, time.Date(2024, 1, 8, 16, 0, 0, 0, time.UTC).Equal(*due), "got %v", *due)
}

func TestComputeDueDateNoWorkingDays(t *testing.T) {
	cfg := utcBusinessConfig()
	cfg.WorkingDays = map[time.Weekday]bool{}

	_, err := ComputeDueDate(time.Date(2024, 1, 5, 15, 0, 0, 0, time.UTC), hoursPtr(4), cfg)
	assert.ErrorIs(t, err, ErrNoWorkingDays)
}

func TestNextBusinessMoment(t *testing.T) {
	cfg := utcBusinessConfig()

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "inside window unchanged",
			in:   time.Date(2024, 1, 8, 10, 30, 0, 0, time.UTC),
			want: time.Date(2024, 1, 8, 10, 30, 0, 0, time.UTC),
		},
		{
			name: "saturday rolls to monday start",
			in:   time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC),
			want: time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "exactly at end of day rolls forward",
			in:   time.Date(2024, 1, 8, 17, 0, 0, 0, time.UTC),
			want: time.Date(2024, 1, 9, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextBusinessMoment(tt.in, cfg)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}
}
