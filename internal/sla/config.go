// Package sla implements due-date computation and status classification for
// service-level agreements over a configurable business calendar. All
// functions are pure: they perform no I/O and take the clock as an argument.
package sla

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects how SLA durations are consumed.
type Mode string

const (
	// ModeCalendarHours advances the SLA clock continuously.
	ModeCalendarHours Mode = "calendar_hours"
	// ModeBusinessHours advances the SLA clock only inside working windows.
	ModeBusinessHours Mode = "business_hours"
)

// Config is an immutable business-calendar snapshot. A single snapshot must
// be used for an entire batch of evaluations.
type Config struct {
	Mode        Mode
	Location    *time.Location
	WorkingDays map[time.Weekday]bool
	// DayStart and DayEnd are offsets from local midnight. DayStart < DayEnd.
	DayStart time.Duration
	DayEnd   time.Duration
}

// Validate reports configuration states that would make business-hours
// stepping impossible. Admin writes should be rejected on error.
func (c Config) Validate() error {
	if c.Mode != ModeCalendarHours && c.Mode != ModeBusinessHours {
		return fmt.Errorf("sla: unknown mode %q", c.Mode)
	}
	if c.DayStart >= c.DayEnd {
		return fmt.Errorf("sla: day start %v not before day end %v", c.DayStart, c.DayEnd)
	}
	if c.Mode == ModeBusinessHours {
		any := false
		for _, on := range c.WorkingDays {
			if on {
				any = true
				break
			}
		}
		if !any {
			return ErrNoWorkingDays
		}
	}
	return nil
}

// RawSettings carries calendar settings as stored in system_settings.
type RawSettings struct {
	Mode        string
	Timezone    string
	WorkingDays string // CSV of day names, e.g. "Mon,Tue,Wed,Thu,Fri"
	StartTime   string // "HH:MM"
	EndTime     string // "HH:MM"
}

// Fallback records a substitution made while parsing raw settings. The
// caller is expected to log these; silent fallback masks misconfiguration.
type Fallback struct {
	Setting string
	Given   string
	Used    string
}

const (
	defaultStart = 9 * time.Hour
	defaultEnd   = 17 * time.Hour
)

var dayTokens = map[string]time.Weekday{
	"Mon": time.Monday,
	"Tue": time.Tuesday,
	"Wed": time.Wednesday,
	"Thu": time.Thursday,
	"Fri": time.Friday,
	"Sat": time.Saturday,
	"Sun": time.Sunday,
}

// ParseSettings converts raw stored settings into a Config, substituting
// documented defaults for anything unparseable. Every substitution is
// returned as a Fallback so the caller can surface it.
func ParseSettings(raw RawSettings) (Config, []Fallback) {
	var fallbacks []Fallback

	mode := Mode(strings.TrimSpace(raw.Mode))
	if mode != ModeCalendarHours && mode != ModeBusinessHours {
		if raw.Mode != "" {
			fallbacks = append(fallbacks, Fallback{Setting: "sla_calculation_mode", Given: raw.Mode, Used: string(ModeCalendarHours)})
		}
		mode = ModeCalendarHours
	}

	loc, err := time.LoadLocation(strings.TrimSpace(raw.Timezone))
	if err != nil || strings.TrimSpace(raw.Timezone) == "" {
		if raw.Timezone != "" && raw.Timezone != "UTC" {
			fallbacks = append(fallbacks, Fallback{Setting: "timezone", Given: raw.Timezone, Used: "UTC"})
		}
		loc = time.UTC
	}

	start, ok := parseClock(raw.StartTime)
	if !ok {
		if raw.StartTime != "" {
			fallbacks = append(fallbacks, Fallback{Setting: "working_hour_start", Given: raw.StartTime, Used: "09:00"})
		}
		start = defaultStart
	}
	end, ok := parseClock(raw.EndTime)
	if !ok {
		if raw.EndTime != "" {
			fallbacks = append(fallbacks, Fallback{Setting: "working_hour_end", Given: raw.EndTime, Used: "17:00"})
		}
		end = defaultEnd
	}
	if start >= end {
		fallbacks = append(fallbacks, Fallback{
			Setting: "working_hours",
			Given:   fmt.Sprintf("%s-%s", raw.StartTime, raw.EndTime),
			Used:    "09:00-17:00",
		})
		start, end = defaultStart, defaultEnd
	}

	days := make(map[time.Weekday]bool, 7)
	for _, token := range strings.Split(raw.WorkingDays, ",") {
		if wd, known := dayTokens[strings.TrimSpace(token)]; known {
			days[wd] = true
		}
	}
	if len(days) == 0 {
		if raw.WorkingDays != "" {
			fallbacks = append(fallbacks, Fallback{Setting: "working_days", Given: raw.WorkingDays, Used: "Mon,Tue,Wed,Thu,Fri"})
		}
		for wd := time.Monday; wd <= time.Friday; wd++ {
			days[wd] = true
		}
	}

	return Config{
		Mode:        mode,
		Location:    loc,
		WorkingDays: days,
		DayStart:    start,
		DayEnd:      end,
	}, fallbacks
}

// parseClock parses "HH:MM" into an offset from midnight.
func parseClock(s string) (time.Duration, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, true
}
