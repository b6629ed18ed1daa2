package sla

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoWorkingDays indicates the calendar cannot reach a working day. It
// points at a configuration bug that must be rejected at write time.
var ErrNoWorkingDays = errors.New("sla: calendar has no working days")

// maxDayAdvances bounds the skip-ahead loop. Skipping a full week needs at
// most seven steps; exceeding eight means the working-day set is empty.
const maxDayAdvances = 8

// ComputeDueDate returns the UTC timestamp at which an SLA of hours duration
// expires, counting from startUTC. A nil hours means no SLA is configured and
// yields a nil due date. Identical inputs always yield identical outputs.
func ComputeDueDate(startUTC time.Time, hours *int, cfg Config) (*time.Time, error) {
	if hours == nil {
		return nil, nil
	}
	if *hours < 0 {
		return nil, fmt.Errorf("sla: negative duration %d", *hours)
	}

	if cfg.Mode != ModeBusinessHours {
		due := startUTC.Add(time.Duration(*hours) * time.Hour).UTC()
		return &due, nil
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	current, err := rollForward(startUTC.In(loc), cfg)
	if err != nil {
		return nil, err
	}

	remaining := time.Duration(*hours) * time.Hour
	for remaining > 0 {
		window := atClock(current, cfg.DayEnd).Sub(current)
		if remaining <= window {
			current = current.Add(remaining)
			break
		}
		remaining -= window
		current, err = nextWorkdayStart(current, cfg)
		if err != nil {
			return nil, err
		}
	}

	due := current.UTC()
	return &due, nil
}

// NextBusinessMoment returns tUTC unchanged when it already falls inside a
// working window, otherwise the start of the next working window, in UTC.
func NextBusinessMoment(tUTC time.Time, cfg Config) (time.Time, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	local, err := rollForward(tUTC.In(loc), cfg)
	if err != nil {
		return time.Time{}, err
	}
	return local.UTC(), nil
}

// rollForward moves a local timestamp to the next valid business moment.
// On a working day before DayStart it snaps to DayStart; at or past DayEnd,
// or on a non-working day, it advances to the next working day's DayStart.
func rollForward(local time.Time, cfg Config) (time.Time, error) {
	if !cfg.WorkingDays[local.Weekday()] || clockOf(local) >= cfg.DayEnd {
		return nextWorkdayStart(local, cfg)
	}
	if clockOf(local) < cfg.DayStart {
		return atClock(local, cfg.DayStart), nil
	}
	return local, nil
}

// nextWorkdayStart returns DayStart on the first working day strictly after
// the day of local. Bounded: returns ErrNoWorkingDays instead of spinning.
func nextWorkdayStart(local time.Time, cfg Config) (time.Time, error) {
	next := atClock(local.AddDate(0, 0, 1), cfg.DayStart)
	for i := 0; i < maxDayAdvances; i++ {
		if cfg.WorkingDays[next.Weekday()] {
			return next, nil
		}
		next = next.AddDate(0, 0, 1)
	}
	return time.Time{}, ErrNoWorkingDays
}

// atClock pins t to the given offset from midnight, preserving day and zone.
func atClock(t time.Time, offset time.Duration) time.Time {
	h := int(offset / time.Hour)
	m := int(offset % time.Hour / time.Minute)
	return time.Date(t.Year(), t.Month(), t.Day(), h, m, 0, 0, t.Location())
}

// clockOf returns t's offset from local midnight.
func clockOf(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}
