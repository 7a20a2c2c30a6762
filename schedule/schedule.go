/*
DESCRIPTION
  schedule.go provides calculation of staggered publish times for a batch
  of uploads from a fixed daily pattern of time slots.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean)

  This file is part of Ocean Uploader. Ocean Uploader is free software: you can
  redistribute it and/or modify it under the terms of the GNU
  General Public License as published by the Free Software
  Foundation, either version 3 of the License, or (at your option)
  any later version.

  Ocean Uploader is distributed in the hope that it will be useful,
  but WITHOUT ANY WARRANTY; without even the implied warranty of
  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
  GNU General Public License for more details.

  You should have received a copy of the GNU General Public License
  in gpl.txt. If not, see <http://www.gnu.org/licenses/>.
*/

// Package schedule maps the position of a video within a batch to a future
// publish time. Each day offers a fixed, ordered set of slots described by a
// cron spec; consecutive batch indices fill the slots of a day before moving
// on to the next day.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/kortschak/sun"
	cron "github.com/robfig/cron/v3"
)

// DefaultPattern publishes at 05:00, 12:00 and 17:00 each day.
const DefaultPattern = "0 5,12,17 * * *"

// Pattern errors.
var (
	ErrNoSlots  = errors.New("pattern has no daily slots")
	ErrNotDaily = errors.New("pattern is not daily")
)

// Scheduler computes publish slots. The zero value is not usable; use New.
type Scheduler struct {
	pattern string
	sched   cron.Schedule
	loc     *time.Location
	perDay  int
	clocks  []clock // Wall clock time of each slot, in order.
	now     func() time.Time
}

type clock struct{ hour, min, sec int }

// Option is a functional option for configuring a Scheduler.
type Option func(*Scheduler) error

// WithLocation sets the location in which slot times of day are interpreted.
// The default is time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) error {
		if loc == nil {
			return errors.New("nil location")
		}
		s.loc = loc
		return nil
	}
}

// WithClock replaces the source of the current instant, used to keep every
// slot strictly in the future.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) error {
		if now == nil {
			return errors.New("nil clock")
		}
		s.now = now
		return nil
	}
}

// New returns a Scheduler for the given cron pattern. An empty pattern
// selects DefaultPattern. The pattern must fire at least once a day and
// the same number of times every day.
func New(pattern string, opts ...Option) (*Scheduler, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	s := &Scheduler{pattern: pattern, loc: time.Local, now: time.Now}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("could not apply option: %w", err)
		}
	}

	sched, err := sun.Parser{}.Parse(pattern)
	if err != nil {
		return nil, fmt.Errorf("could not parse slot pattern %q: %w", pattern, err)
	}
	s.sched = sched

	// A week covers every day-of-week field; daily patterns fire the same
	// number of times on each day.
	first := time.Date(2000, time.January, 3, 0, 0, 0, 0, s.loc)
	slots := s.daySlots(first)
	s.perDay = len(slots)
	if s.perDay == 0 {
		return nil, fmt.Errorf("%q: %w", pattern, ErrNoSlots)
	}
	for _, t := range slots {
		s.clocks = append(s.clocks, clock{t.Hour(), t.Minute(), t.Second()})
	}
	for d := 1; d < 7; d++ {
		if n := len(s.daySlots(first.AddDate(0, 0, d))); n != s.perDay {
			return nil, fmt.Errorf("%q fires %d times on one day and %d on another: %w", pattern, s.perDay, n, ErrNotDaily)
		}
	}
	return s, nil
}

// Pattern returns the cron pattern the Scheduler was built with.
func (s *Scheduler) Pattern() string { return s.pattern }

// PerDay returns the number of slots in each day.
func (s *Scheduler) PerDay() int { return s.perDay }

// Slot returns the publish time for the video at position index in a batch
// started at ref. The day is ref's date plus index/PerDay days and the time
// of day is slot index%PerDay of that day. A slot time that a daylight
// saving gap skips is moved forward by the size of the gap. If the instant
// is not strictly after the current time it is moved one day later. Index
// must not be negative.
func (s *Scheduler) Slot(index int, ref time.Time) time.Time {
	if index < 0 {
		panic(fmt.Sprintf("negative slot index %d", index))
	}
	ref = ref.In(s.loc)
	t := s.wall(ref.Year(), ref.Month(), ref.Day()+index/s.perDay, s.clocks[index%s.perDay])
	if !t.After(s.now()) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// wall returns the instant with wall clock c on the given date. If c falls
// in a daylight saving gap the wall time is read with the offset in force
// before the gap, giving an instant just after it.
func (s *Scheduler) wall(year int, month time.Month, day int, c clock) time.Time {
	t := time.Date(year, month, day, c.hour, c.min, c.sec, 0, s.loc)
	if t.Hour() == c.hour && t.Minute() == c.min && t.Second() == c.sec {
		return t
	}
	_, before := t.Add(-3 * time.Hour).Zone()
	naive := time.Date(year, month, day, c.hour, c.min, c.sec, 0, time.UTC)
	return naive.Add(-time.Duration(before) * time.Second).In(s.loc)
}

// daySlots returns the activations of the pattern on the day starting at
// midnight, in order.
func (s *Scheduler) daySlots(midnight time.Time) []time.Time {
	end := midnight.AddDate(0, 0, 1)
	var slots []time.Time
	// Next returns activations strictly after its argument, at second
	// granularity, so start one second before midnight.
	for t := s.sched.Next(midnight.Add(-time.Second)); !t.IsZero() && t.Before(end); t = s.sched.Next(t) {
		slots = append(slots, t)
	}
	return slots
}
