// Stockwatch - Retail Stock Level History
// Copyright 2026 The Stockwatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/klokstudent/stockwatch

package schedule

import (
	"fmt"
	"time"
)

// DefaultTimezone is the zone the retailer's opening hours are published in.
const DefaultTimezone = "Europe/Oslo"

// ClockTime is a time of day with second resolution.
type ClockTime struct {
	Hour   int
	Minute int
	Second int
}

// At returns a ClockTime for hour:minute:00.
func At(hour, minute int) ClockTime {
	return ClockTime{Hour: hour, Minute: minute}
}

func (c ClockTime) seconds() int {
	return c.Hour*3600 + c.Minute*60 + c.Second
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// Window is an opening interval within one day. Both ends are inclusive.
type Window struct {
	Open  ClockTime
	Close ClockTime
}

// Contains reports whether the time of day t falls inside the window.
func (w Window) Contains(t ClockTime) bool {
	s := t.seconds()
	return s >= w.Open.seconds() && s <= w.Close.seconds()
}

// WeeklyHours maps a weekday to its opening window. Missing days are closed.
type WeeklyHours map[time.Weekday]Window

// VinmonopoletHours is the retailer's standard opening table.
func VinmonopoletHours() WeeklyHours {
	weekday := Window{Open: At(10, 0), Close: At(18, 0)}
	return WeeklyHours{
		time.Monday:    weekday,
		time.Tuesday:   weekday,
		time.Wednesday: weekday,
		time.Thursday:  weekday,
		time.Friday:    weekday,
		time.Saturday:  {Open: At(10, 0), Close: At(16, 0)},
	}
}

// OperatingHours evaluates a weekly table in a fixed timezone.
type OperatingHours struct {
	loc   *time.Location
	hours WeeklyHours
}

// New builds an OperatingHours for the named IANA timezone.
func New(timezone string, hours WeeklyHours) (*OperatingHours, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return NewInLocation(loc, hours), nil
}

// NewInLocation builds an OperatingHours for an already loaded location.
func NewInLocation(loc *time.Location, hours WeeklyHours) *OperatingHours {
	copied := make(WeeklyHours, len(hours))
	for day, w := range hours {
		copied[day] = w
	}
	return &OperatingHours{loc: loc, hours: copied}
}

// Default returns the Vinmonopolet table in Europe/Oslo.
func Default() (*OperatingHours, error) {
	return New(DefaultTimezone, VinmonopoletHours())
}

// Location returns the timezone the table is evaluated in.
func (o *OperatingHours) Location() *time.Location {
	return o.loc
}

// IsOpen reports whether now falls inside the opening window of its local
// weekday. Sub-second precision is ignored.
func (o *OperatingHours) IsOpen(now time.Time) bool {
	local := now.In(o.loc)
	w, ok := o.hours[local.Weekday()]
	if !ok {
		return false
	}
	return w.Contains(ClockTime{Hour: local.Hour(), Minute: local.Minute(), Second: local.Second()})
}

// NextOpening returns the first instant at or after now at which the store is
// open, searching up to one week ahead. ok is false for an empty table.
func (o *OperatingHours) NextOpening(now time.Time) (next time.Time, ok bool) {
	if o.IsOpen(now) {
		return now, true
	}
	local := now.In(o.loc)
	for d := 0; d <= 7; d++ {
		day := local.AddDate(0, 0, d)
		w, found := o.hours[day.Weekday()]
		if !found {
			continue
		}
		open := time.Date(day.Year(), day.Month(), day.Day(), w.Open.Hour, w.Open.Minute, w.Open.Second, 0, o.loc)
		if !open.Before(now) {
			return open, true
		}
	}
	return time.Time{}, false
}
