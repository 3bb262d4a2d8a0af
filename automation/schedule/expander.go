// Package schedule turns an automation's cadence into concrete instants.
// Everything here is pure: the same Params always yield the same result.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/timeutils"
)

type Frequency string

const (
	Daily      Frequency = "daily"
	Weekdays   Frequency = "weekdays"
	CustomDays Frequency = "custom-days"
)

var (
	ErrUnknownFrequency = errors.New("unknown frequency")
	ErrInvalidRange     = errors.New("end date is before start date")
	ErrNoDays           = errors.New("custom-days requires at least one day")
)

func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(strings.ToLower(strings.TrimSpace(s))); f {
	case Daily, Weekdays, CustomDays:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFrequency, s)
	}
}

// Params describes a cadence. Start and End are civil dates (only the
// year, month and day are read) and End is inclusive.
type Params struct {
	Start     time.Time
	End       time.Time
	TimeOfDay timeutils.Clock
	Frequency Frequency
	Days      []time.Weekday
	Location  *time.Location
}

// Window bounds an expansion. Zero values mean "no bound".
type Window struct {
	// NotBefore drops instants that are not strictly after it.
	NotBefore time.Time
	// Through caps the last civil day visited (inclusive).
	Through time.Time
	// Limit caps how many instants are returned.
	Limit int
}

// Occurrence is one scheduled instant together with the civil day it
// belongs to in the automation's location.
type Occurrence struct {
	Day string
	At  time.Time
}

func (p Params) Validate() error {
	if civil(p.End).Before(civil(p.Start)) {
		return ErrInvalidRange
	}
	switch p.Frequency {
	case Daily, Weekdays:
	case CustomDays:
		if len(p.Days) == 0 {
			return ErrNoDays
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFrequency, p.Frequency)
	}
	if p.TimeOfDay.Hour < 0 || p.TimeOfDay.Hour > 23 || p.TimeOfDay.Minute < 0 || p.TimeOfDay.Minute > 59 {
		return fmt.Errorf("invalid time of day %s", p.TimeOfDay)
	}
	return nil
}

// Includes reports whether the policy selects the given weekday.
func (p Params) Includes(d time.Weekday) bool {
	switch p.Frequency {
	case Daily:
		return true
	case Weekdays:
		return d >= time.Monday && d <= time.Friday
	case CustomDays:
		for _, want := range p.Days {
			if want == d {
				return true
			}
		}
	}
	return false
}

// Expand returns every instant of the cadence, in UTC, ascending.
func Expand(p Params) ([]time.Time, error) {
	return ExpandWindow(p, Window{})
}

func ExpandWindow(p Params, w Window) ([]time.Time, error) {
	occ, err := Occurrences(p, w)
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, len(occ))
	for i, o := range occ {
		out[i] = o.At
	}
	return out, nil
}

// Occurrences walks the calendar day by day in the automation's location so
// the wall-clock time stays fixed across DST changes.
func Occurrences(p Params, w Window) ([]Occurrence, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}

	last := civil(p.End)
	if !w.Through.IsZero() && civil(w.Through).Before(last) {
		last = civil(w.Through)
	}

	var out []Occurrence
	for day := civil(p.Start); !day.After(last); day = day.AddDate(0, 0, 1) {
		if !p.Includes(day.Weekday()) {
			continue
		}
		at := time.Date(day.Year(), day.Month(), day.Day(), p.TimeOfDay.Hour, p.TimeOfDay.Minute, 0, 0, loc).UTC()
		if !w.NotBefore.IsZero() && !at.After(w.NotBefore) {
			continue
		}
		out = append(out, Occurrence{Day: day.Format(timeutils.DateLayout), At: at})
		if w.Limit > 0 && len(out) >= w.Limit {
			break
		}
	}
	return out, nil
}

// LocalDay returns the civil date of t in loc, as midnight UTC.
func LocalDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return civil(t.In(loc))
}

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
