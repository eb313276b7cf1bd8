// Package week maps timestamps to academic week numbers in the organisation's zone.
//
// Weeks start on Monday (ISO-8601). Week 1 is the week that contains the term start of
// the academic year; the count grows monotonically through the year and restarts at the
// next term start. Only weeks 1..MaxWeek are valid for records and rankings.
package week

import (
	"errors"
	"fmt"
	"time"
)

const MaxWeek = 35

var (
	ErrOutOfRange = errors.New("week out of academic range")
	ErrBadKey     = errors.New("bad week key")
)

type Resolver struct {
	loc       *time.Location
	termMonth time.Month
	termDay   int
}

func NewResolver(loc *time.Location, termMonth time.Month, termDay int) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{loc: loc, termMonth: termMonth, termDay: termDay}
}

func (r *Resolver) Location() *time.Location { return r.loc }

// ISOWeek: номер недели ISO-8601 в часовом поясе организации.
func (r *Resolver) ISOWeek(t time.Time) int {
	_, w := t.In(r.loc).ISOWeek()
	return w
}

// WeekOf returns the academic week of t. For weeks outside [1, MaxWeek] it returns the
// computed number together with ErrOutOfRange.
func (r *Resolver) WeekOf(t time.Time) (int, error) {
	sy := r.SchoolYear(t)
	days := daysBetween(monday(r.TermStart(sy)), monday(t.In(r.loc)))
	w := days/7 + 1
	if w < 1 || w > MaxWeek {
		return w, fmt.Errorf("%w: week %d of %s", ErrOutOfRange, w, SchoolYearLabel(sy))
	}
	return w, nil
}

// Key returns the week identifier of t, e.g. "2025-W07".
func (r *Resolver) Key(t time.Time) (string, error) {
	w, err := r.WeekOf(t)
	if err != nil {
		return "", err
	}
	return FormatKey(r.SchoolYear(t), w), nil
}

// Bounds returns [Monday 00:00, next Monday 00:00) of the week identified by key.
func (r *Resolver) Bounds(key string) (time.Time, time.Time, error) {
	sy, w, err := ParseKey(key)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	from := monday(r.TermStart(sy)).AddDate(0, 0, 7*(w-1))
	return from, from.AddDate(0, 0, 7), nil
}

// SchoolYear: год начала учебного года, в который попадает t.
func (r *Resolver) SchoolYear(t time.Time) int {
	lt := t.In(r.loc)
	y := lt.Year()
	if lt.Before(r.TermStart(y)) {
		return y - 1
	}
	return y
}

// TermStart: начало учебного года startYear (00:00 по времени организации).
func (r *Resolver) TermStart(startYear int) time.Time {
	return time.Date(startYear, r.termMonth, r.termDay, 0, 0, 0, 0, r.loc)
}

func FormatKey(schoolYear, w int) string {
	return fmt.Sprintf("%d-W%02d", schoolYear, w)
}

func ParseKey(key string) (int, int, error) {
	var sy, w int
	if _, err := fmt.Sscanf(key, "%d-W%d", &sy, &w); err != nil {
		return 0, 0, fmt.Errorf("%w %q", ErrBadKey, key)
	}
	if FormatKey(sy, w) != key {
		return 0, 0, fmt.Errorf("%w %q", ErrBadKey, key)
	}
	if w < 1 || w > MaxWeek {
		return 0, 0, fmt.Errorf("%w: %q", ErrOutOfRange, key)
	}
	return sy, w, nil
}

// SchoolYearLabel форматирует подпись учебного года: "2024–2025".
func SchoolYearLabel(startYear int) string {
	return fmt.Sprintf("%d–%d", startYear, startYear+1)
}

func monday(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	back := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -back)
}

func daysBetween(a, b time.Time) int {
	// calendar days, immune to zone offsets
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
