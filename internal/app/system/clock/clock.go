// Package clock supplies the current time to code that reports on calendar
// windows, so that "this month" can be pinned in tests.
package clock

import "time"

// Clock reports the current instant. The location of the returned time
// decides which calendar month and year it falls in.
type Clock interface {
	Now() time.Time
}

// System is the wall clock in a fixed location. A nil Location means UTC.
type System struct {
	Location *time.Location
}

// Now returns time.Now in the clock's location.
func (c System) Now() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return time.Now().In(loc)
}

// Fixed always returns the same instant.
type Fixed struct {
	T time.Time
}

// Now returns f.T.
func (f Fixed) Now() time.Time {
	return f.T
}

// StartOfMonth returns the first instant of t's calendar month in t's location.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// StartOfYear returns the first instant of t's calendar year in t's location.
func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}
