package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DayKey identifies a calendar day's bucket. The textual form is
// "<year>-<month>-<day>" with a zero-based month, e.g. "2024-0-15" for
// January 15th 2024. No validation happens on construction; callers
// supply days that exist in the month.
type DayKey string

// NewDayKey builds a key from a year, a zero-based month and a
// day of month.
func NewDayKey(year, month, day int) DayKey {
	return DayKey(fmt.Sprintf("%d-%d-%d", year, month, day))
}

// DayKeyFromTime keys the calendar day t falls on.
func DayKeyFromTime(t time.Time) DayKey {
	return NewDayKey(t.Year(), int(t.Month())-1, t.Day())
}

// Parse splits the key back into its (year, month, day) components.
// ok is false for keys that were not produced by NewDayKey.
func (k DayKey) Parse() (year, month, day int, ok bool) {
	parts := strings.SplitN(string(k), "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	var err error
	if year, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, 0, false
	}
	if month, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, 0, false
	}
	if day, err = strconv.Atoi(parts[2]); err != nil {
		return 0, 0, 0, false
	}
	return year, month, day, true
}

// InMonth reports whether the key belongs to the given year and
// zero-based month.
func (k DayKey) InMonth(year, month int) bool {
	y, m, _, ok := k.Parse()
	return ok && y == year && m == month
}
