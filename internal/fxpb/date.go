package fxpb

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate reports a date with a day but no month.
var ErrInvalidDate = errors.New("invalid date")

// DateOf builds a full calendar date from the date part of t.
func DateOf(t time.Time) *Date {
	return &Date{Year: int32(t.Year()), Month: int32(t.Month()), Day: int32(t.Day())}
}

// FormatDate renders a date as "YYYY", "YYYY/MM" or "YYYY/MM/DD" depending on
// which fields are set. A nil or year-less date renders as the empty string.
func FormatDate(d *Date) (string, error) {
	if d == nil || d.Year == 0 {
		return "", nil
	}
	if d.Day != 0 {
		if d.Month == 0 {
			return "", fmt.Errorf("%w: day %d without month", ErrInvalidDate, d.Day)
		}
		return fmt.Sprintf("%04d/%02d/%02d", d.Year, d.Month, d.Day), nil
	}
	if d.Month != 0 {
		return fmt.Sprintf("%04d/%02d", d.Year, d.Month), nil
	}
	return fmt.Sprintf("%04d", d.Year), nil
}

// Compare orders dates chronologically, earlier first. Absent fields count
// as zero, and a nil date sorts before everything else.
func (d *Date) Compare(o *Date) int {
	dy, dm, dd := dateParts(d)
	oy, om, od := dateParts(o)
	if dy != oy {
		return compareInt32(dy, oy)
	}
	if dm != om {
		return compareInt32(dm, om)
	}
	return compareInt32(dd, od)
}

func dateParts(d *Date) (year, month, day int32) {
	if d == nil {
		return 0, 0, 0
	}
	return d.Year, d.Month, d.Day
}

func compareInt32(a, b int32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
