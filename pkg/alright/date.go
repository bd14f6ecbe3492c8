package alright

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a calendar day as the canteen service addresses it.
type Date struct {
	Day   int `json:"day" yaml:"day"`
	Month int `json:"month" yaml:"month"`
	Year  int `json:"year" yaml:"year"`
}

// Today returns the current local date.
func Today() Date { return DateOf(time.Now()) }

// Yesterday returns the local date one day before Today.
func Yesterday() Date { return Today().AddDays(-1) }

// Tomorrow returns the local date one day after Today.
func Tomorrow() Date { return Today().AddDays(1) }

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Day: d, Month: int(m), Year: y}
}

// NewDate builds a validated date.
func NewDate(day, month, year int) (Date, error) {
	d := Date{Day: day, Month: month, Year: year}
	if err := d.Validate(); err != nil {
		return Date{}, err
	}
	return d, nil
}

// ParseDate parses the D-M-YYYY form produced by String.
// Quote characters and surrounding spaces are ignored.
func ParseDate(s string) (Date, error) {
	clean := strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
	parts := strings.Split(clean, "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("%w: %q: want 3 fields, got %d", ErrInvalidDate, s, len(parts))
	}

	var fields [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q: %v", ErrInvalidDate, s, err)
		}
		fields[i] = n
	}
	return NewDate(fields[0], fields[1], fields[2])
}

// String formats the date as D-M-YYYY without zero padding.
func (d Date) String() string {
	return fmt.Sprintf("%d-%d-%d", d.Day, d.Month, d.Year)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// Time returns midnight of d in loc.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, loc)
}

// AddDays shifts d by n calendar days.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time(time.UTC).AddDate(0, 0, n))
}

// Validate checks that d names a real calendar day.
func (d Date) Validate() error {
	if d.Month < 1 || d.Month > 12 {
		return fmt.Errorf("%w: month %d out of range", ErrInvalidDate, d.Month)
	}
	if d.Year < 1 {
		return fmt.Errorf("%w: year %d out of range", ErrInvalidDate, d.Year)
	}
	if d.Day < 1 || d.Day > daysIn(d.Month, d.Year) {
		return fmt.Errorf("%w: day %d out of range for month %d", ErrInvalidDate, d.Day, d.Month)
	}
	return nil
}

func daysIn(month, year int) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
