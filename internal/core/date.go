package core

import (
	"errors"
	"time"
)

// DateLayout is the only accepted calendar date format.
const DateLayout = "2006-01-02"

// Date is a calendar date in ISO form (YYYY-MM-DD). Because the format is
// fixed width and zero padded, string comparison orders dates correctly.
type Date string

// DateRange is an inclusive range of dates. An empty bound is open.
type DateRange struct {
	Start Date
	End   Date
}

var ErrInvalidRange = errors.New("start date must not be after end date")

// DateOf returns the UTC calendar date of t.
func DateOf(t time.Time) Date {
	return Date(t.UTC().Format(DateLayout))
}

// NewDate creates a Date from year, month, day
func NewDate(year, month, day int) Date {
	return DateOf(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
}

// ParseDate validates s and returns it as a Date.
func ParseDate(s string) (Date, error) {
	d := Date(s)
	if err := d.Validate(); err != nil {
		return "", err
	}
	return d, nil
}

// Validate checks the date is well formed and zero padded.
func (d Date) Validate() error {
	if d == "" {
		return ErrEmptyDate
	}
	t, err := time.Parse(DateLayout, string(d))
	if err != nil || t.Format(DateLayout) != string(d) {
		return ErrInvalidDate
	}
	return nil
}

// Time returns midnight UTC of the date. Zero time for invalid dates.
func (d Date) Time() time.Time {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

func (d Date) String() string {
	return string(d)
}

// IsZero returns true if neither bound is set.
func (r DateRange) IsZero() bool {
	return r.Start == "" && r.End == ""
}

// Contains reports whether d falls inside the range, bounds included.
func (r DateRange) Contains(d Date) bool {
	if r.Start != "" && d < r.Start {
		return false
	}
	if r.End != "" && d > r.End {
		return false
	}
	return true
}

// Validate checks both bounds and their order.
func (r DateRange) Validate() error {
	var v ValidationError
	if r.Start != "" {
		if err := r.Start.Validate(); err != nil {
			v.Add("startDate", err)
		}
	}
	if r.End != "" {
		if err := r.End.Validate(); err != nil {
			v.Add("endDate", err)
		}
	}
	if v.Empty() && r.Start != "" && r.End != "" && r.Start > r.End {
		v.Add("endDate", ErrInvalidRange)
	}
	return v.Err()
}
