package lodging

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day without time of day. The zero value means "unset".
type Date struct {
	value time.Time
}

// NewDate builds a Date from calendar components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{value: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar day in the timestamp's own location.
func DateOf(moment time.Time) Date {
	year, month, day := moment.Date()
	return NewDate(year, month, day)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(raw string) (Date, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Date{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}
	parsed, err := time.Parse(dateLayout, trimmed)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return Date{value: parsed}, nil
}

// IsZero reports whether the date is unset.
func (date Date) IsZero() bool {
	return date.value.IsZero()
}

// AddDays returns the date shifted by days (negative moves backwards).
func (date Date) AddDays(days int) Date {
	return Date{value: date.value.AddDate(0, 0, days)}
}

// Before reports whether date is strictly earlier than other.
func (date Date) Before(other Date) bool {
	return date.value.Before(other.value)
}

// After reports whether date is strictly later than other.
func (date Date) After(other Date) bool {
	return date.value.After(other.value)
}

// Equal reports whether both dates denote the same day.
func (date Date) Equal(other Date) bool {
	return date.value.Equal(other.value)
}

// Time returns midnight UTC of the date.
func (date Date) Time() time.Time {
	return date.value
}

// String formats the date as YYYY-MM-DD.
func (date Date) String() string {
	if date.IsZero() {
		return ""
	}
	return date.value.Format(dateLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (date Date) MarshalText() ([]byte, error) {
	return []byte(date.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (date *Date) UnmarshalText(raw []byte) error {
	parsed, err := ParseDate(string(raw))
	if err != nil {
		return err
	}
	*date = parsed
	return nil
}

// DateRange is a half-open interval of days [start, end).
type DateRange struct {
	start Date
	end   Date
}

// NewDateRange validates that both bounds are set and end is strictly after start.
func NewDateRange(start Date, end Date) (DateRange, error) {
	if start.IsZero() || end.IsZero() {
		return DateRange{}, fmt.Errorf("%w: both bounds are required", ErrInvalidDateRange)
	}
	if !end.After(start) {
		return DateRange{}, fmt.Errorf("%w: end %s must be after start %s", ErrInvalidDateRange, end, start)
	}
	return DateRange{start: start, end: end}, nil
}

// Start returns the inclusive lower bound.
func (dateRange DateRange) Start() Date {
	return dateRange.start
}

// End returns the exclusive upper bound.
func (dateRange DateRange) End() Date {
	return dateRange.end
}

// IsZero reports whether the range is unset.
func (dateRange DateRange) IsZero() bool {
	return dateRange.start.IsZero() && dateRange.end.IsZero()
}

// Overlaps implements the half-open overlap test: a1 < b2 AND b1 < a2.
func (dateRange DateRange) Overlaps(other DateRange) bool {
	if dateRange.IsZero() || other.IsZero() {
		return false
	}
	return dateRange.start.Before(other.end) && other.start.Before(dateRange.end)
}

// Contains reports whether day falls inside [start, end).
func (dateRange DateRange) Contains(day Date) bool {
	if dateRange.IsZero() || day.IsZero() {
		return false
	}
	return !day.Before(dateRange.start) && day.Before(dateRange.end)
}

// Nights returns the number of days covered by the range.
func (dateRange DateRange) Nights() int {
	if dateRange.IsZero() {
		return 0
	}
	return int(dateRange.end.value.Sub(dateRange.start.value).Hours() / 24)
}

// String formats the range as [start, end).
func (dateRange DateRange) String() string {
	return "[" + dateRange.start.String() + ", " + dateRange.end.String() + ")"
}
