package codec

import (
	"fmt"
	"time"
)

// Date is a calendar day without a time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("codec: invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) String() string { return d.Time().Format(dateLayout) }

// Time returns midnight UTC of d.
func (d Date) Time() time.Time { return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC) }

func (d Date) IsZero() bool { return d == Date{} }

// FormatDate renders d as midnight UTC with TimeLayout,
// e.g. "2015-11-01T00:00:00+0000".
func FormatDate(d Date) string { return FormatTime(d.Time()) }
