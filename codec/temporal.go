package codec

import (
	"time"

	"github.com/reoring/jsoning"
)

// TimeLayout renders instants with their own zone offset and no separator,
// e.g. "2015-11-01T21:41:09+0700".
const TimeLayout = "2006-01-02T15:04:05-0700"

// FormatTime renders t with TimeLayout, keeping t's location.
func FormatTime(t time.Time) string { return t.Format(TimeLayout) }

// ParseTime accepts TimeLayout and falls back to RFC3339 (fractional seconds
// optional).
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err == nil {
		return t, nil
	}
	if t2, err2 := time.Parse(time.RFC3339Nano, s); err2 == nil {
		return t2, nil
	}
	return time.Time{}, err
}

// RegisterTemporal registers converters for time.Time and Date on e. Calling
// it again only replaces the same converters. Suitable for jsoning.WithSetup.
func RegisterTemporal(e *jsoning.Extensions) error {
	if err := jsoning.Extend(e, func(t time.Time) any { return FormatTime(t) }); err != nil {
		return err
	}
	return jsoning.Extend(e, dateConverter)
}

func dateConverter(d Date) any { return FormatDate(d) }

// TimeIn returns a setup hook like RegisterTemporal that renders instants in
// loc instead of their own location.
func TimeIn(loc *time.Location) func(*jsoning.Extensions) error {
	if loc == nil {
		loc = time.UTC
	}
	return func(e *jsoning.Extensions) error {
		if err := jsoning.Extend(e, func(t time.Time) any { return FormatTime(t.In(loc)) }); err != nil {
			return err
		}
		return jsoning.Extend(e, dateConverter)
	}
}
