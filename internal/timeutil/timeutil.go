package timeutil

import "time"

// Location resolves an IANA timezone name, defaulting to UTC when empty.
func Location(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// StartOfDayMillis normalizes an epoch-millisecond instant to the start of
// its calendar day in loc, as epoch milliseconds.
func StartOfDayMillis(millis int64, loc *time.Location) int64 {
	return StartOfDay(time.UnixMilli(millis), loc).UnixMilli()
}

// ISODate formats t's calendar day in loc as YYYY-MM-DD.
func ISODate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
