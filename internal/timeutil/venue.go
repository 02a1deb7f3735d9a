package timeutil

import (
	"os"
	"time"
)

// Venue is the timezone business reporting runs in. Stock counts, revenue
// rollups and daily reports all bucket by venue-local days, not UTC.
var Venue *time.Location

func init() {
	name := os.Getenv("VENUE_TIMEZONE")
	if name == "" {
		name = "America/Chicago"
	}
	var err error
	Venue, err = time.LoadLocation(name)
	if err != nil {
		Venue = time.UTC
	}
}

// Now returns the current time in the venue timezone
func Now() time.Time {
	return time.Now().In(Venue)
}

// ToVenue converts any time to the venue timezone
func ToVenue(t time.Time) time.Time {
	return t.In(Venue)
}

// StartOfDay returns the start of day (00:00:00) in venue time
func StartOfDay(t time.Time) time.Time {
	v := t.In(Venue)
	return time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, Venue)
}

// EndOfDay returns the end of day in venue time
func EndOfDay(t time.Time) time.Time {
	v := t.In(Venue)
	return time.Date(v.Year(), v.Month(), v.Day(), 23, 59, 59, 999999999, Venue)
}

// Common layouts for display formatting
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006, 03:04 PM"
)
