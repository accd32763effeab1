// Package digest decides when the daily digest is due and renders and
// delivers it.
package digest

import (
	"fmt"
	"time"
)

const dayKeyLayout = "2006-01-02"

// Schedule is the daily send time in a fixed local zone.
type Schedule struct {
	Location *time.Location
	Hour     int
	Minute   int
}

// DayKey returns the local calendar date of now as YYYY-MM-DD.
func (s Schedule) DayKey(now time.Time) string {
	return now.In(s.Location).Format(dayKeyLayout)
}

// Reached reports whether the local time of day of now is at or after the
// configured send time.
func (s Schedule) Reached(now time.Time) bool {
	local := now.In(s.Location)
	if local.Hour() != s.Hour {
		return local.Hour() > s.Hour
	}
	return local.Minute() >= s.Minute
}

// Due reports whether a digest should be sent now, given whether the digest
// for today's key was already sent.
func (s Schedule) Due(now time.Time, alreadySent bool) bool {
	return !alreadySent && s.Reached(now)
}

// String formats the send time as HH:MM.
func (s Schedule) String() string {
	return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
}
