package models

import (
	"math"
	"time"
)

// TimestampLayout matches the second-precision local timestamps the
// spreadsheet has always contained.
const TimestampLayout = "2006-01-02T15:04:05"

// Session is one contiguous run of a tracked game under a single pid.
// Identity and display name are frozen at creation, even if later ticks
// would classify the same pid differently.
type Session struct {
	StartTime   time.Time
	ExeName     string
	DisplayName string
	PID         int32
}

// SessionRecord is the persisted form of a finalized session.
type SessionRecord struct {
	Game            string
	Exe             string
	StartISO        string
	EndISO          string
	DurationMinutes float64
}

// Finalize converts the session into its persisted record. Duration is
// whole elapsed seconds converted to minutes and rounded to two decimals,
// clamped so a skewed clock can never produce a negative value.
func (s *Session) Finalize(end time.Time) SessionRecord {
	seconds := int64(end.Sub(s.StartTime).Seconds())
	if seconds < 0 {
		seconds = 0
	}
	minutes := math.Round(float64(seconds)/60*100) / 100
	return SessionRecord{
		Game:            s.DisplayName,
		Exe:             s.ExeName,
		StartISO:        s.StartTime.Format(TimestampLayout),
		EndISO:          end.Format(TimestampLayout),
		DurationMinutes: minutes,
	}
}
