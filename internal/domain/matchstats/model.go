package matchstats

import (
	"time"

	"github.com/riskibarqy/gps-gamemodel/internal/domain/canonical"
)

// PlayerMatch is one match a player has GPS data for, as seen by the
// game model. MinutesPlayed is nil when match stats carry no minutes.
type PlayerMatch struct {
	MatchID       string
	ReportID      string
	Date          time.Time
	MinutesPlayed *float64
	Metrics       map[string]float64
	Processed     bool
	// Corrupt is set when the stored GPS row could not be read.
	Corrupt string
}

// Minutes returns playing time, preferring recorded match stats and
// falling back to the GPS duration when allowed.
func (m PlayerMatch) Minutes(gpsFallback bool) (float64, bool) {
	if m.MinutesPlayed != nil {
		return *m.MinutesPlayed, true
	}
	if !gpsFallback {
		return 0, false
	}
	seconds, ok := m.Metrics[canonical.KeyDuration]
	if !ok {
		return 0, false
	}
	return seconds / 60, true
}

// MinutesEntry is the playing time recorded for a player in a match.
type MinutesEntry struct {
	ClubID        string
	MatchID       string
	PlayerID      string
	MinutesPlayed float64
	UpdatedAt     time.Time
}
