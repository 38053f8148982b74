package gamemodel

import "time"

// DefaultWindow is the number of most recent qualifying matches combined.
const DefaultWindow = 10

// PlayerGameModel is the per-minute performance summary of a player over
// their most recent qualifying matches. One row exists per (club, player).
type PlayerGameModel struct {
	PlayerID     string
	ClubID       string
	MatchesCount int
	TotalMinutes float64
	Metrics      map[string]float64
	MatchIDs     []string
	Version      int64
	CalculatedAt time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
