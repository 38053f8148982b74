package gpsreport

import (
	"time"

	"github.com/riskibarqy/gps-gamemodel/internal/domain/gpsprofile"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/identity"
)

type EventType string

const (
	EventTraining EventType = "TRAINING"
	EventMatch    EventType = "MATCH"
)

func (e EventType) Valid() bool {
	return e == EventTraining || e == EventMatch
}

// Report is one imported GPS export. RawData is kept so the report can be
// reprocessed; ProcessedData holds the canonical rows produced from it with
// ProfileSnapshot.
type Report struct {
	ID              string
	ClubID          string
	TeamID          string
	ProfileID       string
	EventType       EventType
	EventID         string
	EventDate       time.Time
	FileName        string
	RawData         gpsprofile.RawTable
	ProcessedData   []gpsprofile.CanonicalRow
	SkippedRows     []gpsprofile.SkippedRow
	ProfileSnapshot gpsprofile.Snapshot
	IsProcessed     bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Row returns the processed row produced from source row rowIndex.
func (r Report) Row(rowIndex int) (gpsprofile.CanonicalRow, bool) {
	for _, row := range r.ProcessedData {
		if row.RowIndex == rowIndex {
			return row, true
		}
	}
	return gpsprofile.CanonicalRow{}, false
}

// PlayerMapping attributes a processed row to a roster player. Similarity is
// the 0-100 confidence of an automatic match and is nil for manual ones.
type PlayerMapping struct {
	ReportID   string
	RowIndex   int
	SourceName string
	PlayerID   *string
	IsManual   bool
	Similarity *int
	Candidates []identity.Candidate
	UpdatedAt  time.Time
}

func (m PlayerMapping) Resolved() bool {
	return m.PlayerID != nil && *m.PlayerID != ""
}

// MappedPlayerIDs returns the distinct players attributed in mappings.
func MappedPlayerIDs(mappings []PlayerMapping) []string {
	seen := make(map[string]struct{}, len(mappings))
	out := make([]string, 0, len(mappings))
	for _, m := range mappings {
		if !m.Resolved() {
			continue
		}
		if _, ok := seen[*m.PlayerID]; ok {
			continue
		}
		seen[*m.PlayerID] = struct{}{}
		out = append(out, *m.PlayerID)
	}
	return out
}
