package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/riskibarqy/gps-gamemodel/internal/domain/gpsreport"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/matchstats"
)

type minutesKey struct {
	clubID   string
	matchID  string
	playerID string
}

// MatchStatsRepository joins recorded minutes with the GPS rows held by
// the report repository.
type MatchStatsRepository struct {
	mu      sync.RWMutex
	reports *GPSReportRepository
	minutes map[minutesKey]matchstats.MinutesEntry
}

func NewMatchStatsRepository(reports *GPSReportRepository) *MatchStatsRepository {
	return &MatchStatsRepository{
		reports: reports,
		minutes: make(map[minutesKey]matchstats.MinutesEntry),
	}
}

func (r *MatchStatsRepository) ListPlayerMatches(_ context.Context, clubID, playerID string) ([]matchstats.PlayerMatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.reports.mu.RLock()
	defer r.reports.mu.RUnlock()

	latest := make(map[string]gpsreport.Report)
	rowByReport := make(map[string]int)
	for _, report := range r.reports.reports {
		if report.ClubID != clubID || report.EventType != gpsreport.EventMatch {
			continue
		}
		rowIndex, ok := mappedRow(r.reports.mappings[report.ID], playerID)
		if !ok {
			continue
		}
		current, seen := latest[report.EventID]
		if seen && !newerReport(report, current) {
			continue
		}
		latest[report.EventID] = report
		rowByReport[report.ID] = rowIndex
	}

	out := make([]matchstats.PlayerMatch, 0, len(latest))
	for matchID, report := range latest {
		pm := matchstats.PlayerMatch{
			MatchID:   matchID,
			ReportID:  report.ID,
			Date:      report.EventDate,
			Processed: report.IsProcessed,
		}
		if entry, ok := r.minutes[minutesKey{clubID: clubID, matchID: matchID, playerID: playerID}]; ok {
			minutes := entry.MinutesPlayed
			pm.MinutesPlayed = &minutes
		}
		rowIndex := rowByReport[report.ID]
		if row, ok := report.Row(rowIndex); ok {
			pm.Metrics = maps.Clone(row.Values)
		} else {
			pm.Corrupt = fmt.Sprintf("processed row %d missing", rowIndex)
		}
		out = append(out, pm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatchID < out[j].MatchID })
	return out, nil
}

func (r *MatchStatsRepository) ListMatchPlayers(_ context.Context, clubID, matchID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.reports.mu.RLock()
	defer r.reports.mu.RUnlock()

	seen := make(map[string]struct{})
	for key := range r.minutes {
		if key.clubID == clubID && key.matchID == matchID {
			seen[key.playerID] = struct{}{}
		}
	}
	for _, report := range r.reports.reports {
		if report.ClubID != clubID || report.EventType != gpsreport.EventMatch || report.EventID != matchID {
			continue
		}
		for _, m := range r.reports.mappings[report.ID] {
			if m.Resolved() {
				seen[*m.PlayerID] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (r *MatchStatsRepository) UpsertMinutes(_ context.Context, entry matchstats.MinutesEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.minutes[minutesKey{clubID: entry.ClubID, matchID: entry.MatchID, playerID: entry.PlayerID}] = entry
	return nil
}

func (r *MatchStatsRepository) DeleteMatch(_ context.Context, clubID, matchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports.mu.Lock()
	defer r.reports.mu.Unlock()

	for key := range r.minutes {
		if key.clubID == clubID && key.matchID == matchID {
			delete(r.minutes, key)
		}
	}
	r.reports.deleteMatchReportsLocked(clubID, matchID)
	return nil
}

func mappedRow(rows map[int]gpsreport.PlayerMapping, playerID string) (int, bool) {
	found := -1
	for idx, m := range rows {
		if m.Resolved() && *m.PlayerID == playerID && (found < 0 || idx < found) {
			found = idx
		}
	}
	return found, found >= 0
}

func newerReport(a, b gpsreport.Report) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.ID > b.ID
}
