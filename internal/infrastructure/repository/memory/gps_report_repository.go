package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/riskibarqy/gps-gamemodel/internal/domain/gpsprofile"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/gpsreport"
)

type GPSReportRepository struct {
	mu       sync.RWMutex
	reports  map[string]gpsreport.Report
	mappings map[string]map[int]gpsreport.PlayerMapping
}

func NewGPSReportRepository() *GPSReportRepository {
	return &GPSReportRepository{
		reports:  make(map[string]gpsreport.Report),
		mappings: make(map[string]map[int]gpsreport.PlayerMapping),
	}
}

// Save replaces the report and its automatic mappings.
func (r *GPSReportRepository) Save(_ context.Context, report gpsreport.Report, mappings []gpsreport.PlayerMapping) error {
	byRow := make(map[int]gpsreport.PlayerMapping, len(mappings))
	for _, m := range mappings {
		m.ReportID = report.ID
		byRow[m.RowIndex] = cloneMapping(m)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.reports[report.ID]; ok {
		report.CreatedAt = existing.CreatedAt
	}
	r.reports[report.ID] = cloneReport(report)
	// Manual rows stay as stored, whatever the caller computed.
	for idx, m := range r.mappings[report.ID] {
		if m.IsManual {
			byRow[idx] = m
		}
	}
	r.mappings[report.ID] = byRow
	return nil
}

func (r *GPSReportRepository) GetByID(_ context.Context, clubID, reportID string) (gpsreport.Report, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[reportID]
	if !ok || report.ClubID != clubID {
		return gpsreport.Report{}, false, nil
	}
	return cloneReport(report), true, nil
}

func (r *GPSReportRepository) ListMappings(_ context.Context, reportID string) ([]gpsreport.PlayerMapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.listMappingsLocked(reportID), nil
}

func (r *GPSReportRepository) GetMapping(_ context.Context, reportID string, rowIndex int) (gpsreport.PlayerMapping, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.mappings[reportID][rowIndex]
	if !ok {
		return gpsreport.PlayerMapping{}, false, nil
	}
	return cloneMapping(m), true, nil
}

func (r *GPSReportRepository) UpdateMapping(_ context.Context, mapping gpsreport.PlayerMapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, ok := r.mappings[mapping.ReportID]
	if !ok {
		rows = make(map[int]gpsreport.PlayerMapping)
		r.mappings[mapping.ReportID] = rows
	}
	rows[mapping.RowIndex] = cloneMapping(mapping)
	return nil
}

func (r *GPSReportRepository) listMappingsLocked(reportID string) []gpsreport.PlayerMapping {
	rows := r.mappings[reportID]
	out := make([]gpsreport.PlayerMapping, 0, len(rows))
	for _, m := range rows {
		out = append(out, cloneMapping(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RowIndex < out[j].RowIndex })
	return out
}

func (r *GPSReportRepository) deleteMatchReportsLocked(clubID, matchID string) {
	for id, report := range r.reports {
		if report.ClubID == clubID && report.EventType == gpsreport.EventMatch && report.EventID == matchID {
			delete(r.reports, id)
			delete(r.mappings, id)
		}
	}
}

func cloneReport(report gpsreport.Report) gpsreport.Report {
	rows := make([]gpsprofile.CanonicalRow, 0, len(report.ProcessedData))
	for _, row := range report.ProcessedData {
		row.Values = maps.Clone(row.Values)
		row.Text = maps.Clone(row.Text)
		row.Undefined = append([]string(nil), row.Undefined...)
		row.Warnings = append([]string(nil), row.Warnings...)
		rows = append(rows, row)
	}
	report.ProcessedData = rows
	report.SkippedRows = append([]gpsprofile.SkippedRow(nil), report.SkippedRows...)
	report.RawData.Headers = append([]string(nil), report.RawData.Headers...)
	report.RawData.Rows = append([][]any(nil), report.RawData.Rows...)
	return report
}

func cloneMapping(m gpsreport.PlayerMapping) gpsreport.PlayerMapping {
	if m.PlayerID != nil {
		id := *m.PlayerID
		m.PlayerID = &id
	}
	if m.Similarity != nil {
		s := *m.Similarity
		m.Similarity = &s
	}
	m.Candidates = append(m.Candidates[:0:0], m.Candidates...)
	return m
}
