package httpapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/gps-gamemodel/internal/domain/canonical"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/gamemodel"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/gpsprofile"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/gpsreport"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/identity"
	"github.com/riskibarqy/gps-gamemodel/internal/usecase"
)

type columnMappingRequest struct {
	SourceHeader string `json:"source_header" validate:"max=200"`
	SourceIndex  *int   `json:"source_index" validate:"omitempty,min=0"`
	CanonicalKey string `json:"canonical_key" validate:"required"`
	Unit         string `json:"unit" validate:"max=20"`
	Order        int    `json:"order"`
	IsVisible    bool   `json:"is_visible"`
}

type formulaRequest struct {
	CanonicalKey string `json:"canonical_key" validate:"required"`
	Expression   string `json:"expression" validate:"required,max=500"`
}

type upsertProfileRequest struct {
	VendorName string                 `json:"vendor_name" validate:"required,max=100"`
	Name       string                 `json:"name" validate:"omitempty,max=100"`
	Columns    []columnMappingRequest `json:"columns" validate:"required,min=1,dive"`
	Formulas   []formulaRequest       `json:"formulas" validate:"omitempty,dive"`
}

func (req upsertProfileRequest) toInput(clubID, profileID string) usecase.UpsertProfileInput {
	columns := make([]gpsprofile.ColumnMapping, 0, len(req.Columns))
	for _, c := range req.Columns {
		columns = append(columns, gpsprofile.ColumnMapping{
			SourceHeader: c.SourceHeader,
			SourceIndex:  c.SourceIndex,
			CanonicalKey: strings.TrimSpace(c.CanonicalKey),
			Unit:         strings.TrimSpace(c.Unit),
			Order:        c.Order,
			IsVisible:    c.IsVisible,
		})
	}
	formulas := make([]gpsprofile.Formula, 0, len(req.Formulas))
	for _, f := range req.Formulas {
		formulas = append(formulas, gpsprofile.Formula{
			CanonicalKey: strings.TrimSpace(f.CanonicalKey),
			Expression:   f.Expression,
		})
	}
	return usecase.UpsertProfileInput{
		ClubID:     clubID,
		ProfileID:  profileID,
		VendorName: req.VendorName,
		Name:       req.Name,
		Columns:    columns,
		Formulas:   formulas,
	}
}

type importReportRequest struct {
	TeamID    string   `json:"team_id" validate:"required"`
	ProfileID string   `json:"profile_id" validate:"required"`
	EventType string   `json:"event_type" validate:"required,oneof=TRAINING MATCH"`
	EventID   string   `json:"event_id" validate:"required,max=100"`
	EventDate string   `json:"event_date" validate:"required"`
	FileName  string   `json:"file_name" validate:"omitempty,max=255"`
	Headers   []string `json:"headers" validate:"required,min=1"`
	Rows      [][]any  `json:"rows"`
}

func (req importReportRequest) toInput(clubID string) (usecase.ImportReportInput, error) {
	eventDate, err := parseEventDate(req.EventDate)
	if err != nil {
		return usecase.ImportReportInput{}, err
	}
	return usecase.ImportReportInput{
		ClubID:    clubID,
		TeamID:    req.TeamID,
		ProfileID: req.ProfileID,
		EventType: gpsreport.EventType(req.EventType),
		EventID:   req.EventID,
		EventDate: eventDate,
		FileName:  req.FileName,
		Table:     gpsprofile.RawTable{Headers: req.Headers, Rows: req.Rows},
	}, nil
}

type confirmMappingRequest struct {
	PlayerID *string `json:"player_id" validate:"omitempty,min=1"`
}

type updateMinutesRequest struct {
	MinutesPlayed *float64 `json:"minutes_played" validate:"required,gte=0,lte=240"`
}

// parseEventDate accepts a calendar date or an RFC 3339 timestamp.
func parseEventDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: event_date must be YYYY-MM-DD or RFC 3339", usecase.ErrInvalidInput)
	}
	return t.UTC(), nil
}

type canonicalRegistryDTO struct {
	Version string               `json:"version"`
	Metrics []canonicalMetricDTO `json:"metrics"`
}

type canonicalMetricDTO struct {
	Key          string   `json:"key"`
	Label        string   `json:"label"`
	Unit         string   `json:"unit"`
	Dimension    string   `json:"dimension"`
	Aggregation  string   `json:"aggregation"`
	Scaling      string   `json:"scaling"`
	PlausibleMin *float64 `json:"plausibleMin,omitempty"`
	PlausibleMax *float64 `json:"plausibleMax,omitempty"`
	IsDerived    bool     `json:"isDerived"`
	Averageable  bool     `json:"averageable"`
}

func canonicalMetricToDTO(m canonical.Metric, lang string) canonicalMetricDTO {
	return canonicalMetricDTO{
		Key:          m.Key,
		Label:        m.Label(lang),
		Unit:         m.Unit,
		Dimension:    m.Dimension,
		Aggregation:  string(m.Aggregation),
		Scaling:      string(m.Scaling),
		PlausibleMin: m.PlausibleMin,
		PlausibleMax: m.PlausibleMax,
		IsDerived:    m.IsDerived,
		Averageable:  m.Averageable(),
	}
}

type profileDTO struct {
	ID         string                     `json:"id"`
	ClubID     string                     `json:"clubId"`
	VendorName string                     `json:"vendorName"`
	Name       string                     `json:"name"`
	Columns    []gpsprofile.ColumnMapping `json:"columns"`
	Formulas   []gpsprofile.Formula       `json:"formulas"`
	CreatedAt  time.Time                  `json:"createdAt"`
	UpdatedAt  time.Time                  `json:"updatedAt"`
}

func profileToDTO(p gpsprofile.Profile) profileDTO {
	formulas := p.Formulas
	if formulas == nil {
		formulas = []gpsprofile.Formula{}
	}
	return profileDTO{
		ID:         p.ID,
		ClubID:     p.ClubID,
		VendorName: p.VendorName,
		Name:       p.Name,
		Columns:    p.Columns,
		Formulas:   formulas,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

type reportDTO struct {
	ID              string                    `json:"id"`
	ClubID          string                    `json:"clubId"`
	TeamID          string                    `json:"teamId"`
	ProfileID       string                    `json:"profileId"`
	EventType       string                    `json:"eventType"`
	EventID         string                    `json:"eventId"`
	EventDate       string                    `json:"eventDate"`
	FileName        string                    `json:"fileName,omitempty"`
	IsProcessed     bool                      `json:"isProcessed"`
	ProcessedData   []gpsprofile.CanonicalRow `json:"processedData"`
	SkippedRows     []gpsprofile.SkippedRow   `json:"skippedRows"`
	ProfileSnapshot gpsprofile.Snapshot       `json:"profileSnapshot"`
	Mappings        []mappingDTO              `json:"mappings"`
	CreatedAt       time.Time                 `json:"createdAt"`
	UpdatedAt       time.Time                 `json:"updatedAt"`
}

type mappingDTO struct {
	RowIndex   int                  `json:"rowIndex"`
	SourceName string               `json:"sourceName"`
	PlayerID   *string              `json:"playerId"`
	IsManual   bool                 `json:"isManual"`
	Similarity *int                 `json:"similarity"`
	Candidates []identity.Candidate `json:"candidates,omitempty"`
	UpdatedAt  time.Time            `json:"updatedAt"`
}

func mappingToDTO(m gpsreport.PlayerMapping) mappingDTO {
	return mappingDTO{
		RowIndex:   m.RowIndex,
		SourceName: m.SourceName,
		PlayerID:   m.PlayerID,
		IsManual:   m.IsManual,
		Similarity: m.Similarity,
		Candidates: m.Candidates,
		UpdatedAt:  m.UpdatedAt,
	}
}

func reportToDTO(r gpsreport.Report, mappings []gpsreport.PlayerMapping) reportDTO {
	items := make([]mappingDTO, 0, len(mappings))
	for _, m := range mappings {
		items = append(items, mappingToDTO(m))
	}
	rows := r.ProcessedData
	if rows == nil {
		rows = []gpsprofile.CanonicalRow{}
	}
	skipped := r.SkippedRows
	if skipped == nil {
		skipped = []gpsprofile.SkippedRow{}
	}
	return reportDTO{
		ID:              r.ID,
		ClubID:          r.ClubID,
		TeamID:          r.TeamID,
		ProfileID:       r.ProfileID,
		EventType:       string(r.EventType),
		EventID:         r.EventID,
		EventDate:       r.EventDate.Format(time.DateOnly),
		FileName:        r.FileName,
		IsProcessed:     r.IsProcessed,
		ProcessedData:   rows,
		SkippedRows:     skipped,
		ProfileSnapshot: r.ProfileSnapshot,
		Mappings:        items,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

type importResultDTO struct {
	Report  reportDTO             `json:"report"`
	Summary usecase.ImportSummary `json:"summary"`
}

type confirmMappingDTO struct {
	Mapping   mappingDTO               `json:"mapping"`
	Recompute usecase.RecomputeSummary `json:"recompute"`
}

type gameModelDTO struct {
	PlayerID     string             `json:"playerId"`
	ClubID       string             `json:"clubId"`
	MatchesCount int                `json:"matchesCount"`
	TotalMinutes float64            `json:"totalMinutes"`
	Metrics      map[string]float64 `json:"metrics"`
	MatchIDs     []string           `json:"matchIds"`
	Version      int64              `json:"version"`
	CalculatedAt time.Time          `json:"calculatedAt"`
}

func gameModelToDTO(m gamemodel.PlayerGameModel) gameModelDTO {
	return gameModelDTO{
		PlayerID:     m.PlayerID,
		ClubID:       m.ClubID,
		MatchesCount: m.MatchesCount,
		TotalMinutes: m.TotalMinutes,
		Metrics:      m.Metrics,
		MatchIDs:     m.MatchIDs,
		Version:      m.Version,
		CalculatedAt: m.CalculatedAt,
	}
}

type skipDTO struct {
	MatchID string `json:"matchId"`
	Reason  string `json:"reason"`
	Detail  string `json:"detail,omitempty"`
}

type recomputeResultDTO struct {
	Model   *gameModelDTO `json:"model"`
	Deleted bool          `json:"deleted"`
	Skipped []skipDTO     `json:"skipped"`
}

func recomputeResultToDTO(r usecase.RecomputeResult) recomputeResultDTO {
	out := recomputeResultDTO{Deleted: r.Deleted, Skipped: make([]skipDTO, 0, len(r.Skipped))}
	if r.Model != nil {
		model := gameModelToDTO(*r.Model)
		out.Model = &model
	}
	for _, s := range r.Skipped {
		out.Skipped = append(out.Skipped, skipDTO{MatchID: s.MatchID, Reason: string(s.Reason), Detail: s.Detail})
	}
	return out
}
