package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/gps-gamemodel/internal/domain/canonical"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/gpsprofile"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/gpsreport"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/identity"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/roster"
	idgen "github.com/riskibarqy/gps-gamemodel/internal/platform/id"
	"github.com/riskibarqy/gps-gamemodel/internal/platform/logging"
)

type ImportReportInput struct {
	ClubID    string
	TeamID    string
	ProfileID string
	EventType gpsreport.EventType
	EventID   string
	EventDate time.Time
	FileName  string
	Table     gpsprofile.RawTable
}

type ImportSummary struct {
	Rows             int `json:"rows"`
	Mapped           int `json:"mapped"`
	Unresolved       int `json:"unresolved"`
	Ambiguous        int `json:"ambiguous"`
	Skipped          int `json:"skipped"`
	Warnings         int `json:"warnings"`
	ModelsRecomputed int `json:"modelsRecomputed"`
	ModelsDeleted    int `json:"modelsDeleted"`
	ModelsFailed     int `json:"modelsFailed"`
}

type ImportResult struct {
	Report   gpsreport.Report
	Mappings []gpsreport.PlayerMapping
	Summary  ImportSummary
}

type ReportDetails struct {
	Report   gpsreport.Report
	Mappings []gpsreport.PlayerMapping
}

type ConfirmMappingInput struct {
	ClubID   string
	ReportID string
	RowIndex int
	// PlayerID nil marks the row as deliberately unassigned.
	PlayerID *string
}

type ConfirmMappingResult struct {
	Mapping   gpsreport.PlayerMapping
	Recompute RecomputeSummary
}

type ReportService struct {
	reports    gpsreport.Repository
	profiles   gpsprofile.Repository
	rosterRepo roster.Repository
	registry   *canonical.Registry
	resolver   *identity.Resolver
	gameModels *GameModelService
	idGen      idgen.Generator
	logger     *logging.Logger
	now        func() time.Time
}

func NewReportService(
	reports gpsreport.Repository,
	profiles gpsprofile.Repository,
	rosterRepo roster.Repository,
	registry *canonical.Registry,
	resolver *identity.Resolver,
	gameModels *GameModelService,
	idGen idgen.Generator,
	logger *logging.Logger,
) *ReportService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReportService{
		reports:    reports,
		profiles:   profiles,
		rosterRepo: rosterRepo,
		registry:   registry,
		resolver:   resolver,
		gameModels: gameModels,
		idGen:      idGen,
		logger:     logger,
		now:        time.Now,
	}
}

// ImportReport maps a parsed export through the profile, attributes every
// row to a roster player and stores the report with its mappings in one
// write. Nothing is stored when processing fails. MATCH imports recompute
// the game model of every attributed player.
func (s *ReportService) ImportReport(ctx context.Context, input ImportReportInput) (ImportResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReportService.ImportReport", clubAttr(input.ClubID))
	defer span.End()

	input, err := normalizeImportInput(input)
	if err != nil {
		return ImportResult{}, err
	}

	profile, exists, err := s.profiles.GetByID(ctx, input.ClubID, input.ProfileID)
	if err != nil {
		return ImportResult{}, fmt.Errorf("get gps profile: %w", err)
	}
	if !exists {
		return ImportResult{}, fmt.Errorf("%w: gps profile id=%s", ErrNotFound, input.ProfileID)
	}

	players, err := s.rosterRepo.ListByTeam(ctx, input.ClubID, input.TeamID)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: list team roster: %w", ErrDependencyUnavailable, err)
	}

	reportID, err := s.idGen.NewID()
	if err != nil {
		return ImportResult{}, fmt.Errorf("generate report id: %w", err)
	}

	now := s.now().UTC()
	report := gpsreport.Report{
		ID:              reportID,
		ClubID:          input.ClubID,
		TeamID:          input.TeamID,
		ProfileID:       profile.ID,
		EventType:       input.EventType,
		EventID:         input.EventID,
		EventDate:       input.EventDate.UTC(),
		FileName:        input.FileName,
		RawData:         input.Table,
		ProfileSnapshot: profile.Snapshot(s.registry.Version(), now),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	summary, err := s.process(ctx, &report)
	if err != nil {
		return ImportResult{}, err
	}
	mappings := s.resolveRows(ctx, report, players, nil, now, &summary)

	if err := s.reports.Save(ctx, report, mappings); err != nil {
		return ImportResult{}, fmt.Errorf("save gps report: %w", err)
	}

	if report.EventType == gpsreport.EventMatch {
		recompute := s.recompute(ctx, report.ClubID, gpsreport.MappedPlayerIDs(mappings))
		summary.applyRecompute(recompute)
	}

	s.logger.InfoContext(ctx, "gps report imported",
		"club_id", report.ClubID,
		"report_id", report.ID,
		"event_type", string(report.EventType),
		"event_id", report.EventID,
		"rows", summary.Rows,
		"mapped", summary.Mapped,
		"unresolved", summary.Unresolved,
		"skipped", summary.Skipped,
		"models_recomputed", summary.ModelsRecomputed,
	)
	return ImportResult{Report: report, Mappings: mappings, Summary: summary}, nil
}

// ReprocessReport rebuilds processed rows from the stored raw table. Manual
// mappings are kept; automatic ones are resolved again. With
// refreshSnapshot the current profile replaces the stored snapshot.
func (s *ReportService) ReprocessReport(ctx context.Context, clubID, reportID string, refreshSnapshot bool) (ImportResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReportService.ReprocessReport", clubAttr(clubID), reportAttr(reportID))
	defer span.End()

	report, err := s.getReport(ctx, clubID, reportID)
	if err != nil {
		return ImportResult{}, err
	}

	now := s.now().UTC()
	if refreshSnapshot {
		profile, exists, err := s.profiles.GetByID(ctx, report.ClubID, report.ProfileID)
		if err != nil {
			return ImportResult{}, fmt.Errorf("get gps profile: %w", err)
		}
		if !exists {
			return ImportResult{}, fmt.Errorf("%w: gps profile id=%s", ErrNotFound, report.ProfileID)
		}
		report.ProfileSnapshot = profile.Snapshot(s.registry.Version(), now)
	}

	previous, err := s.reports.ListMappings(ctx, report.ID)
	if err != nil {
		return ImportResult{}, fmt.Errorf("list gps mappings: %w", err)
	}
	players, err := s.rosterRepo.ListByTeam(ctx, report.ClubID, report.TeamID)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: list team roster: %w", ErrDependencyUnavailable, err)
	}

	manual := make(map[int]gpsreport.PlayerMapping, len(previous))
	for _, m := range previous {
		if m.IsManual {
			manual[m.RowIndex] = m
		}
	}

	report.UpdatedAt = now
	summary, err := s.process(ctx, &report)
	if err != nil {
		return ImportResult{}, err
	}
	mappings := s.resolveRows(ctx, report, players, manual, now, &summary)

	if err := s.reports.Save(ctx, report, mappings); err != nil {
		return ImportResult{}, fmt.Errorf("save gps report: %w", err)
	}

	if report.EventType == gpsreport.EventMatch {
		affected := mergePlayerIDs(gpsreport.MappedPlayerIDs(previous), gpsreport.MappedPlayerIDs(mappings))
		summary.applyRecompute(s.recompute(ctx, report.ClubID, affected))
	}

	s.logger.InfoContext(ctx, "gps report reprocessed",
		"club_id", report.ClubID,
		"report_id", report.ID,
		"refresh_snapshot", refreshSnapshot,
		"rows", summary.Rows,
		"mapped", summary.Mapped,
		"manual_kept", len(manual),
	)
	return ImportResult{Report: report, Mappings: mappings, Summary: summary}, nil
}

// ConfirmMapping records a manual attribution for one row. The source name
// is learned as an alias of the chosen player.
func (s *ReportService) ConfirmMapping(ctx context.Context, input ConfirmMappingInput) (ConfirmMappingResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReportService.ConfirmMapping", clubAttr(input.ClubID), reportAttr(input.ReportID))
	defer span.End()

	report, err := s.getReport(ctx, input.ClubID, input.ReportID)
	if err != nil {
		return ConfirmMappingResult{}, err
	}

	mapping, exists, err := s.reports.GetMapping(ctx, report.ID, input.RowIndex)
	if err != nil {
		return ConfirmMappingResult{}, fmt.Errorf("get gps mapping: %w", err)
	}
	if !exists {
		return ConfirmMappingResult{}, fmt.Errorf("%w: gps mapping report=%s row=%d", ErrNotFound, report.ID, input.RowIndex)
	}

	var player roster.Player
	if input.PlayerID != nil {
		playerID := strings.TrimSpace(*input.PlayerID)
		if playerID == "" {
			return ConfirmMappingResult{}, fmt.Errorf("%w: player id must not be blank", ErrInvalidInput)
		}
		p, ok, err := s.rosterRepo.GetByID(ctx, report.ClubID, playerID)
		if err != nil {
			return ConfirmMappingResult{}, fmt.Errorf("%w: get roster player: %w", ErrDependencyUnavailable, err)
		}
		if !ok {
			return ConfirmMappingResult{}, fmt.Errorf("%w: player id=%s is not in club %s", ErrInvalidInput, playerID, report.ClubID)
		}
		player = p
	}

	previousID := ""
	if mapping.Resolved() {
		previousID = *mapping.PlayerID
	}

	mapping.PlayerID = nil
	if player.ID != "" {
		id := player.ID
		mapping.PlayerID = &id
	}
	mapping.IsManual = true
	mapping.Similarity = nil
	mapping.UpdatedAt = s.now().UTC()

	if err := s.reports.UpdateMapping(ctx, mapping); err != nil {
		return ConfirmMappingResult{}, fmt.Errorf("update gps mapping: %w", err)
	}

	if player.ID != "" {
		s.learnAlias(ctx, player, mapping.SourceName)
	}

	result := ConfirmMappingResult{Mapping: mapping}
	if report.EventType == gpsreport.EventMatch {
		affected := make([]string, 0, 2)
		if previousID != "" {
			affected = append(affected, previousID)
		}
		affected = mergePlayerIDs(affected, []string{player.ID})
		result.Recompute = s.recompute(ctx, report.ClubID, affected)
	}

	s.logger.InfoContext(ctx, "gps mapping confirmed",
		"club_id", report.ClubID,
		"report_id", report.ID,
		"row_index", mapping.RowIndex,
		"player_id", player.ID,
		"previous_player_id", previousID,
	)
	return result, nil
}

func (s *ReportService) GetReport(ctx context.Context, clubID, reportID string) (ReportDetails, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReportService.GetReport", clubAttr(clubID), reportAttr(reportID))
	defer span.End()

	report, err := s.getReport(ctx, clubID, reportID)
	if err != nil {
		return ReportDetails{}, err
	}
	mappings, err := s.reports.ListMappings(ctx, report.ID)
	if err != nil {
		return ReportDetails{}, fmt.Errorf("list gps mappings: %w", err)
	}
	return ReportDetails{Report: report, Mappings: mappings}, nil
}

func (s *ReportService) getReport(ctx context.Context, clubID, reportID string) (gpsreport.Report, error) {
	clubID = strings.TrimSpace(clubID)
	reportID = strings.TrimSpace(reportID)
	if clubID == "" || reportID == "" {
		return gpsreport.Report{}, fmt.Errorf("%w: club id and report id are required", ErrInvalidInput)
	}

	report, exists, err := s.reports.GetByID(ctx, clubID, reportID)
	if err != nil {
		return gpsreport.Report{}, fmt.Errorf("get gps report: %w", err)
	}
	if !exists {
		return gpsreport.Report{}, fmt.Errorf("%w: gps report id=%s", ErrNotFound, reportID)
	}
	return report, nil
}

// process maps the raw table through the report snapshot and fills the
// processed fields.
func (s *ReportService) process(ctx context.Context, report *gpsreport.Report) (ImportSummary, error) {
	plan, err := gpsprofile.NewPlan(s.registry, report.ProfileSnapshot)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("%w: prepare profile snapshot: %w", ErrInvalidInput, err)
	}

	result := plan.MapTable(report.RawData)
	report.ProcessedData = result.Rows
	report.SkippedRows = result.Skipped
	report.IsProcessed = true

	summary := ImportSummary{
		Rows:     len(result.Rows),
		Skipped:  len(result.Skipped),
		Warnings: len(result.Warnings),
	}
	for _, w := range result.Warnings {
		s.logger.WarnContext(ctx, "gps column not bound",
			"report_id", report.ID,
			"detail", w,
		)
	}
	for _, skipped := range result.Skipped {
		s.logger.WarnContext(ctx, "gps row skipped",
			"report_id", report.ID,
			"row_index", skipped.RowIndex,
			"reason", string(skipped.Reason),
		)
	}
	for _, row := range result.Rows {
		summary.Warnings += len(row.Warnings)
		for _, w := range row.Warnings {
			s.logger.WarnContext(ctx, "gps row warning",
				"report_id", report.ID,
				"row_index", row.RowIndex,
				"detail", w,
			)
		}
	}
	return summary, nil
}

// resolveRows attributes every processed row. Rows present in keep retain
// their stored mapping.
func (s *ReportService) resolveRows(
	ctx context.Context,
	report gpsreport.Report,
	players []roster.Player,
	keep map[int]gpsreport.PlayerMapping,
	now time.Time,
	summary *ImportSummary,
) []gpsreport.PlayerMapping {
	mappings := make([]gpsreport.PlayerMapping, 0, len(report.ProcessedData))
	for _, row := range report.ProcessedData {
		if kept, ok := keep[row.RowIndex]; ok {
			kept.ReportID = report.ID
			mappings = append(mappings, kept)
			if kept.Resolved() {
				summary.Mapped++
			} else {
				summary.Unresolved++
			}
			continue
		}

		resolution := s.resolver.Resolve(row.AthleteName, players)
		mapping := gpsreport.PlayerMapping{
			ReportID:   report.ID,
			RowIndex:   row.RowIndex,
			SourceName: row.AthleteName,
			PlayerID:   resolution.PlayerID,
			Similarity: resolution.Similarity(),
			Candidates: resolution.Candidates,
			UpdatedAt:  now,
		}
		mappings = append(mappings, mapping)

		switch {
		case mapping.Resolved():
			summary.Mapped++
		case resolution.Action == identity.ActionManual:
			summary.Ambiguous++
			summary.Unresolved++
			s.logger.WarnContext(ctx, "gps row needs manual mapping",
				"report_id", report.ID,
				"row_index", row.RowIndex,
				"source_name", row.AthleteName,
				"candidates", len(resolution.Candidates),
				"error", resolution.Err(),
			)
		default:
			summary.Unresolved++
		}
	}

	// Manual mappings of rows that are no longer produced are kept as is.
	produced := make(map[int]struct{}, len(report.ProcessedData))
	for _, row := range report.ProcessedData {
		produced[row.RowIndex] = struct{}{}
	}
	orphaned := make([]int, 0)
	for idx := range keep {
		if _, ok := produced[idx]; !ok {
			orphaned = append(orphaned, idx)
		}
	}
	sort.Ints(orphaned)
	for _, idx := range orphaned {
		kept := keep[idx]
		kept.ReportID = report.ID
		mappings = append(mappings, kept)
		s.logger.WarnContext(ctx, "manual gps mapping kept for skipped row",
			"report_id", report.ID,
			"row_index", idx,
			"source_name", kept.SourceName,
		)
	}
	return mappings
}

func (s *ReportService) learnAlias(ctx context.Context, player roster.Player, sourceName string) {
	normalized := identity.Normalize(sourceName)
	if normalized == "" {
		return
	}
	for _, name := range player.Names() {
		if identity.Normalize(name) == normalized {
			return
		}
	}

	if err := s.rosterRepo.AddAlias(ctx, player.ClubID, player.ID, strings.TrimSpace(sourceName)); err != nil {
		s.logger.WarnContext(ctx, "learn player alias failed",
			"club_id", player.ClubID,
			"player_id", player.ID,
			"alias", sourceName,
			"error", err,
		)
	}
}

func (s *ReportService) recompute(ctx context.Context, clubID string, playerIDs []string) RecomputeSummary {
	if s.gameModels == nil || len(playerIDs) == 0 {
		return RecomputeSummary{}
	}
	return s.gameModels.RecomputePlayers(ctx, clubID, playerIDs)
}

func (s *ImportSummary) applyRecompute(r RecomputeSummary) {
	s.ModelsRecomputed = r.Recomputed
	s.ModelsDeleted = r.Deleted
	s.ModelsFailed = r.Failed
}

func normalizeImportInput(input ImportReportInput) (ImportReportInput, error) {
	input.ClubID = strings.TrimSpace(input.ClubID)
	input.TeamID = strings.TrimSpace(input.TeamID)
	input.ProfileID = strings.TrimSpace(input.ProfileID)
	input.EventID = strings.TrimSpace(input.EventID)
	input.FileName = strings.TrimSpace(input.FileName)

	switch {
	case input.ClubID == "":
		return input, fmt.Errorf("%w: club id is required", ErrInvalidInput)
	case input.TeamID == "":
		return input, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	case input.ProfileID == "":
		return input, fmt.Errorf("%w: profile id is required", ErrInvalidInput)
	case !input.EventType.Valid():
		return input, fmt.Errorf("%w: event type must be TRAINING or MATCH, got %q", ErrInvalidInput, input.EventType)
	case input.EventID == "":
		return input, fmt.Errorf("%w: event id is required", ErrInvalidInput)
	case input.EventDate.IsZero():
		return input, fmt.Errorf("%w: event date is required", ErrInvalidInput)
	case len(input.Table.Headers) == 0:
		return input, fmt.Errorf("%w: table has no headers", ErrInvalidInput)
	}
	return input, nil
}

// mergePlayerIDs appends the ids of b missing from a, skipping blanks.
func mergePlayerIDs(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, ids := range [][]string{a, b} {
		for _, id := range ids {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
