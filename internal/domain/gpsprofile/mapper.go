package gpsprofile

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/canonical"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/formula"
)

// RawTable is a parsed vendor export: ordered headers and rows of cells.
// Cells hold float64, string or nil as produced by the spreadsheet parser.
type RawTable struct {
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rows"`
}

// CanonicalRow is one source row expressed in canonical units.
type CanonicalRow struct {
	RowIndex    int                `json:"rowIndex"`
	AthleteName string             `json:"athleteName"`
	Values      map[string]float64 `json:"values"`
	Text        map[string]string  `json:"text,omitempty"`
	Undefined   []string           `json:"undefined,omitempty"`
	Warnings    []string           `json:"warnings,omitempty"`
}

// SkipReason explains why a source row produced no canonical row.
type SkipReason string

const (
	SkipBlank         SkipReason = "blank"
	SkipSummary       SkipReason = "summary"
	SkipNoAthleteName SkipReason = "no_athlete_name"
	SkipNoMetrics     SkipReason = "no_metrics"
)

type SkippedRow struct {
	RowIndex int        `json:"rowIndex"`
	Reason   SkipReason `json:"reason"`
}

// TableResult is the outcome of mapping a whole export.
type TableResult struct {
	Rows     []CanonicalRow
	Skipped  []SkippedRow
	Warnings []string
}

// Plan is a snapshot prepared for mapping: formulas compiled and metrics
// resolved once per report.
type Plan struct {
	registry *canonical.Registry
	columns  []plannedColumn
	formulas *formula.Set
}

type plannedColumn struct {
	mapping ColumnMapping
	metric  canonical.Metric
}

// NewPlan prepares snapshot for mapping rows.
func NewPlan(reg *canonical.Registry, snapshot Snapshot) (*Plan, error) {
	columns := make([]plannedColumn, 0, len(snapshot.Columns))
	for _, col := range snapshot.Columns {
		metric, err := reg.Metric(col.CanonicalKey)
		if err != nil {
			return nil, err
		}
		columns = append(columns, plannedColumn{mapping: col, metric: metric})
	}

	set, err := formula.NewSet(snapshot.FormulaSources())
	if err != nil {
		return nil, errors.Mark(err, ErrInvalidProfile)
	}

	return &Plan{registry: reg, columns: columns, formulas: set}, nil
}

// MapTable maps every row of table, skipping blank, summary and empty rows.
func (p *Plan) MapTable(table RawTable) TableResult {
	indexes, warnings := p.bind(table.Headers)
	result := TableResult{Warnings: warnings}

	for rowIndex, cells := range table.Rows {
		if isBlankRow(cells) {
			result.Skipped = append(result.Skipped, SkippedRow{RowIndex: rowIndex, Reason: SkipBlank})
			continue
		}

		row, numeric := p.mapRow(indexes, rowIndex, cells)
		switch {
		case row.AthleteName == "":
			result.Skipped = append(result.Skipped, SkippedRow{RowIndex: rowIndex, Reason: SkipNoAthleteName})
			continue
		case isSummaryName(row.AthleteName):
			result.Skipped = append(result.Skipped, SkippedRow{RowIndex: rowIndex, Reason: SkipSummary})
			continue
		case numeric == 0:
			result.Skipped = append(result.Skipped, SkippedRow{RowIndex: rowIndex, Reason: SkipNoMetrics})
			continue
		}

		p.applyFormulas(&row)
		p.checkPlausibility(&row)
		result.Rows = append(result.Rows, row)
	}

	return result
}

// MapRow maps a single source row without sanitizing it.
func (p *Plan) MapRow(headers []string, rowIndex int, cells []any) CanonicalRow {
	indexes, _ := p.bind(headers)
	row, _ := p.mapRow(indexes, rowIndex, cells)
	p.applyFormulas(&row)
	p.checkPlausibility(&row)
	return row
}

// bind resolves each column mapping to a cell position: exact header,
// then a whitespace and case insensitive header, then SourceIndex.
func (p *Plan) bind(headers []string) ([]int, []string) {
	exact := make(map[string]int, len(headers))
	loose := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, ok := exact[h]; !ok {
			exact[h] = i
		}
		key := normalizeHeader(h)
		if _, ok := loose[key]; !ok {
			loose[key] = i
		}
	}

	indexes := make([]int, len(p.columns))
	var warnings []string
	for i, col := range p.columns {
		indexes[i] = -1
		header := col.mapping.SourceHeader
		if header != "" {
			if idx, ok := exact[header]; ok {
				indexes[i] = idx
				continue
			}
			if idx, ok := loose[normalizeHeader(header)]; ok {
				indexes[i] = idx
				continue
			}
		}
		if col.mapping.SourceIndex != nil && *col.mapping.SourceIndex < len(headers) {
			indexes[i] = *col.mapping.SourceIndex
			continue
		}
		warnings = append(warnings, fmt.Sprintf("column %q for %s not found in export", header, col.mapping.CanonicalKey))
	}
	return indexes, warnings
}

func (p *Plan) mapRow(indexes []int, rowIndex int, cells []any) (CanonicalRow, int) {
	row := CanonicalRow{
		RowIndex: rowIndex,
		Values:   make(map[string]float64, len(p.columns)),
	}

	numeric := 0
	for i, col := range p.columns {
		idx := indexes[i]
		if idx < 0 || idx >= len(cells) || isEmptyCell(cells[idx]) {
			continue
		}
		cell := cells[idx]
		key := col.metric.Key

		if col.metric.IsIdentity() {
			if row.Text == nil {
				row.Text = make(map[string]string)
			}
			row.Text[key] = strings.Join(strings.Fields(cellString(cell)), " ")
			continue
		}

		raw, err := parseCell(cell, col.mapping.Unit)
		if err != nil {
			row.Warnings = append(row.Warnings, fmt.Sprintf("%s: %v", key, err))
			continue
		}
		value, err := p.registry.Convert(raw, col.mapping.Unit, col.metric.Dimension)
		if err != nil {
			row.Warnings = append(row.Warnings, fmt.Sprintf("%s: %v", key, err))
			continue
		}
		row.Values[key] = value
		numeric++
	}

	row.AthleteName = row.Text[canonical.KeyAthleteName]
	return row, numeric
}

func (p *Plan) applyFormulas(row *CanonicalRow) {
	failed := p.formulas.Apply(row.Values)
	if len(failed) == 0 {
		return
	}
	keys := make([]string, 0, len(failed))
	for key := range failed {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		row.Undefined = append(row.Undefined, key)
		row.Warnings = append(row.Warnings, fmt.Sprintf("%s: %v", key, failed[key]))
	}
}

func (p *Plan) checkPlausibility(row *CanonicalRow) {
	keys := make([]string, 0, len(row.Values))
	for key := range row.Values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if !p.registry.IsPlausible(key, row.Values[key]) {
			row.Warnings = append(row.Warnings, fmt.Sprintf("%s: value %g outside plausible range", key, row.Values[key]))
		}
	}
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

func cellString(cell any) string {
	switch v := cell.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func parseCell(cell any, unit string) (float64, error) {
	var v float64
	switch c := cell.(type) {
	case float64:
		v = c
	case float32:
		v = float64(c)
	case int:
		v = float64(c)
	case int64:
		v = float64(c)
	case string:
		if isClockUnit(unit) && strings.Contains(c, ":") {
			return parseClock(c, unit)
		}
		return parseNumber(c, unit == percentUnit)
	default:
		return 0, fmt.Errorf("unsupported cell type %T", cell)
	}
	if err := requireFinite(v); err != nil {
		return 0, err
	}
	return v, nil
}

const percentUnit = "%"

// parseNumber accepts decimal commas and thousands separators. A trailing
// percent sign is accepted only for columns declared in percent.
func parseNumber(s string, allowPercent bool) (float64, error) {
	clean := strings.TrimSpace(s)
	if allowPercent {
		clean = strings.TrimSpace(strings.TrimSuffix(clean, "%"))
	}
	clean = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' || r == '\u202f' || r == '\'' {
			return -1
		}
		return r
	}, clean)

	lastComma := strings.LastIndex(clean, ",")
	lastDot := strings.LastIndex(clean, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0 && lastComma > lastDot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case lastComma >= 0 && lastDot >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	case lastComma >= 0:
		if strings.Count(clean, ",") > 1 {
			clean = strings.ReplaceAll(clean, ",", "")
		} else {
			clean = strings.Replace(clean, ",", ".", 1)
		}
	}

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric value %q", s)
	}
	if err := requireFinite(v); err != nil {
		return 0, fmt.Errorf("non-numeric value %q", s)
	}
	return v, nil
}

// requireFinite rejects NaN and infinities, which ParseFloat accepts as
// "nan" and "inf".
func requireFinite(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("non-finite value %v", v)
	}
	return nil
}

func isClockUnit(unit string) bool {
	switch unit {
	case "hh:mm:ss", "hh:mm", "mm:ss":
		return true
	default:
		return false
	}
}

// parseClock converts a clock string to seconds. Two-part values follow the
// declared unit; three parts are always h:m:s.
func parseClock(s, unit string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	nums := make([]float64, len(parts))
	for i, part := range parts {
		v, err := parseNumber(part, false)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid time value %q", s)
		}
		nums[i] = v
	}

	var seconds float64
	switch len(nums) {
	case 3:
		seconds = nums[0]*3600 + nums[1]*60 + nums[2]
	case 2:
		if unit == "hh:mm" {
			seconds = nums[0]*3600 + nums[1]*60
		} else {
			seconds = nums[0]*60 + nums[1]
		}
	default:
		return 0, fmt.Errorf("invalid time value %q", s)
	}
	if requireFinite(seconds) != nil {
		return 0, fmt.Errorf("invalid time value %q", s)
	}
	return seconds, nil
}
