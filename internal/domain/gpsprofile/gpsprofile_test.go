package gpsprofile

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/riskibarqy/gps-gamemodel/internal/domain/canonical"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/formula"
)

func intPtr(v int) *int {
	return &v
}

func sampleProfile() Profile {
	return Profile{
		ID:         "profile-1",
		ClubID:     "club-1",
		VendorName: "Catapult",
		Columns: []ColumnMapping{
			{SourceHeader: "Player Name", CanonicalKey: canonical.KeyAthleteName, Order: 0, IsVisible: true},
			{SourceHeader: "Total Distance (km)", CanonicalKey: "total_distance", Unit: "km", Order: 1, IsVisible: true},
			{SourceHeader: "Duration", CanonicalKey: canonical.KeyDuration, Unit: "hh:mm:ss", Order: 2},
			{SourceHeader: "Top Speed", SourceIndex: intPtr(3), CanonicalKey: "max_speed", Unit: "km/h", Order: 3, IsVisible: true},
			{SourceHeader: "HSR %", CanonicalKey: "hsr_percentage", Unit: "%", Order: 4, IsVisible: true},
		},
		Formulas: []Formula{
			{CanonicalKey: "distance_per_min", Expression: "total_distance / (duration / 60)"},
		},
	}
}

func TestValidate_AcceptsWellFormedProfile(t *testing.T) {
	t.Parallel()

	if err := sampleProfile().Validate(canonical.MustLoadDefault()); err != nil {
		t.Fatalf("validate profile: %v", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	t.Parallel()

	reg := canonical.MustLoadDefault()
	cases := []struct {
		name   string
		mutate func(p *Profile)
		want   error
	}{
		{
			name:   "unknown canonical key",
			mutate: func(p *Profile) { p.Columns[1].CanonicalKey = "distance_covered" },
			want:   canonical.ErrUnknownCanonicalKey,
		},
		{
			name:   "unit outside dimension",
			mutate: func(p *Profile) { p.Columns[1].Unit = "km/h" },
			want:   canonical.ErrUnknownConversion,
		},
		{
			name:   "missing unit fails closed",
			mutate: func(p *Profile) { p.Columns[1].Unit = "" },
			want:   canonical.ErrUnknownConversion,
		},
		{
			name:   "formula references unknown key",
			mutate: func(p *Profile) { p.Formulas[0].Expression = "meters / 2" },
			want:   canonical.ErrUnknownCanonicalKey,
		},
		{
			name:   "formula target unknown",
			mutate: func(p *Profile) { p.Formulas[0].CanonicalKey = "custom_index" },
			want:   canonical.ErrUnknownCanonicalKey,
		},
		{
			name:   "formula syntax",
			mutate: func(p *Profile) { p.Formulas[0].Expression = "total_distance //" },
			want:   formula.ErrSyntax,
		},
		{
			name: "formula cycle",
			mutate: func(p *Profile) {
				p.Formulas = []Formula{
					{CanonicalKey: "distance_per_min", Expression: "work_ratio * 2"},
					{CanonicalKey: "work_ratio", Expression: "distance_per_min / 2"},
				}
			},
			want: ErrInvalidProfile,
		},
		{
			name:   "duplicate mapping",
			mutate: func(p *Profile) { p.Columns[3].CanonicalKey = "total_distance"; p.Columns[3].Unit = "m" },
			want:   ErrInvalidProfile,
		},
		{
			name:   "athlete column missing",
			mutate: func(p *Profile) { p.Columns = p.Columns[1:] },
			want:   ErrInvalidProfile,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p := sampleProfile()
			tc.mutate(&p)
			if err := p.Validate(reg); !errors.Is(err, tc.want) {
				t.Fatalf("unexpected error: got=%v want=%v", err, tc.want)
			}
		})
	}
}

func TestSnapshot_IsIndependentOfLaterEdits(t *testing.T) {
	t.Parallel()

	p := sampleProfile()
	snap := p.Snapshot("1.0.1", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	p.Columns[1].Unit = "m"
	*p.Columns[3].SourceIndex = 9
	p.Formulas[0].Expression = "1"

	if snap.Columns[1].Unit != "km" {
		t.Fatalf("snapshot unit changed: got=%s want=km", snap.Columns[1].Unit)
	}
	if *snap.Columns[3].SourceIndex != 3 {
		t.Fatalf("snapshot source index changed: got=%d want=3", *snap.Columns[3].SourceIndex)
	}
	if snap.Formulas[0].Expression != "total_distance / (duration / 60)" {
		t.Fatalf("snapshot formula changed: %s", snap.Formulas[0].Expression)
	}
	if snap.RegistryVersion != "1.0.1" {
		t.Fatalf("unexpected registry version: %s", snap.RegistryVersion)
	}
}

func TestPlan_MapTable(t *testing.T) {
	t.Parallel()

	reg := canonical.MustLoadDefault()
	plan, err := NewPlan(reg, sampleProfile().Snapshot(reg.Version(), time.Now()))
	if err != nil {
		t.Fatalf("new plan: %v", err)
	}

	table := RawTable{
		Headers: []string{"player name", "Total Distance (km)", "Duration", "Peak velocity", "HSR %", "Vendor Extra"},
		Rows: [][]any{
			{"Ivan Petrov", "9,5", "01:30:00", 32.4, "7", "ignored"},
			{"Total", 95.0, "15:00:00", 34.0, "8", nil},
			{nil, "", "-", nil, "n/a", ""},
			{"Oleg Sidorov", "abc", nil, nil, nil, nil},
			{"Ana Núñez", 6.0, "45:00", 30.0, "12%", nil},
			{"Nikita Kim", 4.0, nil, nil, nil, nil},
		},
	}

	result := plan.MapTable(table)
	if len(result.Rows) != 3 {
		t.Fatalf("unexpected mapped rows: got=%d want=3", len(result.Rows))
	}
	if len(result.Skipped) != 3 {
		t.Fatalf("unexpected skipped rows: got=%d want=3 (%+v)", len(result.Skipped), result.Skipped)
	}
	wantReasons := map[int]SkipReason{1: SkipSummary, 2: SkipBlank, 3: SkipNoMetrics}
	for _, skipped := range result.Skipped {
		if wantReasons[skipped.RowIndex] != skipped.Reason {
			t.Fatalf("unexpected skip reason for row %d: got=%s want=%s", skipped.RowIndex, skipped.Reason, wantReasons[skipped.RowIndex])
		}
	}

	ivan := result.Rows[0]
	if ivan.AthleteName != "Ivan Petrov" || ivan.RowIndex != 0 {
		t.Fatalf("unexpected first row identity: %+v", ivan)
	}
	assertClose(t, "total_distance", ivan.Values["total_distance"], 9500)
	assertClose(t, "duration", ivan.Values[canonical.KeyDuration], 5400)
	assertClose(t, "max_speed", ivan.Values["max_speed"], 9)
	assertClose(t, "hsr_percentage", ivan.Values["hsr_percentage"], 0.07)
	assertClose(t, "distance_per_min", ivan.Values["distance_per_min"], 9500.0/90)
	if _, ok := ivan.Values["Vendor Extra"]; ok {
		t.Fatalf("unmapped columns must be dropped")
	}

	ana := result.Rows[1]
	assertClose(t, "ana duration", ana.Values[canonical.KeyDuration], 2700)
	assertClose(t, "ana hsr", ana.Values["hsr_percentage"], 0.12)

	nikita := result.Rows[2]
	if len(nikita.Undefined) != 1 || nikita.Undefined[0] != "distance_per_min" {
		t.Fatalf("expected distance_per_min undefined, got %v", nikita.Undefined)
	}
	if _, ok := nikita.Values["distance_per_min"]; ok {
		t.Fatalf("undefined derived metric must not have a value")
	}
}

func TestPlan_MapRowWarnsOnImplausibleValue(t *testing.T) {
	t.Parallel()

	reg := canonical.MustLoadDefault()
	plan, err := NewPlan(reg, sampleProfile().Snapshot(reg.Version(), time.Now()))
	if err != nil {
		t.Fatalf("new plan: %v", err)
	}

	row := plan.MapRow(
		[]string{"Player Name", "Total Distance (km)", "Duration", "Top Speed"},
		4,
		[]any{"Max Power", 8.0, "01:00:00", 120.0},
	)
	if row.RowIndex != 4 {
		t.Fatalf("unexpected row index: %d", row.RowIndex)
	}
	if len(row.Warnings) == 0 {
		t.Fatalf("expected plausibility warning for 120 km/h")
	}
	if _, ok := row.Values["max_speed"]; !ok {
		t.Fatalf("implausible values are kept at import and filtered by the aggregator")
	}
}

func TestParseNumber(t *testing.T) {
	t.Parallel()

	cases := map[string]float64{
		"12,5":      12.5,
		"1.234,5":   1234.5,
		"1,234.5":   1234.5,
		"1 234,5":   1234.5,
		" 42 ":      42,
		"1,234,567": 1234567,
	}
	for in, want := range cases {
		got, err := parseNumber(in, false)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		assertClose(t, in, got, want)
	}

	got, err := parseNumber("7 %", true)
	if err != nil {
		t.Fatalf("parse percent cell: %v", err)
	}
	assertClose(t, "7 %", got, 7)
}

func TestParseCell_Rejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cell any
		unit string
	}{
		{name: "infinity", cell: "inf", unit: "m"},
		{name: "spelled infinity", cell: "Infinity", unit: "m"},
		{name: "negative infinity", cell: "-inf", unit: "km"},
		{name: "nan", cell: "NaN", unit: "m"},
		{name: "nan inside clock", cell: "nan:30", unit: "mm:ss"},
		{name: "inf inside clock", cell: "inf:00:00", unit: "hh:mm:ss"},
		{name: "non-finite float cell", cell: math.Inf(1), unit: "m"},
		{name: "nan float cell", cell: math.NaN(), unit: "m"},
		{name: "percent sign on ratio column", cell: "7%", unit: "ratio"},
		{name: "percent sign on distance column", cell: "12%", unit: "m"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if v, err := parseCell(tc.cell, tc.unit); err == nil {
				t.Fatalf("expected error for %v in %s, got %v", tc.cell, tc.unit, v)
			}
		})
	}
}

func TestPlan_MapRowWarnsOnUnusableCells(t *testing.T) {
	t.Parallel()

	reg := canonical.MustLoadDefault()
	profile := sampleProfile()
	profile.Columns[4].Unit = "ratio"
	plan, err := NewPlan(reg, profile.Snapshot(reg.Version(), time.Now()))
	if err != nil {
		t.Fatalf("new plan: %v", err)
	}

	row := plan.MapRow(
		[]string{"Player Name", "Total Distance (km)", "Duration", "Top Speed", "HSR %"},
		0,
		[]any{"Ivan Petrov", "inf", "01:30:00", "nan", "7%"},
	)
	for _, key := range []string{"total_distance", "max_speed", "hsr_percentage"} {
		if v, ok := row.Values[key]; ok {
			t.Fatalf("expected %s to be absent, got %v", key, v)
		}
	}
	if len(row.Warnings) < 3 {
		t.Fatalf("expected a warning per unusable cell, got %v", row.Warnings)
	}
	assertClose(t, "duration", row.Values[canonical.KeyDuration], 5400)
}

func assertClose(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("unexpected %s: got=%v want=%v", name, got, want)
	}
}
