package gpsprofile

import (
	"strings"
	"time"
)

// Profile binds a club's GPS vendor export layout to canonical metrics.
type Profile struct {
	ID         string
	ClubID     string
	VendorName string
	Name       string
	Columns    []ColumnMapping
	Formulas   []Formula
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ColumnMapping maps one source column to a canonical key. SourceIndex is
// used when the header is missing from the export.
type ColumnMapping struct {
	SourceHeader string `json:"sourceHeader"`
	SourceIndex  *int   `json:"sourceIndex,omitempty"`
	CanonicalKey string `json:"canonicalKey"`
	Unit         string `json:"unit"`
	Order        int    `json:"order"`
	IsVisible    bool   `json:"isVisible"`
}

// Formula derives CanonicalKey from other canonical keys of the same row.
type Formula struct {
	CanonicalKey string `json:"canonicalKey"`
	Expression   string `json:"expression"`
}

// Snapshot is the frozen copy of a profile stored with each report.
type Snapshot struct {
	ProfileID       string          `json:"profileId"`
	VendorName      string          `json:"vendorName"`
	RegistryVersion string          `json:"registryVersion"`
	Columns         []ColumnMapping `json:"columns"`
	Formulas        []Formula       `json:"formulas,omitempty"`
	TakenAt         time.Time       `json:"takenAt"`
}

// Snapshot freezes the current mapping configuration.
func (p Profile) Snapshot(registryVersion string, at time.Time) Snapshot {
	columns := make([]ColumnMapping, 0, len(p.Columns))
	for _, col := range p.Columns {
		if col.SourceIndex != nil {
			idx := *col.SourceIndex
			col.SourceIndex = &idx
		}
		columns = append(columns, col)
	}

	return Snapshot{
		ProfileID:       p.ID,
		VendorName:      p.VendorName,
		RegistryVersion: registryVersion,
		Columns:         columns,
		Formulas:        append([]Formula(nil), p.Formulas...),
		TakenAt:         at.UTC(),
	}
}

// FormulaSources returns the formulas keyed by produced metric.
func (s Snapshot) FormulaSources() map[string]string {
	out := make(map[string]string, len(s.Formulas))
	for _, f := range s.Formulas {
		out[strings.TrimSpace(f.CanonicalKey)] = f.Expression
	}
	return out
}
