package canonical

import "math"

// Aggregation describes how a metric may be combined across sessions.
type Aggregation string

const (
	AggregationSum  Aggregation = "sum"
	AggregationAvg  Aggregation = "avg"
	AggregationMin  Aggregation = "min"
	AggregationMax  Aggregation = "max"
	AggregationNone Aggregation = "none"
)

// Scaling marks metrics that accumulate with playing time.
type Scaling string

const (
	ScalingNone    Scaling = "none"
	ScalingPerTime Scaling = "per_time"
)

// IdentityDimension holds textual columns such as athlete name or position.
const IdentityDimension = "identity"

// Well-known keys the import pipeline relies on.
const (
	KeyAthleteName = "athlete_name"
	KeyPosition    = "position"
	KeyDuration    = "duration"
)

// Dimension is a class of physical quantity with one canonical unit.
type Dimension struct {
	Key           string             `json:"key"`
	CanonicalUnit string             `json:"canonicalUnit"`
	AllowedUnits  []string           `json:"allowedUnits"`
	Conversions   map[string]float64 `json:"conversions"`
}

// Allows reports whether unit is a declared source unit of the dimension.
func (d Dimension) Allows(unit string) bool {
	for _, allowed := range d.AllowedUnits {
		if allowed == unit {
			return true
		}
	}
	return false
}

// Metric is an immutable registry entry.
type Metric struct {
	Key          string            `json:"key"`
	Labels       map[string]string `json:"labels"`
	Unit         string            `json:"unit"`
	Dimension    string            `json:"dimension"`
	Aggregation  Aggregation       `json:"aggregation"`
	Scaling      Scaling           `json:"scaling"`
	PlausibleMin *float64          `json:"plausibleMin,omitempty"`
	PlausibleMax *float64          `json:"plausibleMax,omitempty"`
	IsDerived    bool              `json:"isDerived,omitempty"`
}

// IsIdentity reports whether the metric carries text instead of numbers.
func (m Metric) IsIdentity() bool {
	return m.Dimension == IdentityDimension
}

// Averageable reports whether values of the metric can be summed across
// matches and divided by playing time.
func (m Metric) Averageable() bool {
	return !m.IsIdentity() && m.Aggregation == AggregationSum && m.Scaling == ScalingPerTime
}

// Plausible reports whether v lies inside the metric's sanity bounds.
// Non-finite values are never plausible.
func (m Metric) Plausible(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	if m.PlausibleMin != nil && v < *m.PlausibleMin {
		return false
	}
	if m.PlausibleMax != nil && v > *m.PlausibleMax {
		return false
	}
	return true
}

// Label returns the label for lang, falling back to English and then the key.
func (m Metric) Label(lang string) string {
	if v, ok := m.Labels[lang]; ok && v != "" {
		return v
	}
	if v, ok := m.Labels["en"]; ok && v != "" {
		return v
	}
	return m.Key
}

func conversionKey(from, to string) string {
	return from + "->" + to
}
