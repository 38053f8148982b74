package canonical

import (
	_ "embed"
	"math"
	"sort"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

//go:embed registry_v1.0.1.json
var defaultRegistryJSON []byte

type document struct {
	Version    string      `json:"version"`
	Dimensions []Dimension `json:"dimensions"`
	Metrics    []Metric    `json:"metrics"`
}

// Registry is the versioned, read-only table of dimensions and metrics.
// It is built once and safe for concurrent use without locking.
type Registry struct {
	version    string
	dimensions map[string]Dimension
	metrics    map[string]Metric
	order      []string
}

// LoadDefault parses the registry bundled with the binary.
func LoadDefault() (*Registry, error) {
	return Parse(defaultRegistryJSON)
}

// MustLoadDefault is LoadDefault for package-level wiring and tests.
func MustLoadDefault() *Registry {
	reg, err := LoadDefault()
	if err != nil {
		panic(err)
	}
	return reg
}

// Parse decodes and validates a registry document.
func Parse(raw []byte) (*Registry, error) {
	var doc document
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "decode canonical registry")
	}
	return New(doc.Version, doc.Dimensions, doc.Metrics)
}

// New validates the given definitions and returns an immutable registry.
func New(version string, dimensions []Dimension, metrics []Metric) (*Registry, error) {
	version = strings.TrimSpace(version)
	if version == "" {
		return nil, errors.Wrap(ErrInvalidRegistry, "version is required")
	}

	reg := &Registry{
		version:    version,
		dimensions: make(map[string]Dimension, len(dimensions)),
		metrics:    make(map[string]Metric, len(metrics)),
		order:      make([]string, 0, len(metrics)),
	}

	for _, dim := range dimensions {
		if dim.Key == "" || dim.CanonicalUnit == "" {
			return nil, errors.Wrap(ErrInvalidRegistry, "dimension key and canonical unit are required")
		}
		if _, dup := reg.dimensions[dim.Key]; dup {
			return nil, errors.Wrapf(ErrInvalidRegistry, "duplicate dimension %q", dim.Key)
		}
		if !dim.Allows(dim.CanonicalUnit) {
			return nil, errors.Wrapf(ErrInvalidRegistry, "dimension %q does not allow its canonical unit %q", dim.Key, dim.CanonicalUnit)
		}
		for _, unit := range dim.AllowedUnits {
			if unit == dim.CanonicalUnit {
				continue
			}
			factor, ok := dim.Conversions[conversionKey(unit, dim.CanonicalUnit)]
			if !ok {
				return nil, errors.Wrapf(ErrInvalidRegistry, "dimension %q has no conversion %s->%s", dim.Key, unit, dim.CanonicalUnit)
			}
			if factor <= 0 {
				return nil, errors.Wrapf(ErrInvalidRegistry, "dimension %q conversion %s->%s must be positive", dim.Key, unit, dim.CanonicalUnit)
			}
		}
		reg.dimensions[dim.Key] = cloneDimension(dim)
	}

	for _, metric := range metrics {
		if metric.Key == "" {
			return nil, errors.Wrap(ErrInvalidRegistry, "metric key is required")
		}
		if _, dup := reg.metrics[metric.Key]; dup {
			return nil, errors.Wrapf(ErrInvalidRegistry, "duplicate metric %q", metric.Key)
		}
		dim, ok := reg.dimensions[metric.Dimension]
		if !ok {
			return nil, errors.Wrapf(ErrInvalidRegistry, "metric %q references dimension %q", metric.Key, metric.Dimension)
		}
		if !dim.Allows(metric.Unit) {
			return nil, errors.Wrapf(ErrInvalidRegistry, "metric %q unit %q is not allowed in dimension %q", metric.Key, metric.Unit, dim.Key)
		}
		if metric.PlausibleMin != nil && metric.PlausibleMax != nil && *metric.PlausibleMin > *metric.PlausibleMax {
			return nil, errors.Wrapf(ErrInvalidRegistry, "metric %q has plausibleMin > plausibleMax", metric.Key)
		}
		if metric.Aggregation == "" {
			metric.Aggregation = AggregationNone
		}
		if metric.Scaling == "" {
			metric.Scaling = ScalingNone
		}
		reg.metrics[metric.Key] = metric
		reg.order = append(reg.order, metric.Key)
	}

	return reg, nil
}

func (r *Registry) Version() string {
	return r.version
}

// Dimension returns the dimension registered under key.
func (r *Registry) Dimension(key string) (Dimension, error) {
	dim, ok := r.dimensions[key]
	if !ok {
		return Dimension{}, errors.Wrapf(ErrUnknownDimension, "dimension %q", key)
	}
	return dim, nil
}

// Metric returns the metric registered under key.
func (r *Registry) Metric(key string) (Metric, error) {
	metric, ok := r.metrics[key]
	if !ok {
		return Metric{}, errors.Wrapf(ErrUnknownCanonicalKey, "metric %q", key)
	}
	return metric, nil
}

func (r *Registry) HasMetric(key string) bool {
	_, ok := r.metrics[key]
	return ok
}

// Metrics lists every metric in registry order.
func (r *Registry) Metrics() []Metric {
	out := make([]Metric, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.metrics[key])
	}
	return out
}

// AverageableKeys returns, sorted, the metrics safe to combine across matches.
func (r *Registry) AverageableKeys() []string {
	out := make([]string, 0, len(r.order))
	for _, key := range r.order {
		if r.metrics[key].Averageable() {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// IsPlausible reports whether v is within the bounds of metric key.
// Keys unknown to the registry only need a finite value.
func (r *Registry) IsPlausible(key string, v float64) bool {
	metric, ok := r.metrics[key]
	if !ok {
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	}
	return metric.Plausible(v)
}

// Convert converts value from fromUnit to the canonical unit of dimensionKey.
func (r *Registry) Convert(value float64, fromUnit, dimensionKey string) (float64, error) {
	dim, err := r.Dimension(dimensionKey)
	if err != nil {
		return 0, err
	}
	return r.convert(dim, value, fromUnit, dim.CanonicalUnit)
}

// ConvertBetween converts value between two units of the same dimension. It
// is used to render canonical values back in a source unit.
func (r *Registry) ConvertBetween(value float64, fromUnit, toUnit, dimensionKey string) (float64, error) {
	dim, err := r.Dimension(dimensionKey)
	if err != nil {
		return 0, err
	}
	return r.convert(dim, value, fromUnit, toUnit)
}

func (r *Registry) convert(dim Dimension, value float64, fromUnit, toUnit string) (float64, error) {
	if fromUnit == toUnit {
		return value, nil
	}
	factor, ok := dim.Conversions[conversionKey(fromUnit, toUnit)]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownConversion, "%s->%s in dimension %q", fromUnit, toUnit, dim.Key)
	}
	return value * factor, nil
}

func cloneDimension(dim Dimension) Dimension {
	out := Dimension{
		Key:           dim.Key,
		CanonicalUnit: dim.CanonicalUnit,
		AllowedUnits:  append([]string(nil), dim.AllowedUnits...),
		Conversions:   make(map[string]float64, len(dim.Conversions)),
	}
	for k, v := range dim.Conversions {
		out.Conversions[k] = v
	}
	return out
}
