package gpsprofile

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/canonical"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/formula"
)

var ErrInvalidProfile = errors.New("invalid gps profile")

// Validate checks the profile against the registry. It is run when a
// profile is saved so that a bad profile never reaches an import.
func (p Profile) Validate(reg *canonical.Registry) error {
	if strings.TrimSpace(p.ClubID) == "" {
		return errors.Wrap(ErrInvalidProfile, "club id is required")
	}
	if strings.TrimSpace(p.VendorName) == "" {
		return errors.Wrap(ErrInvalidProfile, "vendor name is required")
	}
	if len(p.Columns) == 0 {
		return errors.Wrap(ErrInvalidProfile, "at least one column mapping is required")
	}

	produced := make(map[string]struct{}, len(p.Columns)+len(p.Formulas))
	hasAthlete := false
	for i, col := range p.Columns {
		if err := validateColumn(reg, col); err != nil {
			return errors.Wrapf(err, "column %d", i)
		}
		if _, dup := produced[col.CanonicalKey]; dup {
			return errors.Wrapf(ErrInvalidProfile, "canonical key %q is mapped more than once", col.CanonicalKey)
		}
		produced[col.CanonicalKey] = struct{}{}
		if col.CanonicalKey == canonical.KeyAthleteName {
			hasAthlete = true
		}
	}
	if !hasAthlete {
		return errors.Wrapf(ErrInvalidProfile, "a column mapped to %q is required", canonical.KeyAthleteName)
	}

	sources := make(map[string]string, len(p.Formulas))
	for _, f := range p.Formulas {
		key := strings.TrimSpace(f.CanonicalKey)
		metric, err := reg.Metric(key)
		if err != nil {
			return errors.Wrap(err, "formula target")
		}
		if metric.IsIdentity() {
			return errors.Wrapf(ErrInvalidProfile, "formula target %q is not numeric", key)
		}
		if _, dup := produced[key]; dup {
			return errors.Wrapf(ErrInvalidProfile, "canonical key %q is produced by both a column and a formula", key)
		}
		produced[key] = struct{}{}
		sources[key] = f.Expression
	}

	set, err := formula.NewSet(sources)
	if err != nil {
		return errors.Mark(err, ErrInvalidProfile)
	}
	for _, key := range set.Keys() {
		expr, _ := set.Expression(key)
		for _, ref := range expr.References() {
			metric, err := reg.Metric(ref)
			if err != nil {
				return errors.Wrapf(err, "formula %q", key)
			}
			if metric.IsIdentity() {
				return errors.Wrapf(ErrInvalidProfile, "formula %q references non-numeric key %q", key, ref)
			}
		}
	}

	return nil
}

func validateColumn(reg *canonical.Registry, col ColumnMapping) error {
	if strings.TrimSpace(col.SourceHeader) == "" && col.SourceIndex == nil {
		return errors.Wrap(ErrInvalidProfile, "source header or source index is required")
	}
	if col.SourceIndex != nil && *col.SourceIndex < 0 {
		return errors.Wrap(ErrInvalidProfile, "source index must be >= 0")
	}

	metric, err := reg.Metric(col.CanonicalKey)
	if err != nil {
		return err
	}
	if metric.IsIdentity() {
		return nil
	}
	if strings.TrimSpace(col.Unit) == "" {
		return errors.Wrapf(canonical.ErrUnknownConversion, "unit is required for %q", col.CanonicalKey)
	}

	dim, err := reg.Dimension(metric.Dimension)
	if err != nil {
		return err
	}
	if !dim.Allows(col.Unit) {
		return errors.Wrapf(canonical.ErrUnknownConversion, "unit %q is not allowed for %q", col.Unit, col.CanonicalKey)
	}
	if _, err := reg.Convert(1, col.Unit, metric.Dimension); err != nil {
		return err
	}
	return nil
}
