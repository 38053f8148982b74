package canonical

import (
	"errors"
	"math"
	"testing"
)

func TestConvert_PercentToRatio(t *testing.T) {
	t.Parallel()

	reg := MustLoadDefault()

	got, err := reg.Convert(7, "%", "ratio")
	if err != nil {
		t.Fatalf("convert percent: %v", err)
	}
	if math.Abs(got-0.07) > 1e-12 {
		t.Fatalf("unexpected ratio: got=%v want=0.07", got)
	}

	got, err = reg.Convert(0.42, "ratio", "ratio")
	if err != nil {
		t.Fatalf("convert identity: %v", err)
	}
	if got != 0.42 {
		t.Fatalf("identity conversion changed value: got=%v want=0.42", got)
	}
}

func TestConvert_KnownFactors(t *testing.T) {
	t.Parallel()

	reg := MustLoadDefault()
	cases := []struct {
		value float64
		unit  string
		dim   string
		want  float64
	}{
		{value: 6.5, unit: "km", dim: "distance", want: 6500},
		{value: 36, unit: "km/h", dim: "speed", want: 10},
		{value: 90, unit: "min", dim: "time", want: 5400},
		{value: 1, unit: "g", dim: "acceleration", want: 9.80665},
		{value: 100, unit: "yd", dim: "distance", want: 91.44},
	}

	for _, tc := range cases {
		got, err := reg.Convert(tc.value, tc.unit, tc.dim)
		if err != nil {
			t.Fatalf("convert %v %s: %v", tc.value, tc.unit, err)
		}
		if math.Abs(got-tc.want) > 1e-6 {
			t.Fatalf("unexpected conversion for %v %s: got=%v want=%v", tc.value, tc.unit, got, tc.want)
		}
	}
}

func TestConvert_RoundTrip(t *testing.T) {
	t.Parallel()

	reg := MustLoadDefault()
	for _, dimKey := range []string{"distance", "speed", "time", "acceleration", "ratio"} {
		dim, err := reg.Dimension(dimKey)
		if err != nil {
			t.Fatalf("dimension %s: %v", dimKey, err)
		}
		for _, unit := range dim.AllowedUnits {
			if _, ok := dim.Conversions[dim.CanonicalUnit+"->"+unit]; !ok {
				continue
			}
			const x = 123.456
			canonicalValue, err := reg.Convert(x, unit, dimKey)
			if err != nil {
				t.Fatalf("convert %s->%s: %v", unit, dim.CanonicalUnit, err)
			}
			back, err := reg.ConvertBetween(canonicalValue, dim.CanonicalUnit, unit, dimKey)
			if err != nil {
				t.Fatalf("convert back %s->%s: %v", dim.CanonicalUnit, unit, err)
			}
			if math.Abs(back-x) > 1e-6 {
				t.Fatalf("round trip drift for %s/%s: got=%v want=%v", dimKey, unit, back, x)
			}
		}
	}
}

func TestConvert_UnknownDimensionAndUnit(t *testing.T) {
	t.Parallel()

	reg := MustLoadDefault()

	if _, err := reg.Convert(1, "m", "volume"); !errors.Is(err, ErrUnknownDimension) {
		t.Fatalf("expected ErrUnknownDimension, got %v", err)
	}
	if _, err := reg.Convert(1, "furlong", "distance"); !errors.Is(err, ErrUnknownConversion) {
		t.Fatalf("expected ErrUnknownConversion, got %v", err)
	}
}

func TestNew_RejectsUnitWithoutCanonicalPath(t *testing.T) {
	t.Parallel()

	_, err := New("test", []Dimension{{
		Key:           "distance",
		CanonicalUnit: "m",
		AllowedUnits:  []string{"m", "km"},
		Conversions:   map[string]float64{},
	}}, nil)
	if !errors.Is(err, ErrInvalidRegistry) {
		t.Fatalf("expected ErrInvalidRegistry, got %v", err)
	}
}

func TestAverageableKeys_ExcludeIdentityAndPlayingTime(t *testing.T) {
	t.Parallel()

	reg := MustLoadDefault()
	keys := reg.AverageableKeys()
	set := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}

	for _, excluded := range []string{KeyAthleteName, KeyPosition, KeyDuration, "max_speed", "avg_heart_rate"} {
		if _, ok := set[excluded]; ok {
			t.Fatalf("did not expect %s to be averageable", excluded)
		}
	}
	for _, included := range []string{"total_distance", "sprints_count", "distance_zone3", "time_in_hr_zone2"} {
		if _, ok := set[included]; !ok {
			t.Fatalf("expected %s to be averageable", included)
		}
	}
}

func TestIsPlausible(t *testing.T) {
	t.Parallel()

	reg := MustLoadDefault()
	if !reg.IsPlausible("max_speed", 9.4) {
		t.Fatalf("expected 9.4 m/s to be plausible")
	}
	if reg.IsPlausible("max_speed", 40) {
		t.Fatalf("expected 40 m/s to be implausible")
	}
	if !reg.IsPlausible("not_in_registry", -1) {
		t.Fatalf("unknown keys should be treated as plausible")
	}
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if reg.IsPlausible("time_in_speed_zone1", v) {
			t.Fatalf("expected %v to be implausible for a bounded metric", v)
		}
		if reg.IsPlausible("not_in_registry", v) {
			t.Fatalf("expected %v to be implausible for an unknown key", v)
		}
	}
}
