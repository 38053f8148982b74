package gamemodel

import (
	"math"
	"sort"
	"strings"

	"github.com/riskibarqy/gps-gamemodel/internal/domain/canonical"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/matchstats"
)

type SkipReason string

const (
	SkipUnprocessed SkipReason = "unprocessed"
	SkipCorrupt     SkipReason = "corrupt"
	SkipNoMinutes   SkipReason = "no_minutes"
	SkipImplausible SkipReason = "implausible"
	SkipOutOfWindow SkipReason = "out_of_window"
)

// Skip records a match left out of a computation.
type Skip struct {
	MatchID string
	Reason  SkipReason
	Detail  string
}

// Computation is the pure result of aggregating a player's matches.
type Computation struct {
	MatchesCount int
	TotalMinutes float64
	Metrics      map[string]float64
	MatchIDs     []string
}

// Empty reports whether no match qualified.
func (c Computation) Empty() bool {
	return c.MatchesCount == 0
}

// Aggregator selects qualifying matches and normalizes their metrics per
// minute of play. It holds no state beyond configuration.
type Aggregator struct {
	registry        *canonical.Registry
	window          int
	minutesFallback bool
	averageable     []string
}

// NewAggregator builds an aggregator. minutesFallback lets the GPS duration
// stand in for minutes when match stats have none recorded.
func NewAggregator(reg *canonical.Registry, window int, minutesFallback bool) *Aggregator {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Aggregator{
		registry:        reg,
		window:          window,
		minutesFallback: minutesFallback,
		averageable:     reg.AverageableKeys(),
	}
}

func (a *Aggregator) Window() int {
	return a.window
}

type selectedMatch struct {
	match   matchstats.PlayerMatch
	minutes float64
}

// Aggregate selects the window of qualifying matches and computes the model.
func (a *Aggregator) Aggregate(matches []matchstats.PlayerMatch) (Computation, []Skip) {
	selected, skips := a.selectMatches(matches)
	return a.compute(selected), skips
}

func (a *Aggregator) selectMatches(matches []matchstats.PlayerMatch) ([]selectedMatch, []Skip) {
	var skips []Skip
	qualifying := make([]selectedMatch, 0, len(matches))
	for _, m := range matches {
		if m.Corrupt != "" {
			skips = append(skips, Skip{MatchID: m.MatchID, Reason: SkipCorrupt, Detail: m.Corrupt})
			continue
		}
		if !m.Processed {
			skips = append(skips, Skip{MatchID: m.MatchID, Reason: SkipUnprocessed})
			continue
		}
		minutes, ok := m.Minutes(a.minutesFallback)
		if !ok || !(minutes > 0) || math.IsInf(minutes, 0) {
			skips = append(skips, Skip{MatchID: m.MatchID, Reason: SkipNoMinutes})
			continue
		}
		if bad := a.implausibleKeys(m.Metrics); len(bad) > 0 {
			skips = append(skips, Skip{MatchID: m.MatchID, Reason: SkipImplausible, Detail: strings.Join(bad, ",")})
			continue
		}
		qualifying = append(qualifying, selectedMatch{match: m, minutes: minutes})
	}

	sort.SliceStable(qualifying, func(i, j int) bool {
		di, dj := qualifying[i].match.Date, qualifying[j].match.Date
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return qualifying[i].match.MatchID < qualifying[j].match.MatchID
	})

	if len(qualifying) > a.window {
		for _, m := range qualifying[a.window:] {
			skips = append(skips, Skip{MatchID: m.match.MatchID, Reason: SkipOutOfWindow})
		}
		qualifying = qualifying[:a.window]
	}
	return qualifying, skips
}

func (a *Aggregator) implausibleKeys(metrics map[string]float64) []string {
	var bad []string
	for key, v := range metrics {
		if !a.registry.IsPlausible(key, v) {
			bad = append(bad, key)
		}
	}
	sort.Strings(bad)
	return bad
}

// compute sums each averageable metric and the minutes of the matches that
// carry it, storing sum(metric) / sum(minutes). Summation follows the
// selection order so repeated runs are bit-identical.
func (a *Aggregator) compute(selected []selectedMatch) Computation {
	out := Computation{
		MatchesCount: len(selected),
		Metrics:      make(map[string]float64),
		MatchIDs:     make([]string, 0, len(selected)),
	}
	for _, s := range selected {
		out.TotalMinutes += s.minutes
		out.MatchIDs = append(out.MatchIDs, s.match.MatchID)
	}

	for _, key := range a.averageable {
		var sum, minutes float64
		found := false
		for _, s := range selected {
			v, ok := s.match.Metrics[key]
			if !ok {
				continue
			}
			sum += v
			minutes += s.minutes
			found = true
		}
		if found && minutes > 0 {
			out.Metrics[key] = sum / minutes
		}
	}
	return out
}
