// Package identity attributes GPS rows to roster players by name.
package identity

import (
	"math"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/roster"
)

var ErrAmbiguousMatch = errors.New("ambiguous player match")

type Action string

const (
	ActionConfirm Action = "confirm"
	ActionCreate  Action = "create"
	ActionManual  Action = "manual"
)

type Tier string

const (
	TierExact Tier = "exact"
	TierFuzzy Tier = "fuzzy"
	TierNone  Tier = "none"
)

const (
	DefaultThreshold  = 0.6
	DefaultTieEpsilon = 0.02
)

type Candidate struct {
	PlayerID string  `json:"playerId"`
	FullName string  `json:"fullName"`
	Score    float64 `json:"score"`
}

// Resolution is the outcome of matching one source name.
type Resolution struct {
	PlayerID   *string
	Confidence float64
	Action     Action
	Tier       Tier
	Candidates []Candidate
}

// Err reports ErrAmbiguousMatch when the resolution needs a human decision.
func (r Resolution) Err() error {
	if r.Action == ActionManual {
		return errors.Wrapf(ErrAmbiguousMatch, "%d candidates", len(r.Candidates))
	}
	return nil
}

// Similarity returns the confidence as the 0-100 percentage stored on
// automatic mappings, nil when no player was chosen.
func (r Resolution) Similarity() *int {
	if r.PlayerID == nil {
		return nil
	}
	v := int(math.Round(r.Confidence * 100))
	return &v
}

type Resolver struct {
	threshold  float64
	tieEpsilon float64
}

func NewResolver(threshold, tieEpsilon float64) *Resolver {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	if tieEpsilon < 0 {
		tieEpsilon = DefaultTieEpsilon
	}
	return &Resolver{threshold: threshold, tieEpsilon: tieEpsilon}
}

// Resolve matches sourceName against players: exact on full name or alias,
// then fuzzy on the best-scoring name, otherwise no match.
func (r *Resolver) Resolve(sourceName string, players []roster.Player) Resolution {
	source := Normalize(sourceName)
	if source == "" || len(players) == 0 {
		return noMatch()
	}

	var exact []Candidate
	for _, p := range players {
		for _, name := range p.Names() {
			if Normalize(name) == source {
				exact = append(exact, Candidate{PlayerID: p.ID, FullName: p.FullName, Score: 1})
				break
			}
		}
	}
	if len(exact) == 1 {
		return confirmed(exact[0], TierExact)
	}
	if len(exact) > 1 {
		return manual(exact, 1, TierExact)
	}

	scored := make([]Candidate, 0, len(players))
	for _, p := range players {
		best := 0.0
		for _, name := range p.Names() {
			best = math.Max(best, similarity(source, Normalize(name)))
		}
		if best >= r.threshold {
			scored = append(scored, Candidate{PlayerID: p.ID, FullName: p.FullName, Score: best})
		}
	}
	if len(scored) == 0 {
		return noMatch()
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].PlayerID < scored[j].PlayerID
	})

	top := scored[0]
	tied := []Candidate{top}
	for _, c := range scored[1:] {
		if top.Score-c.Score <= r.tieEpsilon {
			tied = append(tied, c)
		}
	}
	if len(tied) > 1 {
		return manual(tied, top.Score, TierFuzzy)
	}
	return confirmed(top, TierFuzzy)
}

func confirmed(c Candidate, tier Tier) Resolution {
	id := c.PlayerID
	return Resolution{
		PlayerID:   &id,
		Confidence: c.Score,
		Action:     ActionConfirm,
		Tier:       tier,
		Candidates: []Candidate{c},
	}
}

func manual(candidates []Candidate, confidence float64, tier Tier) Resolution {
	return Resolution{
		Confidence: confidence,
		Action:     ActionManual,
		Tier:       tier,
		Candidates: candidates,
	}
}

func noMatch() Resolution {
	return Resolution{Action: ActionCreate, Tier: TierNone}
}
