package identity

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Tokens at or above this similarity count as the same name part, which
// keeps single-letter typos from sinking the token scores.
const tokenMatchThreshold = 0.8

// Similarity scores two names in [0, 1]. Equal normalized names score 1;
// different names never score more than 0.99.
func Similarity(a, b string) float64 {
	return similarity(Normalize(a), Normalize(b))
}

func similarity(na, nb string) float64 {
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	ta, tb := tokens(na), tokens(nb)
	set := tokenJaccard(ta, tb)
	order := tokenLCS(ta, tb)
	chars := charScore(strings.ReplaceAll(na, " ", ""), strings.ReplaceAll(nb, " ", ""))

	lenDiff := math.Abs(float64(len(ta) - len(tb)))
	lenPenalty := 1 - math.Min(1, lenDiff/math.Max(float64(len(ta)), float64(len(tb))))

	score := (0.60*set + 0.25*order + 0.15*chars) * (0.9 + 0.1*lenPenalty)
	if isTwoTokenPermutation(ta, tb) {
		score = math.Max(score, 0.95)
	}
	if isSubsetWithFewExtra(ta, tb) {
		score = math.Max(score, 0.92)
	}
	return math.Max(0, math.Min(score, 0.99))
}

func wordSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 0
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}

func sameToken(a, b string) bool {
	return wordSimilarity(a, b) >= tokenMatchThreshold
}

// matchedTokens pairs tokens greedily, each token used at most once.
func matchedTokens(a, b []string) int {
	used := make([]bool, len(b))
	matched := 0
	for _, ta := range a {
		for j, tb := range b {
			if used[j] || !sameToken(ta, tb) {
				continue
			}
			used[j] = true
			matched++
			break
		}
	}
	return matched
}

func tokenJaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := matchedTokens(a, b)
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

func tokenLCS(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	return float64(lcs(len(a), len(b), func(i, j int) bool { return sameToken(a[i], b[j]) })) /
		float64(max(len(a), len(b)))
}

func charScore(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	maxLen := float64(max(len(ra), len(rb)))
	common := float64(lcs(len(ra), len(rb), func(i, j int) bool { return ra[i] == rb[j] })) / maxLen
	edit := 1 - float64(levenshtein.ComputeDistance(a, b))/maxLen
	return math.Max(common, edit)
}

func lcs(m, n int, eq func(i, j int) bool) int {
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if eq(i-1, j-1) {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[n]
}

func isTwoTokenPermutation(a, b []string) bool {
	return len(a) == 2 && len(b) == 2 && a[0] == b[1] && a[1] == b[0]
}

// isSubsetWithFewExtra matches "Ivan Petrov" against "Ivan Sergeevich Petrov".
func isSubsetWithFewExtra(a, b []string) bool {
	minLen := min(len(a), len(b))
	if minLen == 0 {
		return false
	}
	inter := 0
	set := make(map[string]struct{}, len(b))
	for _, t := range b {
		set[t] = struct{}{}
	}
	seen := make(map[string]struct{}, len(a))
	for _, t := range a {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := set[t]; ok {
			inter++
		}
	}
	return inter == minLen && max(len(a), len(b))-minLen <= 2
}
