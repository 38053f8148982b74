package gpsprofile

import (
	"strings"
	"unicode"
)

var emptyMarkers = map[string]struct{}{
	"":     {},
	"-":    {},
	"--":   {},
	"—":    {},
	"–":    {},
	"n/a":  {},
	"na":   {},
	"null": {},
	"nan":  {},
}

// Summary rows exported by vendors under the player list.
var summaryMarkers = []string{
	"total",
	"totals",
	"average",
	"avg",
	"mean",
	"sum",
	"team average",
	"team total",
	"итого",
	"всего",
	"среднее",
	"сумма",
}

func isEmptyCell(cell any) bool {
	switch v := cell.(type) {
	case nil:
		return true
	case string:
		_, ok := emptyMarkers[strings.ToLower(strings.TrimSpace(v))]
		return ok
	default:
		return false
	}
}

func isBlankRow(cells []any) bool {
	for _, cell := range cells {
		if !isEmptyCell(cell) {
			return false
		}
	}
	return true
}

func isSummaryName(name string) bool {
	normalized := strings.ToLower(strings.TrimSpace(strings.TrimRightFunc(name, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})))
	for _, marker := range summaryMarkers {
		if normalized == marker || strings.HasPrefix(normalized, marker+":") || strings.HasPrefix(normalized, marker+" (") {
			return true
		}
	}
	return false
}
