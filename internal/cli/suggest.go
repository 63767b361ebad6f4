package cli

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxTypoDistance is the maximum edit distance considered a likely typo.
const maxTypoDistance = 3

// closestMatch returns the candidate closest to the input by edit distance,
// or empty when nothing is within typo range.
func closestMatch(input string, candidates []string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return ""
	}

	best := ""
	minDist := maxTypoDistance + 1
	for _, candidate := range candidates {
		dist := levenshtein.ComputeDistance(input, strings.ToLower(candidate))
		if dist == 0 {
			return candidate
		}
		if dist < minDist {
			minDist = dist
			best = candidate
		}
	}
	return best
}
