package identity

import (
	"unicode"

	"github.com/Guyuepp/placevote/domain"
)

const (
	highThreshold   = 0.8
	mediumThreshold = 0.6
)

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		if !unicode.IsSpace(r) {
			set[r] = struct{}{}
		}
	}
	return set
}

// Similarity is the Jaccard index of the non-space characters of a and b.
// Two empty strings are not similar.
func Similarity(a, b string) float64 {
	sa, sb := runeSet(a), runeSet(b)
	if len(sa) == 0 && len(sb) == 0 {
		return 0
	}
	inter := 0
	for r := range sa {
		if _, ok := sb[r]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(sa)+len(sb)-inter)
}

// ConfidenceFor maps a similarity score to a confidence level.
func ConfidenceFor(score float64) domain.Confidence {
	switch {
	case score > highThreshold:
		return domain.ConfidenceHigh
	case score > mediumThreshold:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}
