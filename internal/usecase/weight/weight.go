// Package weight maps account age to the magnitude of a vote.
package weight

import "time"

type tier struct {
	minDays int
	weight  float64
}

// tiers are ordered by descending lower bound.
var tiers = []tier{
	{181, 1.0},
	{91, 0.7},
	{31, 0.5},
	{8, 0.3},
	{0, 0.1},
}

// ForAge returns the weight for an account that is days old.
// Negative ages count as zero.
func ForAge(days int) float64 {
	if days < 0 {
		days = 0
	}
	for _, t := range tiers {
		if days >= t.minDays {
			return t.weight
		}
	}
	return tiers[len(tiers)-1].weight
}

// At returns the weight of an account created at createdAt as seen at now.
// Age is counted in whole days.
func At(createdAt, now time.Time) float64 {
	return ForAge(int(now.Sub(createdAt) / (24 * time.Hour)))
}
