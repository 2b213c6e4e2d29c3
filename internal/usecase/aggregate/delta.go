package aggregate

import "github.com/Guyuepp/placevote/domain"

// Added is the effect of creating a vote.
func Added(d domain.Direction, weight float64) domain.Delta {
	return domain.Delta{Count: 1, Score: domain.Score(d) * domain.ScoreOf(weight)}
}

// Removed is the effect of deleting a vote.
func Removed(d domain.Direction, weight float64) domain.Delta {
	return domain.Delta{Count: -1, Score: -domain.Score(d) * domain.ScoreOf(weight)}
}

// Flipped is the effect of changing a vote's direction in place.
func Flipped(from, to domain.Direction, weight float64) domain.Delta {
	return domain.Delta{Score: domain.Score(to-from) * domain.ScoreOf(weight)}
}
