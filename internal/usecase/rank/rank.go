// Package rank orders votable targets into leaderboards.
package rank

import (
	"cmp"
	"slices"

	"github.com/Guyuepp/placevote/domain"
)

// Compare orders a before b when a ranks higher: score desc, count desc,
// created_at asc, id asc. It only returns 0 for the same target.
func Compare(a, b domain.VotableTarget) int {
	ma, mb := a.Meta(), b.Meta()
	if c := cmp.Compare(mb.VoteScore, ma.VoteScore); c != 0 {
		return c
	}
	if c := cmp.Compare(mb.VoteCount, ma.VoteCount); c != 0 {
		return c
	}
	if c := ma.CreatedAt.Compare(mb.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(ma.ID, mb.ID)
}

// Rank keeps the targets matching filter and numbers them from 1 in rank
// order. The input is not modified.
func Rank(targets []domain.VotableTarget, filter domain.Filter) []domain.RankedTarget {
	kept := make([]domain.VotableTarget, 0, len(targets))
	for _, t := range targets {
		if filter.Matches(t) {
			kept = append(kept, t)
		}
	}
	slices.SortFunc(kept, Compare)

	res := make([]domain.RankedTarget, len(kept))
	for i, t := range kept {
		res[i] = domain.RankedTarget{Position: i + 1, Target: t}
	}
	return res
}

// Entries converts ranked targets to their display rows.
func Entries(ranked []domain.RankedTarget) []domain.LeaderboardEntry {
	res := make([]domain.LeaderboardEntry, len(ranked))
	for i, r := range ranked {
		meta := r.Target.Meta()
		res[i] = domain.LeaderboardEntry{
			RankPosition: r.Position,
			TargetID:     meta.ID,
			VoteCount:    meta.VoteCount,
			VoteScore:    meta.VoteScore.Float64(),
		}
	}
	return res
}
