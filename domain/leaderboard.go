package domain

import (
	"context"
	"fmt"
	"time"
)

// RankedTarget is a target with its 1-based position in a leaderboard.
type RankedTarget struct {
	Position int
	Target   VotableTarget
}

// LeaderboardQuery selects one leaderboard.
type LeaderboardQuery struct {
	Kind   TargetKind
	Filter Filter
	Limit  int
}

// Key identifies the query in caches.
func (q LeaderboardQuery) Key() string {
	return fmt.Sprintf("%s:%q:%q:%d", q.Kind, q.Filter.Location, q.Filter.Category, q.Limit)
}

// LeaderboardEntry is the display row of a leaderboard.
type LeaderboardEntry struct {
	RankPosition int     `json:"rank_position"`
	TargetID     int64   `json:"target_id"`
	VoteCount    int64   `json:"vote_count"`
	VoteScore    float64 `json:"vote_score"`
}

// LeaderboardCache stores built leaderboards with a logical expiry.
type LeaderboardCache interface {
	// Get returns ErrCacheMiss when nothing is stored. expired reports that
	// the entry is past its logical expiry and should be rebuilt.
	Get(ctx context.Context, q LeaderboardQuery) (entries []LeaderboardEntry, expired bool, err error)
	Set(ctx context.Context, q LeaderboardQuery, entries []LeaderboardEntry, ttl time.Duration) error
}

type RankUsecase interface {
	Leaderboard(ctx context.Context, q LeaderboardQuery) ([]LeaderboardEntry, error)
}

// LeaderboardBuilder computes a leaderboard from the store.
type LeaderboardBuilder func(ctx context.Context, q LeaderboardQuery) ([]LeaderboardEntry, error)

// LeaderboardRepository coordinates the leaderboard cache and its builder.
type LeaderboardRepository interface {
	// Get serves q from cache, calling build on a miss. Logically expired
	// entries are returned as-is while one rebuild runs in the background.
	Get(ctx context.Context, q LeaderboardQuery, build LeaderboardBuilder) ([]LeaderboardEntry, error)
}
