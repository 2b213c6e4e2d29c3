package rank

import (
	"context"

	"github.com/Guyuepp/placevote/domain"
	"github.com/Guyuepp/placevote/internal/normalize"
)

const DefaultLimit = 10

type Service struct {
	targetRepo      domain.TargetRepository
	leaderboardRepo domain.LeaderboardRepository
	maxLimit        int
}

var _ domain.RankUsecase = (*Service)(nil)

// NewService will create a new leaderboard service. lr may be nil, in which
// case every query reads the store.
func NewService(t domain.TargetRepository, lr domain.LeaderboardRepository, maxLimit int) *Service {
	if maxLimit < 1 {
		maxLimit = DefaultLimit
	}
	return &Service{
		targetRepo:      t,
		leaderboardRepo: lr,
		maxLimit:        maxLimit,
	}
}

// Normalize clamps the limit and normalizes filter values so equal queries
// share a cache entry.
func (s *Service) Normalize(q domain.LeaderboardQuery) domain.LeaderboardQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > s.maxLimit {
		q.Limit = s.maxLimit
	}
	q.Filter.Location = normalize.Key(q.Filter.Location)
	q.Filter.Category = normalize.Key(q.Filter.Category)
	return q
}

func (s *Service) Leaderboard(ctx context.Context, q domain.LeaderboardQuery) ([]domain.LeaderboardEntry, error) {
	if !q.Kind.Valid() {
		return nil, domain.ErrInvalidTargetKind
	}
	q = s.Normalize(q)
	if s.leaderboardRepo == nil {
		return s.build(ctx, q)
	}
	return s.leaderboardRepo.Get(ctx, q, s.build)
}

// build lets the store filter, order and cut, then ranks the page again so
// positions follow Compare exactly.
func (s *Service) build(ctx context.Context, q domain.LeaderboardQuery) ([]domain.LeaderboardEntry, error) {
	targets, err := s.targetRepo.FetchRanked(ctx, q.Kind, q.Filter, q.Limit)
	if err != nil {
		return nil, err
	}
	return Entries(Rank(targets, q.Filter)), nil
}
