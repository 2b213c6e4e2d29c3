package rank

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Guyuepp/placevote/domain"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func place(id int64, count int64, score float64, ageRank int, city, category string) domain.Place {
	return domain.Place{
		TargetMeta: domain.TargetMeta{
			ID:        id,
			Category:  category,
			CityKey:   city,
			Aggregate: domain.Aggregate{VoteCount: count, VoteScore: domain.ScoreOf(score)},
			CreatedAt: base.Add(time.Duration(ageRank) * time.Hour),
		},
	}
}

func ids(ranked []domain.RankedTarget) []int64 {
	res := make([]int64, len(ranked))
	for i, r := range ranked {
		res[i] = r.Target.Meta().ID
	}
	return res
}

func TestRankOrder(t *testing.T) {
	targets := []domain.VotableTarget{
		place(1, 1, -0.5, 0, "", ""),
		place(2, 2, 1.0, 5, "", ""),
		place(3, 4, 1.0, 9, "", ""), // more participation wins at equal score
		place(4, 0, 0, 1, "", ""),
		place(5, 2, 1.0, 2, "", ""), // older wins at equal score and count
		place(6, 2, 1.0, 2, "", ""), // lower id wins when everything else ties
	}

	ranked := Rank(targets, domain.Filter{})

	assert.Equal(t, []int64{3, 5, 6, 2, 4, 1}, ids(ranked))
	for i, r := range ranked {
		assert.Equal(t, i+1, r.Position)
	}
}

func TestRankFiltersBeforeRanking(t *testing.T) {
	targets := []domain.VotableTarget{
		place(1, 9, 9, 0, "ankara", "cafe"),
		place(2, 1, 0.3, 0, "istanbul", "cafe"),
		place(3, 1, 0.7, 0, "istanbul", "bar"),
		domain.Collection{TargetMeta: domain.TargetMeta{ID: 4, CityKey: "istanbul", Category: "cafe"}},
	}

	ranked := Rank(targets, domain.Filter{Location: "istanbul", Category: "cafe"})

	require.Len(t, ranked, 2)
	assert.Equal(t, []int64{2, 4}, ids(ranked))
	assert.Equal(t, 1, ranked[0].Position)
}

func TestRankMatchesDistrict(t *testing.T) {
	p := place(1, 0, 0, 0, "istanbul", "")
	p.DistrictKey = "kadikoy"

	ranked := Rank([]domain.VotableTarget{p}, domain.Filter{Location: "kadikoy"})
	assert.Len(t, ranked, 1)
}

func TestRankEmpty(t *testing.T) {
	ranked := Rank([]domain.VotableTarget{place(1, 1, 1, 0, "ankara", "")}, domain.Filter{Location: "izmir"})
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
	assert.Empty(t, Entries(ranked))
}

func TestCompareIsTotal(t *testing.T) {
	a := place(1, 1, 1, 0, "", "")
	b := place(2, 1, 1, 0, "", "")
	assert.Equal(t, -1, Compare(a, b))
	assert.Equal(t, 1, Compare(b, a))
	assert.Equal(t, 0, Compare(a, a))
}

type targetRepoMock struct {
	mock.Mock
	domain.TargetRepository
}

func (m *targetRepoMock) FetchRanked(ctx context.Context, kind domain.TargetKind, filter domain.Filter, limit int) ([]domain.VotableTarget, error) {
	args := m.Called(ctx, kind, filter, limit)
	res, _ := args.Get(0).([]domain.VotableTarget)
	return res, args.Error(1)
}

type leaderboardRepoMock struct {
	mock.Mock
}

func (m *leaderboardRepoMock) Get(ctx context.Context, q domain.LeaderboardQuery, build domain.LeaderboardBuilder) ([]domain.LeaderboardEntry, error) {
	args := m.Called(ctx, q)
	res, _ := args.Get(0).([]domain.LeaderboardEntry)
	return res, args.Error(1)
}

func inKadikoy(p domain.Place) domain.Place {
	p.DistrictKey = "kadikoy"
	return p
}

func TestLeaderboardNormalizesQuery(t *testing.T) {
	repo := new(targetRepoMock)
	filter := domain.Filter{Location: "kadikoy", Category: "cafe"}
	repo.On("FetchRanked", mock.Anything, domain.KindPlace, filter, 100).Return([]domain.VotableTarget{
		inKadikoy(place(7, 2, 1.2, 0, "istanbul", "cafe")),
		inKadikoy(place(3, 1, 1.0, 0, "istanbul", "cafe")),
	}, nil)

	svc := NewService(repo, nil, 100)
	res, err := svc.Leaderboard(context.Background(), domain.LeaderboardQuery{
		Kind:   domain.KindPlace,
		Filter: domain.Filter{Location: "  Kadıköy ", Category: "CAFE"},
		Limit:  5000,
	})

	require.NoError(t, err)
	assert.Equal(t, []domain.LeaderboardEntry{
		{RankPosition: 1, TargetID: 7, VoteCount: 2, VoteScore: 1.2},
		{RankPosition: 2, TargetID: 3, VoteCount: 1, VoteScore: 1.0},
	}, res)
	repo.AssertExpectations(t)
}

func TestNormalizeLimit(t *testing.T) {
	svc := NewService(nil, nil, 50)
	assert.Equal(t, DefaultLimit, svc.Normalize(domain.LeaderboardQuery{}).Limit)
	assert.Equal(t, DefaultLimit, svc.Normalize(domain.LeaderboardQuery{Limit: -3}).Limit)
	assert.Equal(t, 1, svc.Normalize(domain.LeaderboardQuery{Limit: 1}).Limit)
	assert.Equal(t, 50, svc.Normalize(domain.LeaderboardQuery{Limit: 51}).Limit)

	small := NewService(nil, nil, 5)
	assert.Equal(t, 5, small.Normalize(domain.LeaderboardQuery{}).Limit)
}

func TestLeaderboardRejectsUnknownKind(t *testing.T) {
	_, err := NewService(new(targetRepoMock), nil, 10).Leaderboard(context.Background(), domain.LeaderboardQuery{Kind: "user"})
	assert.ErrorIs(t, err, domain.ErrInvalidTargetKind)
}

func TestLeaderboardGoesThroughCache(t *testing.T) {
	lr := new(leaderboardRepoMock)
	want := []domain.LeaderboardEntry{{RankPosition: 1, TargetID: 9}}
	lr.On("Get", mock.Anything, domain.LeaderboardQuery{Kind: domain.KindCollection, Limit: DefaultLimit}).Return(want, nil)

	res, err := NewService(new(targetRepoMock), lr, 100).Leaderboard(context.Background(), domain.LeaderboardQuery{Kind: domain.KindCollection})

	require.NoError(t, err)
	assert.Equal(t, want, res)
	lr.AssertExpectations(t)
}
