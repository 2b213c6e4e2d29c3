package vote

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/Guyuepp/placevote/domain"
	"github.com/Guyuepp/placevote/internal/database"
	"github.com/Guyuepp/placevote/internal/repository/mysql"
	"github.com/Guyuepp/placevote/internal/repository/mysql/model"
	"github.com/Guyuepp/placevote/internal/usecase/rank"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type ledgerSuite struct {
	suite.Suite
	db      *gorm.DB
	targets domain.TargetRepository
	svc     *Service
	place   domain.TargetRef
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(ledgerSuite))
}

func (s *ledgerSuite) SetupTest() {
	db, err := database.OpenSQLite(filepath.Join(s.T().TempDir(), "ledger.db"))
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(db))
	s.db = db
	s.targets = mysql.NewTargetRepository(db)
	s.svc = NewService(mysql.NewVoteRepository(db), s.targets, mysql.NewUserRepository(db), nil, 3).
		WithClock(func() time.Time { return testNow })

	p := &domain.Place{Name: "Zübeyir Ocakbaşı", NameKey: "zubeyir ocakbasi"}
	s.Require().NoError(s.targets.StorePlace(context.Background(), p))
	s.place = domain.TargetRef{Kind: domain.KindPlace, ID: p.ID}
}

// user creates a voter whose account is ageDays old.
func (s *ledgerSuite) user(ageDays int) int64 {
	u := &model.User{CreatedAt: testNow.AddDate(0, 0, -ageDays)}
	s.Require().NoError(s.db.Create(u).Error)
	return u.ID
}

func (s *ledgerSuite) voteRows(ref domain.TargetRef) int64 {
	var n int64
	s.Require().NoError(s.db.Model(&model.Vote{}).
		Where("target_kind = ? AND target_id = ?", string(ref.Kind), ref.ID).
		Count(&n).Error)
	return n
}

func (s *ledgerSuite) TestUpvoteFlipToggleOff() {
	ctx := context.Background()
	uid := s.user(200)

	res, err := s.svc.Cast(ctx, uid, s.place, domain.Up)
	s.Require().NoError(err)
	s.Equal(int64(1), res.VoteCount)
	s.Equal(domain.Score(10), res.VoteScore)
	s.Require().NotNil(res.YourVote)
	s.Equal(domain.Up, *res.YourVote)

	res, err = s.svc.Cast(ctx, uid, s.place, domain.Down)
	s.Require().NoError(err)
	s.Equal(int64(1), res.VoteCount)
	s.Equal(domain.Score(-10), res.VoteScore)
	s.Equal(domain.Down, *res.YourVote)

	res, err = s.svc.Cast(ctx, uid, s.place, domain.Down)
	s.Require().NoError(err)
	s.Equal(int64(0), res.VoteCount)
	s.Zero(res.VoteScore)
	s.Nil(res.YourVote)
	s.Equal(int64(0), s.voteRows(s.place))
}

func (s *ledgerSuite) TestEqualMixedWeightTotalsTieBreakOnAge() {
	ctx := context.Background()
	older := s.place
	newer := &domain.Place{Name: "Kadı Nimet", NameKey: "kadi nimet", TargetMeta: domain.TargetMeta{CreatedAt: time.Now().UTC().Add(time.Hour)}}
	s.Require().NoError(s.targets.StorePlace(ctx, newer))
	newerRef := domain.TargetRef{Kind: domain.KindPlace, ID: newer.ID}

	// 0.1 + 0.7 and 0.5 + 0.3
	for _, age := range []int{0, 100} {
		_, err := s.svc.Cast(ctx, s.user(age), older, domain.Up)
		s.Require().NoError(err)
	}
	for _, age := range []int{40, 10} {
		_, err := s.svc.Cast(ctx, s.user(age), newerRef, domain.Up)
		s.Require().NoError(err)
	}

	a, err := s.targets.GetAggregate(ctx, older)
	s.Require().NoError(err)
	b, err := s.targets.GetAggregate(ctx, newerRef)
	s.Require().NoError(err)
	s.Equal(domain.Aggregate{VoteCount: 2, VoteScore: 8}, a)
	s.Equal(a, b)

	board, err := rank.NewService(s.targets, nil, 10).Leaderboard(ctx, domain.LeaderboardQuery{Kind: domain.KindPlace})
	s.Require().NoError(err)
	s.Require().Len(board, 2)
	s.Equal(older.ID, board[0].TargetID)
	s.Equal(newer.ID, board[1].TargetID)
	s.Equal(0.8, board[0].VoteScore)
	s.Equal(board[0].VoteScore, board[1].VoteScore)
}

func (s *ledgerSuite) TestToggleReturnsToPreVoteState() {
	ctx := context.Background()
	other := s.user(40)
	_, err := s.svc.Cast(ctx, other, s.place, domain.Down)
	s.Require().NoError(err)
	before, err := s.targets.GetAggregate(ctx, s.place)
	s.Require().NoError(err)

	uid := s.user(3)
	_, err = s.svc.Cast(ctx, uid, s.place, domain.Up)
	s.Require().NoError(err)
	res, err := s.svc.Cast(ctx, uid, s.place, domain.Up)
	s.Require().NoError(err)

	s.True(before.Equal(res.Aggregate))
}

func (s *ledgerSuite) TestWeightIsFixedAtCreation() {
	ctx := context.Background()
	uid := s.user(7)

	_, err := s.svc.Cast(ctx, uid, s.place, domain.Up)
	s.Require().NoError(err)

	// the account ages past two tier boundaries before the flip
	s.svc.WithClock(func() time.Time { return testNow.AddDate(0, 0, 200) })
	res, err := s.svc.Cast(ctx, uid, s.place, domain.Down)
	s.Require().NoError(err)
	s.Equal(domain.Score(-1), res.VoteScore)
}

func (s *ledgerSuite) TestRemoveIsIdempotent() {
	ctx := context.Background()
	uid := s.user(100)

	_, err := s.svc.Cast(ctx, uid, s.place, domain.Up)
	s.Require().NoError(err)

	res, err := s.svc.Remove(ctx, uid, s.place)
	s.Require().NoError(err)
	s.Equal(int64(0), res.VoteCount)
	s.Zero(res.VoteScore)

	res, err = s.svc.Remove(ctx, uid, s.place)
	s.Require().NoError(err)
	s.Equal(int64(0), res.VoteCount)
	s.Nil(res.YourVote)
}

func (s *ledgerSuite) TestGetAndState() {
	ctx := context.Background()
	uid := s.user(60)

	d, err := s.svc.Get(ctx, uid, s.place)
	s.Require().NoError(err)
	s.Nil(d)

	_, err = s.svc.Cast(ctx, uid, s.place, domain.Down)
	s.Require().NoError(err)

	d, err = s.svc.Get(ctx, uid, s.place)
	s.Require().NoError(err)
	s.Require().NotNil(d)
	s.Equal(domain.Down, *d)

	state, err := s.svc.State(ctx, uid, s.place)
	s.Require().NoError(err)
	s.Equal(int64(1), state.VoteCount)
	s.Equal(domain.Score(-5), state.VoteScore)
	s.Equal(domain.Down, *state.YourVote)
}

func (s *ledgerSuite) TestRejections() {
	ctx := context.Background()
	uid := s.user(10)
	missing := domain.TargetRef{Kind: domain.KindPlace, ID: s.place.ID + 100}

	_, err := s.svc.Cast(ctx, 0, s.place, domain.Up)
	s.ErrorIs(err, domain.ErrUnauthenticated)

	_, err = s.svc.Cast(ctx, 9999, s.place, domain.Up)
	s.ErrorIs(err, domain.ErrUnauthenticated)

	_, err = s.svc.Cast(ctx, uid, s.place, domain.Direction(0))
	s.ErrorIs(err, domain.ErrInvalidDirection)

	_, err = s.svc.Cast(ctx, uid, domain.TargetRef{Kind: "article", ID: s.place.ID}, domain.Up)
	s.ErrorIs(err, domain.ErrInvalidTargetKind)

	_, err = s.svc.Cast(ctx, uid, missing, domain.Up)
	s.ErrorIs(err, domain.ErrTargetNotFound)
	s.Equal(int64(0), s.voteRows(missing))

	_, err = s.svc.Remove(ctx, uid, missing)
	s.ErrorIs(err, domain.ErrTargetNotFound)

	_, err = s.svc.State(ctx, uid, missing)
	s.ErrorIs(err, domain.ErrTargetNotFound)

	_, err = s.svc.Get(ctx, uid, missing)
	s.ErrorIs(err, domain.ErrTargetNotFound)
}

func (s *ledgerSuite) TestConcurrentVotersNeverLoseUpdates() {
	ctx := context.Background()
	const voters = 50
	ids := make([]int64, voters)
	for i := range ids {
		ids[i] = s.user(i * 5)
	}

	var wg sync.WaitGroup
	errs := make(chan error, voters)
	for _, uid := range ids {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			if _, err := s.svc.Cast(ctx, uid, s.place, domain.Up); err != nil {
				errs <- err
			}
		}(uid)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.NoError(err)
	}

	agg, err := s.targets.GetAggregate(ctx, s.place)
	s.Require().NoError(err)
	s.Equal(int64(voters), agg.VoteCount)
	s.Equal(int64(voters), s.voteRows(s.place))

	var sum int64
	s.Require().NoError(s.db.Model(&model.Vote{}).
		Select("COALESCE(SUM(direction * weight), 0)").
		Where("target_kind = ? AND target_id = ?", string(s.place.Kind), s.place.ID).
		Row().Scan(&sum))
	s.Equal(domain.Score(sum), agg.VoteScore)
}

func (s *ledgerSuite) TestConcurrentCastsBySameUserKeepOneRow() {
	ctx := context.Background()
	uid := s.user(365)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.Cast(ctx, uid, s.place, domain.Up)
			s.NoError(err)
		}()
	}
	wg.Wait()

	rows := s.voteRows(s.place)
	s.LessOrEqual(rows, int64(1))
	agg, err := s.targets.GetAggregate(ctx, s.place)
	s.Require().NoError(err)
	s.Equal(rows, agg.VoteCount)
	s.Equal(domain.Score(rows*10), agg.VoteScore)
}

type voteRepoMock struct {
	mock.Mock
}

func (m *voteRepoMock) WithinTx(ctx context.Context, fn func(tx domain.LedgerTx) error) error {
	return m.Called(ctx).Error(0)
}

func (m *voteRepoMock) GetVote(ctx context.Context, key domain.VoteKey) (domain.Vote, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(domain.Vote), args.Error(1)
}

type userRepoStub struct{}

func (userRepoStub) GetByID(_ context.Context, id int64) (domain.User, error) {
	return domain.User{ID: id, CreatedAt: testNow.AddDate(-1, 0, 0)}, nil
}

type workerMock struct {
	mock.Mock
}

func (m *workerMock) Start(ctx context.Context) {
	m.Called(ctx)
}

func (m *workerMock) Send(ref domain.TargetRef) {
	m.Called(ref)
}

func TestCastRetriesUniquenessRace(t *testing.T) {
	repo := new(voteRepoMock)
	repo.On("WithinTx", mock.Anything).Return(domain.ErrDuplicateVote).Once()
	repo.On("WithinTx", mock.Anything).Return(nil).Once()

	svc := NewService(repo, nil, userRepoStub{}, nil, 3)
	_, err := svc.Cast(context.Background(), 1, domain.TargetRef{Kind: domain.KindPlace, ID: 1}, domain.Up)

	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "WithinTx", 2)
}

func TestCastGivesUpAfterMaxAttempts(t *testing.T) {
	repo := new(voteRepoMock)
	repo.On("WithinTx", mock.Anything).Return(fmt.Errorf("%w: deadlock", domain.ErrDuplicateVote))

	svc := NewService(repo, nil, userRepoStub{}, nil, 2)
	_, err := svc.Cast(context.Background(), 1, domain.TargetRef{Kind: domain.KindPlace, ID: 1}, domain.Up)

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NotErrorIs(t, err, domain.ErrDuplicateVote)
	repo.AssertNumberOfCalls(t, "WithinTx", 2)
}

func TestUnknownFailureSchedulesReconcile(t *testing.T) {
	ref := domain.TargetRef{Kind: domain.KindCollection, ID: 8}
	repo := new(voteRepoMock)
	repo.On("WithinTx", mock.Anything).Return(errors.New("commit: connection reset"))
	worker := new(workerMock)
	worker.On("Send", ref).Once()

	svc := NewService(repo, nil, userRepoStub{}, worker, 3)
	_, err := svc.Cast(context.Background(), 1, ref, domain.Down)

	assert.Error(t, err)
	repo.AssertNumberOfCalls(t, "WithinTx", 1)
	worker.AssertExpectations(t)
}

func TestRejectionDoesNotScheduleReconcile(t *testing.T) {
	ref := domain.TargetRef{Kind: domain.KindPlace, ID: 3}
	repo := new(voteRepoMock)
	repo.On("WithinTx", mock.Anything).Return(domain.ErrTargetNotFound)
	worker := new(workerMock)

	svc := NewService(repo, nil, userRepoStub{}, worker, 3)
	_, err := svc.Remove(context.Background(), 1, ref)

	assert.ErrorIs(t, err, domain.ErrTargetNotFound)
	worker.AssertNotCalled(t, "Send", mock.Anything)
}
