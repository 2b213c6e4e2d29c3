package vote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Guyuepp/placevote/domain"
	"github.com/Guyuepp/placevote/internal/metrics"
	"github.com/Guyuepp/placevote/internal/usecase/aggregate"
	"github.com/Guyuepp/placevote/internal/usecase/weight"
)

const (
	outcomeCreated = "created"
	outcomeFlipped = "flipped"
	outcomeRemoved = "removed"
	outcomeNone    = "none"
)

type Service struct {
	voteRepo    domain.VoteRepository
	targetRepo  domain.TargetRepository
	userRepo    domain.UserRepository
	reconciler  domain.ReconcileWorker
	maxAttempts int
	now         func() time.Time
}

var _ domain.VoteUsecase = (*Service)(nil)

// NewService will create a new vote ledger service. rw may be nil.
func NewService(v domain.VoteRepository, t domain.TargetRepository, u domain.UserRepository, rw domain.ReconcileWorker, maxAttempts int) *Service {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Service{
		voteRepo:    v,
		targetRepo:  t,
		userRepo:    u,
		reconciler:  rw,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// WithClock replaces the clock used for vote weights.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func checkRequest(userID int64, ref domain.TargetRef) error {
	if userID <= 0 {
		return domain.ErrUnauthenticated
	}
	if !ref.Kind.Valid() {
		return domain.ErrInvalidTargetKind
	}
	if ref.ID <= 0 {
		return domain.ErrTargetNotFound
	}
	return nil
}

func isRejection(err error) bool {
	return errors.Is(err, domain.ErrUnauthenticated) ||
		errors.Is(err, domain.ErrTargetNotFound) ||
		errors.Is(err, domain.ErrInvalidDirection) ||
		errors.Is(err, domain.ErrInvalidTargetKind) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (s *Service) Cast(ctx context.Context, userID int64, ref domain.TargetRef, d domain.Direction) (domain.VoteResult, error) {
	if err := checkRequest(userID, ref); err != nil {
		return domain.VoteResult{}, err
	}
	if !d.Valid() {
		return domain.VoteResult{}, domain.ErrInvalidDirection
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.VoteResult{}, domain.ErrUnauthenticated
	}
	if err != nil {
		return domain.VoteResult{}, err
	}
	w := weight.At(user.CreatedAt, s.now())

	var (
		res     domain.VoteResult
		outcome string
	)
	err = s.mutate(ctx, ref, func(tx domain.LedgerTx) (err error) {
		res, outcome, err = s.castTx(tx, domain.VoteKey{UserID: userID, Target: ref}, d, w)
		return err
	})
	if err != nil {
		return domain.VoteResult{}, err
	}
	metrics.Votes.WithLabelValues(string(ref.Kind), outcome).Inc()
	return res, nil
}

// castTx applies one cast inside tx. A repeated direction removes the vote,
// an opposite one flips it and keeps the original weight.
func (s *Service) castTx(tx domain.LedgerTx, key domain.VoteKey, d domain.Direction, w float64) (domain.VoteResult, string, error) {
	if err := requireTarget(tx, key.Target); err != nil {
		return domain.VoteResult{}, "", err
	}

	var (
		delta    domain.Delta
		outcome  string
		yourVote *domain.Direction
	)
	existing, err := tx.GetVote(key)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		now := s.now()
		v := &domain.Vote{
			UserID:    key.UserID,
			Target:    key.Target,
			Direction: d,
			Weight:    w,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err = tx.InsertVote(v); err != nil {
			return domain.VoteResult{}, "", err
		}
		delta, outcome, yourVote = aggregate.Added(d, w), outcomeCreated, &d
	case err != nil:
		return domain.VoteResult{}, "", err
	case existing.Direction == d:
		if err = tx.DeleteVote(key); err != nil {
			return domain.VoteResult{}, "", err
		}
		delta, outcome = aggregate.Removed(existing.Direction, existing.Weight), outcomeRemoved
	default:
		if err = tx.UpdateDirection(key, d); err != nil {
			return domain.VoteResult{}, "", err
		}
		delta, outcome, yourVote = aggregate.Flipped(existing.Direction, d, existing.Weight), outcomeFlipped, &d
	}

	if err = tx.ApplyDelta(key.Target, delta); err != nil {
		return domain.VoteResult{}, "", err
	}
	agg, err := tx.Aggregate(key.Target)
	if err != nil {
		return domain.VoteResult{}, "", err
	}
	return domain.VoteResult{Aggregate: agg, YourVote: yourVote}, outcome, nil
}

func (s *Service) Remove(ctx context.Context, userID int64, ref domain.TargetRef) (domain.VoteResult, error) {
	if err := checkRequest(userID, ref); err != nil {
		return domain.VoteResult{}, err
	}

	var (
		res     domain.VoteResult
		outcome string
	)
	err := s.mutate(ctx, ref, func(tx domain.LedgerTx) error {
		if err := requireTarget(tx, ref); err != nil {
			return err
		}
		key := domain.VoteKey{UserID: userID, Target: ref}
		existing, err := tx.GetVote(key)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			outcome = outcomeNone
		case err != nil:
			return err
		default:
			if err = tx.DeleteVote(key); err != nil {
				return err
			}
			if err = tx.ApplyDelta(ref, aggregate.Removed(existing.Direction, existing.Weight)); err != nil {
				return err
			}
			outcome = outcomeRemoved
		}
		agg, err := tx.Aggregate(ref)
		if err != nil {
			return err
		}
		res = domain.VoteResult{Aggregate: agg}
		return nil
	})
	if err != nil {
		return domain.VoteResult{}, err
	}
	if outcome != outcomeNone {
		metrics.Votes.WithLabelValues(string(ref.Kind), outcome).Inc()
	}
	return res, nil
}

func (s *Service) Get(ctx context.Context, userID int64, ref domain.TargetRef) (*domain.Direction, error) {
	if err := checkRequest(userID, ref); err != nil {
		return nil, err
	}
	exists, err := s.targetRepo.Exists(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrTargetNotFound
	}
	return s.yourVote(ctx, userID, ref)
}

func (s *Service) State(ctx context.Context, userID int64, ref domain.TargetRef) (domain.VoteResult, error) {
	if err := checkRequest(userID, ref); err != nil {
		return domain.VoteResult{}, err
	}
	agg, err := s.targetRepo.GetAggregate(ctx, ref)
	if err != nil {
		return domain.VoteResult{}, err
	}
	d, err := s.yourVote(ctx, userID, ref)
	if err != nil {
		return domain.VoteResult{}, err
	}
	return domain.VoteResult{Aggregate: agg, YourVote: d}, nil
}

func (s *Service) yourVote(ctx context.Context, userID int64, ref domain.TargetRef) (*domain.Direction, error) {
	v, err := s.voteRepo.GetVote(ctx, domain.VoteKey{UserID: userID, Target: ref})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v.Direction, nil
}

func requireTarget(tx domain.LedgerTx, ref domain.TargetRef) error {
	exists, err := tx.TargetExists(ref)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrTargetNotFound
	}
	return nil
}

// mutate runs fn in a ledger transaction, starting over when it lost a
// uniqueness or lock race. The retry observes the winner's row.
func (s *Service) mutate(ctx context.Context, ref domain.TargetRef, fn func(tx domain.LedgerTx) error) error {
	var err error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err = s.voteRepo.WithinTx(ctx, fn)
		if !errors.Is(err, domain.ErrDuplicateVote) {
			break
		}
		if attempt < s.maxAttempts {
			metrics.CastRetries.Inc()
			logrus.WithFields(logrus.Fields{
				"target_kind": ref.Kind,
				"target_id":   ref.ID,
				"attempt":     attempt,
			}).Debug("ledger race, retrying")
		}
	}

	switch {
	case err == nil || isRejection(err):
		return err
	case errors.Is(err, domain.ErrDuplicateVote):
		logrus.Warnf("ledger race on %s %d not resolved after %d attempts", ref.Kind, ref.ID, s.maxAttempts)
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	default:
		// the commit may or may not have happened
		if s.reconciler != nil {
			s.reconciler.Send(ref)
		}
		return err
	}
}
