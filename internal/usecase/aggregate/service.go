package aggregate

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Guyuepp/placevote/domain"
	"github.com/Guyuepp/placevote/internal/metrics"
)

const defaultBatchSize = 500

type Service struct {
	targetRepo domain.TargetRepository
	batchSize  int
}

var _ domain.ReconcileUsecase = (*Service)(nil)

// NewService will create a reconciliation service paging batchSize ids at a time
func NewService(t domain.TargetRepository, batchSize int) *Service {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Service{
		targetRepo: t,
		batchSize:  batchSize,
	}
}

func (s *Service) ReconcileTarget(ctx context.Context, ref domain.TargetRef) (bool, error) {
	stored, actual, err := s.targetRepo.Recount(ctx, ref)
	if err != nil {
		return false, err
	}
	metrics.ReconciledTargets.WithLabelValues(string(ref.Kind)).Inc()

	if stored.Equal(actual) {
		return false, nil
	}
	metrics.AggregateDrift.WithLabelValues(string(ref.Kind)).Inc()
	logrus.WithFields(logrus.Fields{
		"target_kind":  ref.Kind,
		"target_id":    ref.ID,
		"stored_count": stored.VoteCount,
		"stored_score": stored.VoteScore.Float64(),
		"actual_count": actual.VoteCount,
		"actual_score": actual.VoteScore.Float64(),
	}).WithError(domain.ErrAggregateDrift).Warn("aggregate corrected")
	return true, nil
}

// ReconcileAll recounts every target, one goroutine per kind.
func (s *Service) ReconcileAll(ctx context.Context) (domain.ReconcileReport, error) {
	var checked, corrected atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	for _, kind := range domain.TargetKinds {
		g.Go(func() error {
			var cursor int64
			for {
				ids, err := s.targetRepo.FetchIDs(ctx, kind, cursor, s.batchSize)
				if err != nil {
					return err
				}
				for _, id := range ids {
					drifted, err := s.ReconcileTarget(ctx, domain.TargetRef{Kind: kind, ID: id})
					if errors.Is(err, domain.ErrTargetNotFound) {
						continue
					}
					if err != nil {
						return err
					}
					checked.Add(1)
					if drifted {
						corrected.Add(1)
					}
				}
				if len(ids) < s.batchSize {
					return nil
				}
				cursor = ids[len(ids)-1]
			}
		})
	}
	err := g.Wait()

	return domain.ReconcileReport{
		Checked:   checked.Load(),
		Corrected: corrected.Load(),
	}, err
}
