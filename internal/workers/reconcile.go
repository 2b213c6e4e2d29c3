package workers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Guyuepp/placevote/domain"
)

const queueSize = 1024

type reconcileWorker struct {
	Reconciler domain.ReconcileUsecase
	interval   time.Duration
	ch         chan domain.TargetRef
}

var _ domain.ReconcileWorker = (*reconcileWorker)(nil)

func NewReconcileWorker(r domain.ReconcileUsecase, interval time.Duration) *reconcileWorker {
	return &reconcileWorker{
		Reconciler: r,
		interval:   interval,
		ch:         make(chan domain.TargetRef, queueSize),
	}
}

// Send queues a single target for an out-of-band recount
func (w *reconcileWorker) Send(ref domain.TargetRef) {
	select {
	case w.ch <- ref:
	default:
		logrus.Info("ReconcileWorker's channel is full, task droppped")
	}
}

// Start runs a full pass right away and then every interval, serving
// queued targets in between. It returns when ctx is done.
func (w *reconcileWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runAll(ctx)
	for {
		select {
		case ref := <-w.ch:
			if _, err := w.Reconciler.ReconcileTarget(ctx, ref); err != nil {
				logrus.Errorf("reconcile %s %d: %v", ref.Kind, ref.ID, err)
			}
		case <-ticker.C:
			w.runAll(ctx)
		case <-ctx.Done():
			logrus.Info("shutting down ReconcileWorker")
			return
		}
	}
}

func (w *reconcileWorker) runAll(ctx context.Context) {
	start := time.Now()
	report, err := w.Reconciler.ReconcileAll(ctx)
	if err != nil {
		logrus.Errorf("reconciliation pass failed: %v", err)
		return
	}
	logrus.WithFields(logrus.Fields{
		"checked":   report.Checked,
		"corrected": report.Corrected,
		"took":      time.Since(start),
	}).Info("reconciliation pass finished")
}
