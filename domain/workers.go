package domain

import "context"

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	Checked   int64
	Corrected int64
}

// ReconcileUsecase recounts aggregates from the ledger and repairs drift.
type ReconcileUsecase interface {
	// ReconcileTarget reports whether the stored aggregate had drifted.
	ReconcileTarget(ctx context.Context, ref TargetRef) (bool, error)
	ReconcileAll(ctx context.Context) (ReconcileReport, error)
}

type ReconcileWorker interface {
	Start(ctx context.Context)

	// Send queues a single target for reconciliation; it never blocks.
	Send(ref TargetRef)
}
