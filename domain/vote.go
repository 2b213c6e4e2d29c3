package domain

import (
	"context"
	"time"
)

// Direction is the sign of a vote. A zero direction never exists in the
// ledger: removing a vote deletes its row.
type Direction int8

const (
	Up   Direction = 1
	Down Direction = -1
)

// ParseDirection converts the wire form ("up"/"down").
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	default:
		return 0, ErrInvalidDirection
	}
}

func (d Direction) Valid() bool {
	return d == Up || d == Down
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}

// VoteKey is the uniqueness key of the ledger.
type VoteKey struct {
	UserID int64
	Target TargetRef
}

// Vote is one row of the ledger. Weight is fixed when the row is created.
type Vote struct {
	UserID    int64
	Target    TargetRef
	Direction Direction
	Weight    float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (v Vote) Key() VoteKey {
	return VoteKey{UserID: v.UserID, Target: v.Target}
}

// VoteResult is what a voter sees after a ledger operation.
type VoteResult struct {
	Aggregate
	YourVote *Direction
}

// LedgerTx is the storage view inside a single ledger transaction.
// Every method runs on the same transaction.
type LedgerTx interface {
	TargetExists(ref TargetRef) (bool, error)

	// GetVote locks and returns the vote row.
	// Returns ErrNotFound if there is none.
	GetVote(key VoteKey) (Vote, error)

	// InsertVote returns ErrDuplicateVote on a unique-key violation.
	// The transaction cannot be used afterwards.
	InsertVote(v *Vote) error

	UpdateDirection(key VoteKey, d Direction) error
	DeleteVote(key VoteKey) error

	// ApplyDelta increments the aggregate columns in place.
	ApplyDelta(ref TargetRef, d Delta) error

	Aggregate(ref TargetRef) (Aggregate, error)
}

// VoteRepository defines the contract for the vote ledger
type VoteRepository interface {
	// WithinTx runs fn inside one transaction, committing when fn returns nil.
	WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error

	// GetVote returns ErrNotFound if the user has not voted on the target.
	GetVote(ctx context.Context, key VoteKey) (Vote, error)
}

// VoteUsecase is the vote ledger: one directional vote per user and target.
type VoteUsecase interface {
	// Cast creates, flips or (for a repeated direction) removes the vote.
	Cast(ctx context.Context, userID int64, ref TargetRef, d Direction) (VoteResult, error)

	// Remove deletes the vote if any. Removing a missing vote is not an error.
	Remove(ctx context.Context, userID int64, ref TargetRef) (VoteResult, error)

	// Get returns the user's current direction, nil when there is no vote.
	Get(ctx context.Context, userID int64, ref TargetRef) (*Direction, error)

	// State returns the target's aggregate together with the user's vote.
	State(ctx context.Context, userID int64, ref TargetRef) (VoteResult, error)
}
