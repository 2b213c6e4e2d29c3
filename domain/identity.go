package domain

import "context"

// Confidence is the strength of a candidate-to-place match.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Candidate is a raw place as delivered by the external place provider.
type Candidate struct {
	Name     string `validate:"required,max=255"`
	City     string `validate:"max=128"`
	District string `validate:"max=128"`
}

// Match points at an existing place that a candidate most likely is.
type Match struct {
	TargetID   int64      `json:"target_id"`
	Confidence Confidence `json:"confidence"`
}

// IngestResult is the outcome of feeding a candidate into the catalogue.
type IngestResult struct {
	TargetID   int64
	Created    bool
	Confidence Confidence // empty when Created
}

// PlaceScope restricts a place search. At most one key is set;
// an empty scope covers every place.
type PlaceScope struct {
	DistrictKey string
	CityKey     string
}

// PlaceRepository defines the lookups used by identity resolution.
type PlaceRepository interface {
	// FindExact returns ErrNotFound when no place in scope has nameKey.
	FindExact(ctx context.Context, scope PlaceScope, nameKey string) (Place, error)

	// FetchInScope pages the places in scope with id greater than cursor,
	// in ascending id order.
	FetchInScope(ctx context.Context, scope PlaceScope, cursor int64, limit int) ([]Place, error)
}

type IdentityUsecase interface {
	// Resolve returns nil when the candidate looks like a new place.
	Resolve(ctx context.Context, c Candidate) (*Match, error)

	// Ingest reuses a medium or high confidence match, otherwise creates a place.
	Ingest(ctx context.Context, c Candidate, category string) (IngestResult, error)
}
