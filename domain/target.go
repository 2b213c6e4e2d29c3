package domain

import (
	"context"
	"math"
	"slices"
	"time"
)

// TargetKind names the variant of a VotableTarget.
type TargetKind string

const (
	KindPlace      TargetKind = "place"
	KindCollection TargetKind = "collection"
)

// TargetKinds lists every votable kind.
var TargetKinds = []TargetKind{KindPlace, KindCollection}

// ParseTargetKind validates the wire form of a kind.
func ParseTargetKind(s string) (TargetKind, error) {
	k := TargetKind(s)
	if !k.Valid() {
		return "", ErrInvalidTargetKind
	}
	return k, nil
}

func (k TargetKind) Valid() bool {
	return k == KindPlace || k == KindCollection
}

// TargetRef identifies a target across kinds. IDs are only unique within a kind.
type TargetRef struct {
	Kind TargetKind
	ID   int64
}

// Score is a sum of signed vote weights counted in tenths. Every weight
// tier is a whole number of tenths, so sums are exact and equal totals
// compare equal whatever order the votes arrived in.
type Score int64

const scoreUnit = 10

// ScoreOf converts a vote weight to a Score.
func ScoreOf(weight float64) Score {
	return Score(math.Round(weight * scoreUnit))
}

// Float64 returns the score in weight units.
func (s Score) Float64() float64 {
	return float64(s) / scoreUnit
}

// Delta is a change to apply to an Aggregate.
type Delta struct {
	Count int64
	Score Score
}

// Aggregate is the materialized tally of a target's votes.
type Aggregate struct {
	VoteCount int64
	VoteScore Score
}

func (a Aggregate) Add(d Delta) Aggregate {
	return Aggregate{
		VoteCount: a.VoteCount + d.Count,
		VoteScore: a.VoteScore + d.Score,
	}
}

func (a Aggregate) Equal(b Aggregate) bool {
	return a == b
}

// TargetMeta holds the attributes shared by every VotableTarget.
type TargetMeta struct {
	ID       int64
	Category string // normalized
	CityKey  string // normalized
	Aggregate
	CreatedAt time.Time
}

// VotableTarget is a Place or a Collection.
type VotableTarget interface {
	Kind() TargetKind
	Meta() TargetMeta
	// LocationKeys are the normalized locations a location filter may match.
	LocationKeys() []string
}

// Place is a physical venue, usually ingested from an external provider.
type Place struct {
	TargetMeta
	Name        string
	City        string
	District    string
	NameKey     string
	DistrictKey string
}

func (Place) Kind() TargetKind {
	return KindPlace
}

func (p Place) Meta() TargetMeta {
	return p.TargetMeta
}

func (p Place) LocationKeys() []string {
	return nonEmpty(p.CityKey, p.DistrictKey)
}

// Collection is a curated list of places.
type Collection struct {
	TargetMeta
	Title string
	City  string
}

func (Collection) Kind() TargetKind {
	return KindCollection
}

func (c Collection) Meta() TargetMeta {
	return c.TargetMeta
}

func (c Collection) LocationKeys() []string {
	return nonEmpty(c.CityKey)
}

func nonEmpty(keys ...string) []string {
	res := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			res = append(res, k)
		}
	}
	return res
}

// Filter is a conjunction of predicates applied before ranking.
// Values are expected to be normalized; empty fields match everything.
type Filter struct {
	Location string
	Category string
}

func (f Filter) Matches(t VotableTarget) bool {
	meta := t.Meta()
	if f.Category != "" && meta.Category != f.Category {
		return false
	}
	if f.Location != "" && !slices.Contains(t.LocationKeys(), f.Location) {
		return false
	}
	return true
}

// TargetRepository defines the contract for votable target persistence
type TargetRepository interface {
	// Exists reports whether the target row is present.
	Exists(ctx context.Context, ref TargetRef) (bool, error)

	// GetAggregate reads vote_count and vote_score.
	// Returns ErrTargetNotFound if the target doesn't exist.
	GetAggregate(ctx context.Context, ref TargetRef) (Aggregate, error)

	// StorePlace creates a place and backfills its ID and CreatedAt.
	StorePlace(ctx context.Context, p *Place) error

	// StoreCollection creates a collection and backfills its ID and CreatedAt.
	StoreCollection(ctx context.Context, c *Collection) error

	// FetchRanked returns at most limit targets of kind that match filter,
	// ordered by vote_score desc, vote_count desc, created_at asc, id asc.
	FetchRanked(ctx context.Context, kind TargetKind, filter Filter, limit int) ([]VotableTarget, error)

	// FetchIDs pages target ids of kind greater than cursor in ascending order.
	FetchIDs(ctx context.Context, kind TargetKind, cursor int64, limit int) ([]int64, error)

	// Recount recomputes the aggregate from the vote ledger while holding
	// the target row, overwrites the stored aggregate when they differ and
	// returns both values.
	Recount(ctx context.Context, ref TargetRef) (stored Aggregate, actual Aggregate, err error)
}

// NewCollection is a collection as submitted by its curator.
type NewCollection struct {
	Title    string `validate:"required,max=255"`
	City     string `validate:"max=128"`
	Category string `validate:"max=64"`
}

type CatalogueUsecase interface {
	CreateCollection(ctx context.Context, c NewCollection) (Collection, error)
}
