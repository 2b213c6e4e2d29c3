package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/Guyuepp/placevote/domain"
	"github.com/Guyuepp/placevote/internal/normalize"
)

// defaultPageSize is how many places are scored per query.
const defaultPageSize = 1000

type Service struct {
	placeRepo  domain.PlaceRepository
	targetRepo domain.TargetRepository
	validate   *validator.Validate
	pageSize   int
}

var _ domain.IdentityUsecase = (*Service)(nil)

// NewService will create a new identity resolution service
func NewService(p domain.PlaceRepository, t domain.TargetRepository) *Service {
	return &Service{
		placeRepo:  p,
		targetRepo: t,
		validate:   validator.New(),
		pageSize:   defaultPageSize,
	}
}

func (s *Service) check(c domain.Candidate) (string, error) {
	if err := s.validate.Struct(c); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrBadParamInput, err)
	}
	nameKey := normalize.Key(c.Name)
	if nameKey == "" {
		return "", fmt.Errorf("%w: empty name", domain.ErrBadParamInput)
	}
	return nameKey, nil
}

// scopes lists the searches for c, most specific first.
func scopes(c domain.Candidate) []domain.PlaceScope {
	var res []domain.PlaceScope
	if key := normalize.Key(c.District); key != "" {
		res = append(res, domain.PlaceScope{DistrictKey: key})
	}
	if key := normalize.Key(c.City); key != "" {
		res = append(res, domain.PlaceScope{CityKey: key})
	}
	if len(res) == 0 {
		res = append(res, domain.PlaceScope{})
	}
	return res
}

func (s *Service) Resolve(ctx context.Context, c domain.Candidate) (*domain.Match, error) {
	nameKey, err := s.check(c)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, c, nameKey)
}

func (s *Service) resolve(ctx context.Context, c domain.Candidate, nameKey string) (*domain.Match, error) {
	var (
		bestID    int64
		bestScore float64
	)
	for _, scope := range scopes(c) {
		exact, err := s.placeRepo.FindExact(ctx, scope, nameKey)
		if err == nil {
			return &domain.Match{TargetID: exact.ID, Confidence: domain.ConfidenceHigh}, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}

		id, score, err := s.bestInScope(ctx, scope, nameKey)
		if err != nil {
			return nil, err
		}
		if score > bestScore {
			bestID, bestScore = id, score
		}
		if ConfidenceFor(bestScore) == domain.ConfidenceHigh {
			break
		}
	}

	confidence := ConfidenceFor(bestScore)
	if bestID == 0 || confidence == domain.ConfidenceLow {
		return nil, nil
	}
	return &domain.Match{TargetID: bestID, Confidence: confidence}, nil
}

// bestInScope scores every place in scope, one page at a time. Ties keep
// the lowest id.
func (s *Service) bestInScope(ctx context.Context, scope domain.PlaceScope, nameKey string) (bestID int64, bestScore float64, err error) {
	var cursor int64
	for {
		page, err := s.placeRepo.FetchInScope(ctx, scope, cursor, s.pageSize)
		if err != nil {
			return 0, 0, err
		}
		for _, p := range page {
			if score := Similarity(nameKey, p.NameKey); score > bestScore {
				bestID, bestScore = p.ID, score
			}
		}
		if len(page) < s.pageSize {
			return bestID, bestScore, nil
		}
		cursor = page[len(page)-1].ID
	}
}

func (s *Service) Ingest(ctx context.Context, c domain.Candidate, category string) (domain.IngestResult, error) {
	nameKey, err := s.check(c)
	if err != nil {
		return domain.IngestResult{}, err
	}
	match, err := s.resolve(ctx, c, nameKey)
	if err != nil {
		return domain.IngestResult{}, err
	}
	if match != nil {
		return domain.IngestResult{TargetID: match.TargetID, Confidence: match.Confidence}, nil
	}

	p := &domain.Place{
		TargetMeta: domain.TargetMeta{
			Category: normalize.Key(category),
			CityKey:  normalize.Key(c.City),
		},
		Name:        strings.TrimSpace(c.Name),
		City:        strings.TrimSpace(c.City),
		District:    strings.TrimSpace(c.District),
		NameKey:     nameKey,
		DistrictKey: normalize.Key(c.District),
	}
	if err = s.targetRepo.StorePlace(ctx, p); err != nil {
		return domain.IngestResult{}, err
	}
	logrus.WithFields(logrus.Fields{
		"target_id": p.ID,
		"name_key":  p.NameKey,
		"city_key":  p.CityKey,
	}).Info("place created")
	return domain.IngestResult{TargetID: p.ID, Created: true}, nil
}
