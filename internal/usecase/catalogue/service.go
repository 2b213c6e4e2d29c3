package catalogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Guyuepp/placevote/domain"
	"github.com/Guyuepp/placevote/internal/normalize"
)

type Service struct {
	targetRepo domain.TargetRepository
	validate   *validator.Validate
}

var _ domain.CatalogueUsecase = (*Service)(nil)

// NewService will create a new catalogue service object
func NewService(t domain.TargetRepository) *Service {
	return &Service{
		targetRepo: t,
		validate:   validator.New(),
	}
}

func (s *Service) CreateCollection(ctx context.Context, in domain.NewCollection) (domain.Collection, error) {
	if err := s.validate.Struct(in); err != nil {
		return domain.Collection{}, fmt.Errorf("%w: %v", domain.ErrBadParamInput, err)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Collection{}, fmt.Errorf("%w: empty title", domain.ErrBadParamInput)
	}

	c := domain.Collection{
		TargetMeta: domain.TargetMeta{
			Category: normalize.Key(in.Category),
			CityKey:  normalize.Key(in.City),
		},
		Title: title,
		City:  strings.TrimSpace(in.City),
	}
	if err := s.targetRepo.StoreCollection(ctx, &c); err != nil {
		return domain.Collection{}, err
	}
	return c, nil
}
