package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Guyuepp/placevote/domain"
	"github.com/Guyuepp/placevote/internal/repository/mysql/model"
)

type placeRepository struct {
	DB *gorm.DB
}

var _ domain.PlaceRepository = (*placeRepository)(nil)

func NewPlaceRepository(db *gorm.DB) *placeRepository {
	return &placeRepository{db}
}

func scoped(db *gorm.DB, scope domain.PlaceScope) *gorm.DB {
	switch {
	case scope.DistrictKey != "":
		return db.Where("district_key = ?", scope.DistrictKey)
	case scope.CityKey != "":
		return db.Where("city_key = ?", scope.CityKey)
	default:
		return db
	}
}

func (m *placeRepository) FindExact(ctx context.Context, scope domain.PlaceScope, nameKey string) (domain.Place, error) {
	var place model.Place
	err := scoped(m.DB.WithContext(ctx), scope).
		Where("name_key = ?", nameKey).
		Order("id").
		Take(&place).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Place{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Place{}, err
	}
	return place.ToDomain(), nil
}

func (m *placeRepository) FetchInScope(ctx context.Context, scope domain.PlaceScope, cursor int64, limit int) ([]domain.Place, error) {
	var places []model.Place
	err := scoped(m.DB.WithContext(ctx), scope).
		Select("id", "name", "name_key", "city", "city_key", "district", "district_key", "category", "created_at").
		Where("id > ?", cursor).
		Order("id").
		Limit(limit).
		Find(&places).Error
	if err != nil {
		return nil, err
	}
	res := make([]domain.Place, len(places))
	for i := range places {
		res[i] = places[i].ToDomain()
	}
	return res, nil
}
