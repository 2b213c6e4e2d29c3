package model

import (
	"time"

	"github.com/Guyuepp/placevote/domain"
)

type Place struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Name        string    `gorm:"type:varchar(255);not null"`
	NameKey     string    `gorm:"column:name_key;type:varchar(255);not null;index:idx_place_name_key"`
	City        string    `gorm:"type:varchar(128);not null;default:''"`
	CityKey     string    `gorm:"column:city_key;type:varchar(128);not null;default:'';index:idx_place_city_key"`
	District    string    `gorm:"type:varchar(128);not null;default:''"`
	DistrictKey string    `gorm:"column:district_key;type:varchar(128);not null;default:'';index:idx_place_district_key"`
	Category    string    `gorm:"type:varchar(64);not null;default:'';index:idx_place_category"`
	VoteCount   int64     `gorm:"column:vote_count;not null;default:0"`
	VoteScore   int64     `gorm:"column:vote_score;not null;default:0"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (Place) TableName() string {
	return "places"
}

func (m *Place) ToDomain() domain.Place {
	return domain.Place{
		TargetMeta: domain.TargetMeta{
			ID:       m.ID,
			Category: m.Category,
			CityKey:  m.CityKey,
			Aggregate: domain.Aggregate{
				VoteCount: m.VoteCount,
				VoteScore: domain.Score(m.VoteScore),
			},
			CreatedAt: m.CreatedAt,
		},
		Name:        m.Name,
		City:        m.City,
		District:    m.District,
		NameKey:     m.NameKey,
		DistrictKey: m.DistrictKey,
	}
}

func NewPlaceFromDomain(p *domain.Place) *Place {
	return &Place{
		ID:          p.ID,
		Name:        p.Name,
		NameKey:     p.NameKey,
		City:        p.City,
		CityKey:     p.CityKey,
		District:    p.District,
		DistrictKey: p.DistrictKey,
		Category:    p.Category,
		VoteCount:   p.VoteCount,
		VoteScore:   int64(p.VoteScore),
		CreatedAt:   p.CreatedAt,
	}
}
