package model

import (
	"time"

	"github.com/Guyuepp/placevote/domain"
)

type Collection struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Title     string    `gorm:"type:varchar(255);not null"`
	City      string    `gorm:"type:varchar(128);not null;default:''"`
	CityKey   string    `gorm:"column:city_key;type:varchar(128);not null;default:'';index:idx_collection_city_key"`
	Category  string    `gorm:"type:varchar(64);not null;default:'';index:idx_collection_category"`
	VoteCount int64     `gorm:"column:vote_count;not null;default:0"`
	VoteScore int64     `gorm:"column:vote_score;not null;default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Collection) TableName() string {
	return "collections"
}

func (m *Collection) ToDomain() domain.Collection {
	return domain.Collection{
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
		Title: m.Title,
		City:  m.City,
	}
}

func NewCollectionFromDomain(c *domain.Collection) *Collection {
	return &Collection{
		ID:        c.ID,
		Title:     c.Title,
		City:      c.City,
		CityKey:   c.CityKey,
		Category:  c.Category,
		VoteCount: c.VoteCount,
		VoteScore: int64(c.VoteScore),
		CreatedAt: c.CreatedAt,
	}
}
