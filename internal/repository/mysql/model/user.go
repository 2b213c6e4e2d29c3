package model

import (
	"time"

	"github.com/Guyuepp/placevote/domain"
)

// User mirrors the columns of the identity provider's user table that
// vote weighting depends on.
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

func (m *User) ToDomain() domain.User {
	return domain.User{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
	}
}
