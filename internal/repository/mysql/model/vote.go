package model

import (
	"time"

	"github.com/Guyuepp/placevote/domain"
)

// Vote is a ledger row. The composite unique index is the storage-level
// guarantee of one vote per user and target. Weight is stored in tenths,
// the unit of domain.Score.
type Vote struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	UserID     int64     `gorm:"column:user_id;not null;uniqueIndex:uq_vote_user_target,priority:1"`
	TargetKind string    `gorm:"column:target_kind;type:varchar(16);not null;uniqueIndex:uq_vote_user_target,priority:2;index:idx_vote_target,priority:1"`
	TargetID   int64     `gorm:"column:target_id;not null;uniqueIndex:uq_vote_user_target,priority:3;index:idx_vote_target,priority:2"`
	Direction  int8      `gorm:"not null;check:chk_vote_direction,direction IN (-1, 1)"`
	Weight     int64     `gorm:"not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (Vote) TableName() string {
	return "votes"
}

func (m *Vote) ToDomain() domain.Vote {
	return domain.Vote{
		UserID: m.UserID,
		Target: domain.TargetRef{
			Kind: domain.TargetKind(m.TargetKind),
			ID:   m.TargetID,
		},
		Direction: domain.Direction(m.Direction),
		Weight:    domain.Score(m.Weight).Float64(),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func NewVoteFromDomain(v *domain.Vote) *Vote {
	return &Vote{
		UserID:     v.UserID,
		TargetKind: string(v.Target.Kind),
		TargetID:   v.Target.ID,
		Direction:  int8(v.Direction),
		Weight:     int64(domain.ScoreOf(v.Weight)),
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
	}
}
