package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Guyuepp/placevote/domain"
	"github.com/Guyuepp/placevote/internal/repository/mysql/model"
)

type voteRepository struct {
	DB *gorm.DB
}

var _ domain.VoteRepository = (*voteRepository)(nil)

// NewVoteRepository will create an implementation of domain.VoteRepository
func NewVoteRepository(db *gorm.DB) *voteRepository {
	return &voteRepository{db}
}

func (m *voteRepository) WithinTx(ctx context.Context, fn func(tx domain.LedgerTx) error) error {
	err := m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerTx{tx})
	})
	if isLockConflict(err) {
		return fmt.Errorf("%w: %v", domain.ErrDuplicateVote, err)
	}
	return err
}

func (m *voteRepository) GetVote(ctx context.Context, key domain.VoteKey) (domain.Vote, error) {
	return getVote(m.DB.WithContext(ctx), key)
}

func whereKey(db *gorm.DB, key domain.VoteKey) *gorm.DB {
	return db.Where("user_id = ? AND target_kind = ? AND target_id = ?", key.UserID, string(key.Target.Kind), key.Target.ID)
}

func getVote(db *gorm.DB, key domain.VoteKey) (domain.Vote, error) {
	var vote model.Vote
	err := whereKey(db, key).Take(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Vote{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Vote{}, err
	}
	return vote.ToDomain(), nil
}

// ledgerTx binds the ledger operations to one gorm transaction.
type ledgerTx struct {
	tx *gorm.DB
}

var _ domain.LedgerTx = (*ledgerTx)(nil)

func (l *ledgerTx) TargetExists(ref domain.TargetRef) (bool, error) {
	return targetExists(l.tx, ref)
}

func (l *ledgerTx) GetVote(key domain.VoteKey) (domain.Vote, error) {
	return getVote(l.tx.Clauses(clause.Locking{Strength: "UPDATE"}), key)
}

func (l *ledgerTx) InsertVote(v *domain.Vote) error {
	voteModel := model.NewVoteFromDomain(v)
	err := l.tx.Create(voteModel).Error
	if isDuplicateKey(err) {
		return domain.ErrDuplicateVote
	}
	if err != nil {
		return err
	}
	v.CreatedAt = voteModel.CreatedAt
	v.UpdatedAt = voteModel.UpdatedAt
	return nil
}

func (l *ledgerTx) UpdateDirection(key domain.VoteKey, d domain.Direction) error {
	result := whereKey(l.tx.Model(&model.Vote{}), key).Update("direction", int8(d))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (l *ledgerTx) DeleteVote(key domain.VoteKey) error {
	result := whereKey(l.tx, key).Delete(&model.Vote{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (l *ledgerTx) ApplyDelta(ref domain.TargetRef, d domain.Delta) error {
	return applyDelta(l.tx, ref, d)
}

func (l *ledgerTx) Aggregate(ref domain.TargetRef) (domain.Aggregate, error) {
	return readAggregate(l.tx, ref)
}
