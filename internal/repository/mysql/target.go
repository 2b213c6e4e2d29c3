package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Guyuepp/placevote/domain"
	"github.com/Guyuepp/placevote/internal/repository/mysql/model"
)

type targetRepository struct {
	DB *gorm.DB
}

var _ domain.TargetRepository = (*targetRepository)(nil)

// NewTargetRepository will create an implementation of domain.TargetRepository
func NewTargetRepository(db *gorm.DB) *targetRepository {
	return &targetRepository{db}
}

type aggregateRow struct {
	VoteCount int64
	VoteScore int64
}

func (r aggregateRow) toDomain() domain.Aggregate {
	return domain.Aggregate{VoteCount: r.VoteCount, VoteScore: domain.Score(r.VoteScore)}
}

// tableFor maps a target kind to its table.
func tableFor(kind domain.TargetKind) (string, error) {
	switch kind {
	case domain.KindPlace:
		return model.Place{}.TableName(), nil
	case domain.KindCollection:
		return model.Collection{}.TableName(), nil
	default:
		return "", domain.ErrInvalidTargetKind
	}
}

func targetExists(tx *gorm.DB, ref domain.TargetRef) (bool, error) {
	table, err := tableFor(ref.Kind)
	if err != nil {
		return false, err
	}
	var n int64
	err = tx.Table(table).Where("id = ?", ref.ID).Count(&n).Error
	return n > 0, err
}

func readAggregate(tx *gorm.DB, ref domain.TargetRef) (domain.Aggregate, error) {
	table, err := tableFor(ref.Kind)
	if err != nil {
		return domain.Aggregate{}, err
	}
	var rows []aggregateRow
	err = tx.Table(table).
		Select("vote_count", "vote_score").
		Where("id = ?", ref.ID).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return domain.Aggregate{}, err
	}
	if len(rows) == 0 {
		return domain.Aggregate{}, domain.ErrTargetNotFound
	}
	return rows[0].toDomain(), nil
}

// applyDelta is the only write path of the aggregate columns on the vote
// path: a relative increment, never a read-modify-write.
func applyDelta(tx *gorm.DB, ref domain.TargetRef, d domain.Delta) error {
	table, err := tableFor(ref.Kind)
	if err != nil {
		return err
	}
	result := tx.Table(table).
		Where("id = ?", ref.ID).
		UpdateColumns(map[string]any{
			"vote_count": gorm.Expr("vote_count + ?", d.Count),
			"vote_score": gorm.Expr("vote_score + ?", int64(d.Score)),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrTargetNotFound
	}
	return nil
}

func (m *targetRepository) Exists(ctx context.Context, ref domain.TargetRef) (bool, error) {
	return targetExists(m.DB.WithContext(ctx), ref)
}

func (m *targetRepository) GetAggregate(ctx context.Context, ref domain.TargetRef) (domain.Aggregate, error) {
	return readAggregate(m.DB.WithContext(ctx), ref)
}

func (m *targetRepository) StorePlace(ctx context.Context, p *domain.Place) error {
	placeModel := model.NewPlaceFromDomain(p)
	if err := m.DB.WithContext(ctx).Create(placeModel).Error; err != nil {
		return err
	}
	p.ID = placeModel.ID
	p.CreatedAt = placeModel.CreatedAt
	return nil
}

func (m *targetRepository) StoreCollection(ctx context.Context, c *domain.Collection) error {
	collectionModel := model.NewCollectionFromDomain(c)
	if err := m.DB.WithContext(ctx).Create(collectionModel).Error; err != nil {
		return err
	}
	c.ID = collectionModel.ID
	c.CreatedAt = collectionModel.CreatedAt
	return nil
}

// rankOrder is the total leaderboard order; id is the final tie-break.
func rankOrder(db *gorm.DB) *gorm.DB {
	return db.Order("vote_score DESC").
		Order("vote_count DESC").
		Order("created_at ASC").
		Order("id ASC")
}

func (m *targetRepository) FetchRanked(ctx context.Context, kind domain.TargetKind, filter domain.Filter, limit int) ([]domain.VotableTarget, error) {
	db := m.DB.WithContext(ctx)
	if filter.Category != "" {
		db = db.Where("category = ?", filter.Category)
	}

	switch kind {
	case domain.KindPlace:
		if filter.Location != "" {
			db = db.Where("(city_key = ? OR district_key = ?)", filter.Location, filter.Location)
		}
		var places []model.Place
		if err := rankOrder(db).Limit(limit).Find(&places).Error; err != nil {
			return nil, err
		}
		res := make([]domain.VotableTarget, len(places))
		for i := range places {
			res[i] = places[i].ToDomain()
		}
		return res, nil

	case domain.KindCollection:
		if filter.Location != "" {
			db = db.Where("city_key = ?", filter.Location)
		}
		var collections []model.Collection
		if err := rankOrder(db).Limit(limit).Find(&collections).Error; err != nil {
			return nil, err
		}
		res := make([]domain.VotableTarget, len(collections))
		for i := range collections {
			res[i] = collections[i].ToDomain()
		}
		return res, nil

	default:
		return nil, domain.ErrInvalidTargetKind
	}
}

func (m *targetRepository) FetchIDs(ctx context.Context, kind domain.TargetKind, cursor int64, limit int) (ids []int64, err error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	err = m.DB.WithContext(ctx).
		Table(table).
		Where("id > ?", cursor).
		Order("id").
		Limit(limit).
		Pluck("id", &ids).Error
	return
}

func (m *targetRepository) Recount(ctx context.Context, ref domain.TargetRef) (stored, actual domain.Aggregate, err error) {
	table, err := tableFor(ref.Kind)
	if err != nil {
		return
	}

	err = m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Holding the target row makes concurrent deltas wait until the
		// recount commits, so a delta is either counted or applied after.
		var rows []aggregateRow
		if err := tx.Table(table).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("vote_count", "vote_score").
			Where("id = ?", ref.ID).
			Limit(1).
			Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return domain.ErrTargetNotFound
		}
		stored = rows[0].toDomain()

		var counted aggregateRow
		if err := tx.Model(&model.Vote{}).
			Select("COUNT(*) AS vote_count, COALESCE(SUM(direction * weight), 0) AS vote_score").
			Where("target_kind = ? AND target_id = ?", string(ref.Kind), ref.ID).
			Scan(&counted).Error; err != nil {
			return err
		}
		actual = counted.toDomain()

		if stored.Equal(actual) {
			return nil
		}
		return tx.Table(table).
			Where("id = ?", ref.ID).
			UpdateColumns(map[string]any{
				"vote_count": actual.VoteCount,
				"vote_score": int64(actual.VoteScore),
			}).Error
	})
	return
}
