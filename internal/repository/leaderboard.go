package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/Guyuepp/placevote/domain"
)

const rebuildTimeout = 10 * time.Second

// leaderboardRepository 协调层，协调缓存和数据库
type leaderboardRepository struct {
	cache         domain.LeaderboardCache
	ttl           time.Duration
	buildGroup    singleflight.Group
	mu            sync.Mutex
	rebuildingMap map[string]bool // keys being rebuilt in the background
}

var _ domain.LeaderboardRepository = (*leaderboardRepository)(nil)

// NewLeaderboardRepository 创建协调层repository
func NewLeaderboardRepository(cache domain.LeaderboardCache, ttl time.Duration) *leaderboardRepository {
	return &leaderboardRepository{
		cache:         cache,
		ttl:           ttl,
		rebuildingMap: make(map[string]bool),
	}
}

// Get 使用逻辑过期策略避免缓存击穿
func (r *leaderboardRepository) Get(ctx context.Context, q domain.LeaderboardQuery, build domain.LeaderboardBuilder) ([]domain.LeaderboardEntry, error) {
	entries, expired, err := r.cache.Get(ctx, q)
	if err == nil {
		if expired {
			go r.rebuild(q, build)
		}
		return entries, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		logrus.Warnf("leaderboard cache get error: %v", err)
	}

	// 缓存未命中，使用singleflight避免缓存击穿
	result, err, _ := r.buildGroup.Do(q.Key(), func() (interface{}, error) {
		built, err := build(ctx, q)
		if err != nil {
			return nil, err
		}
		if err := r.cache.Set(context.Background(), q, built, r.ttl); err != nil {
			logrus.Warnf("leaderboard cache set error: %v", err)
		}
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.LeaderboardEntry), nil
}

// rebuild refreshes one expired entry; concurrent requests for the same
// key are dropped while it runs.
func (r *leaderboardRepository) rebuild(q domain.LeaderboardQuery, build domain.LeaderboardBuilder) {
	key := q.Key()
	r.mu.Lock()
	if r.rebuildingMap[key] {
		r.mu.Unlock()
		return
	}
	r.rebuildingMap[key] = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.rebuildingMap, key)
		r.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), rebuildTimeout)
	defer cancel()

	entries, err := build(ctx, q)
	if err != nil {
		logrus.Errorf("rebuild leaderboard %s: %v", key, err)
		return
	}
	if err := r.cache.Set(ctx, q, entries, r.ttl); err != nil {
		logrus.Warnf("leaderboard cache set error: %v", err)
	}
}
