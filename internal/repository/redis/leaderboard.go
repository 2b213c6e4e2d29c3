package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Guyuepp/placevote/domain"
	"github.com/Guyuepp/placevote/internal/repository/cache"
)

const (
	KeyLeaderboard = "leaderboard:%s"

	// stale entries outlive their logical expiry by this factor so they can
	// be served while a rebuild runs.
	physicalTTLFactor = 10
)

type leaderboardCache struct {
	client *redis.Client
}

var _ domain.LeaderboardCache = (*leaderboardCache)(nil)

func NewLeaderboardCache(client *redis.Client) *leaderboardCache {
	return &leaderboardCache{
		client,
	}
}

func leaderboardKey(q domain.LeaderboardQuery) string {
	return fmt.Sprintf(KeyLeaderboard, q.Key())
}

func (c *leaderboardCache) Get(ctx context.Context, q domain.LeaderboardQuery) ([]domain.LeaderboardEntry, bool, error) {
	data, err := c.client.Get(ctx, leaderboardKey(q)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, domain.ErrCacheMiss
	} else if err != nil {
		return nil, false, err
	}

	var envelope cache.DataWithLogicalExpire[[]domain.LeaderboardEntry]
	if err = json.Unmarshal(data, &envelope); err != nil {
		return nil, false, err
	}
	return envelope.Data, envelope.IsLogicalExpired(), nil
}

func (c *leaderboardCache) Set(ctx context.Context, q domain.LeaderboardQuery, entries []domain.LeaderboardEntry, ttl time.Duration) error {
	data, err := json.Marshal(cache.NewDataWithLogicalExpire(entries, ttl))
	if err != nil {
		return err
	}
	return c.client.Set(ctx, leaderboardKey(q), data, ttl*physicalTTLFactor).Err()
}
