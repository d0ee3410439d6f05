package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ghuser/nurseryinventory/services/inventory/domain/models"
)

const (
	// DefaultStatsTTL bounds how long a cached statistics block may be served
	// after a write the invalidation missed.
	DefaultStatsTTL = 10 * time.Minute

	statsKeyPrefix = "nursery_stats"
)

var statsFields = []string{"total_beds", "occupied_beds", "free_beds", "total_plants", "historical_total"}

// StatsCache is the Redis read model of nursery statistics.
// Key format: "nursery_stats:{nurseryID}", stored as a hash.
type StatsCache struct {
	client *RedisClient
	ttl    time.Duration
}

// NewStatsCache creates a StatsCache backed by r. A non-positive ttl uses
// DefaultStatsTTL.
func NewStatsCache(r *RedisClient, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = DefaultStatsTTL
	}
	return &StatsCache{client: r, ttl: ttl}
}

// Get returns the cached statistics of a nursery.
// Returns redis.Nil when the key does not exist or has expired.
func (c *StatsCache) Get(ctx context.Context, nurseryID string) (*models.NurseryStatistics, error) {
	vals, err := c.client.Client().HGetAll(ctx, c.key(nurseryID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil
	}

	ints := make([]int, len(statsFields))
	for i, f := range statsFields {
		v, err := strconv.Atoi(vals[f])
		if err != nil {
			return nil, fmt.Errorf("cache parse %s: %w", f, err)
		}
		ints[i] = v
	}
	return &models.NurseryStatistics{
		TotalBeds:       ints[0],
		OccupiedBeds:    ints[1],
		FreeBeds:        ints[2],
		TotalPlants:     ints[3],
		HistoricalTotal: ints[4],
	}, nil
}

// setIfNewer writes the hash only when it does not already hold the given
// revision or a newer one, then refreshes the TTL.
// KEYS[1] key; ARGV[1] revision; ARGV[2] ttl in ms; ARGV[3..] field, value pairs.
var setIfNewer = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'revision')
if cur and tonumber(cur) >= tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'revision', ARGV[1], unpack(ARGV, 3))
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return 1
`)

// Set stores the statistics computed at revision. An entry already holding
// revision or a newer one is kept, so a slow writer cannot replace newer
// statistics with older ones. Reports whether the entry was written.
func (c *StatsCache) Set(ctx context.Context, nurseryID string, stats models.NurseryStatistics, revision int64) (bool, error) {
	args := []any{
		revision, c.ttl.Milliseconds(),
		"total_beds", stats.TotalBeds,
		"occupied_beds", stats.OccupiedBeds,
		"free_beds", stats.FreeBeds,
		"total_plants", stats.TotalPlants,
		"historical_total", stats.HistoricalTotal,
	}
	n, err := setIfNewer.Run(ctx, c.client.Client(), []string{c.key(nurseryID)}, args...).Int()
	if err != nil {
		return false, fmt.Errorf("cache set: %w", err)
	}
	return n == 1, nil
}

// Delete drops the cached statistics of a nursery.
func (c *StatsCache) Delete(ctx context.Context, nurseryID string) error {
	if err := c.client.Client().Del(ctx, c.key(nurseryID)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// key builds the Redis key: "nursery_stats:{nurseryID}"
func (c *StatsCache) key(nurseryID string) string {
	return fmt.Sprintf("%s:%s", statsKeyPrefix, nurseryID)
}
