package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	latestKeyPrefix = "plc:equipment:"
	latestKeySuffix = ":latest"
)

// LatestCache 每台设备最新一条遥测数据的 Redis 缓存
// 与广播同为 best-effort 副作用：写入失败不影响摄取结果
type LatestCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLatestCache 创建最新数据缓存；ttl <= 0 表示不过期
func NewLatestCache(client *redis.Client, ttl time.Duration) *LatestCache {
	return &LatestCache{client: client, ttl: ttl}
}

func latestKey(equipmentID string) string {
	return latestKeyPrefix + equipmentID + latestKeySuffix
}

// Set 写入设备的最新遥测数据
func (c *LatestCache) Set(ctx context.Context, equipmentID string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal latest payload: %w", err)
	}

	if err := c.client.Set(ctx, latestKey(equipmentID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set latest cache: %w", err)
	}

	return nil
}

// Get 读取设备的最新遥测数据；无缓存时返回 redis.Nil
func (c *LatestCache) Get(ctx context.Context, equipmentID string) (json.RawMessage, error) {
	data, err := c.client.Get(ctx, latestKey(equipmentID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get latest cache: %w", err)
	}
	return json.RawMessage(data), nil
}
