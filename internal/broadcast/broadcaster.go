package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// 广播主题
const (
	TopicMonitoring      = "monitoring"
	equipmentTopicPrefix = "equipment_"
)

// EquipmentTopic 按设备标识构造专属主题名
func EquipmentTopic(equipmentID string) string {
	return equipmentTopicPrefix + equipmentID
}

// Broadcaster 广播接口（摄取路径 best-effort 调用，失败只记日志）
type Broadcaster interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

// RedisBroadcaster 基于 Redis Pub/Sub 的广播实现
// 订阅方（前端网关等）通过 SUBSCRIBE monitoring / equipment_{id} 接收实时数据
type RedisBroadcaster struct {
	client *redis.Client
}

// NewRedisBroadcaster 创建广播器
func NewRedisBroadcaster(client *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{client: client}
}

var _ Broadcaster = (*RedisBroadcaster)(nil)

// Publish 序列化为 JSON 并发布到指定主题
func (b *RedisBroadcaster) Publish(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast payload: %w", err)
	}

	if err := b.client.Publish(ctx, topic, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	return nil
}
