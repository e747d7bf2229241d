package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/tonton108/plc-dashboard/internal/config"
	"github.com/tonton108/plc-dashboard/internal/models"
	"github.com/tonton108/plc-dashboard/internal/mqtt"
	"github.com/tonton108/plc-dashboard/internal/service"
)

// MQTTConsumer 遥测数据的 MQTT 接入通道
// 与 HTTP 摄取共用同一个 IngestService，消息体也是同一份 TelemetryInput JSON
type MQTTConsumer struct {
	config     *config.Config
	mqttClient *mqtt.Client
	ingest     *service.IngestService
	logger     *zap.Logger
}

// NewMQTTConsumer 创建MQTT消费者
func NewMQTTConsumer(
	cfg *config.Config,
	mqttClient *mqtt.Client,
	ingest *service.IngestService,
	logger *zap.Logger,
) *MQTTConsumer {
	return &MQTTConsumer{
		config:     cfg,
		mqttClient: mqttClient,
		ingest:     ingest,
		logger:     logger,
	}
}

// Start 订阅遥测主题，阻塞到 ctx 取消
func (c *MQTTConsumer) Start(ctx context.Context) error {
	topic := c.config.MQTT.Topic
	if topic == "" {
		return fmt.Errorf("MQTT telemetry topic not configured")
	}

	if err := c.mqttClient.Subscribe(topic, c.config.MQTT.QoS, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to telemetry topic: %w", err)
	}

	c.logger.Info("MQTT consumer started",
		zap.String("topic", topic),
	)

	<-ctx.Done()
	return nil
}

// Stop 停止消费者
func (c *MQTTConsumer) Stop() {
	topic := c.config.MQTT.Topic
	if topic != "" {
		if err := c.mqttClient.Unsubscribe(topic); err != nil {
			c.logger.Error("Failed to unsubscribe", zap.Error(err))
		}
	}
	c.logger.Info("MQTT consumer stopped")
}

// handleMessage 处理一条MQTT消息；解析或摄取失败只记日志，不中断订阅
func (c *MQTTConsumer) handleMessage(topic string, payload []byte) error {
	var in models.TelemetryInput
	if err := json.Unmarshal(payload, &in); err != nil {
		return fmt.Errorf("failed to unmarshal telemetry message: %w", err)
	}
	if in.EquipmentID == "" {
		return fmt.Errorf("telemetry message missing equipment_id")
	}

	if _, err := c.ingest.Ingest(context.Background(), &in); err != nil {
		return fmt.Errorf("failed to ingest telemetry from MQTT: %w", err)
	}

	c.logger.Debug("Ingested telemetry from MQTT",
		zap.String("topic", topic),
		zap.String("equipment_id", in.EquipmentID),
	)
	return nil
}
