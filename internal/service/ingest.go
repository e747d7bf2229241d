package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tonton108/plc-dashboard/internal/broadcast"
	"github.com/tonton108/plc-dashboard/internal/domain"
	"github.com/tonton108/plc-dashboard/internal/models"
	"github.com/tonton108/plc-dashboard/internal/repository"
)

// IngestService 遥测摄取与广播
// 副作用顺序固定为先持久化后广播：订阅方不会看到未落库的记录
type IngestService struct {
	equipmentRepo   repository.EquipmentRepository
	measurementRepo repository.MeasurementRepository
	broadcaster     broadcast.Broadcaster
	latestCache     *broadcast.LatestCache
	logger          *zap.Logger
}

// NewIngestService 创建摄取服务；latestCache 可为 nil（禁用最新数据缓存）
func NewIngestService(
	equipmentRepo repository.EquipmentRepository,
	measurementRepo repository.MeasurementRepository,
	broadcaster broadcast.Broadcaster,
	latestCache *broadcast.LatestCache,
	logger *zap.Logger,
) *IngestService {
	return &IngestService{
		equipmentRepo:   equipmentRepo,
		measurementRepo: measurementRepo,
		broadcaster:     broadcaster,
		latestCache:     latestCache,
		logger:          logger,
	}
}

// Ingest 处理一条入站遥测数据
// 设备未登录返回 domain.ErrEquipmentNotFound；时间戳不可解析返回 domain.ErrInvalidPayload
func (s *IngestService) Ingest(ctx context.Context, in *models.TelemetryInput) (*domain.Measurement, error) {
	equipment, err := s.equipmentRepo.Resolve(ctx, in.EquipmentID)
	if err != nil {
		return nil, err
	}

	timestamp, err := parseTimestamp(in.Timestamp)
	if err != nil {
		return nil, err
	}

	m := &domain.Measurement{
		EquipmentID:     equipment.ID,
		Timestamp:       timestamp,
		ProductionCount: in.ProductionCount,
		Current:         in.Current,
		Temperature:     in.Temperature,
		Pressure:        in.Pressure,
		CycleTime:       in.CycleTime,
		ErrorCode:       in.ErrorCode,
	}

	id, err := s.measurementRepo.Insert(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("failed to persist measurement: %w", err)
	}
	m.ID = id

	// 持久化成功后广播；广播与缓存为 best-effort，失败只记日志
	payload := models.NewBroadcastPayload(equipment.EquipmentID, m)
	s.publish(ctx, broadcast.TopicMonitoring, payload)
	s.publish(ctx, broadcast.EquipmentTopic(equipment.EquipmentID), payload)

	if s.latestCache != nil {
		if err := s.latestCache.Set(ctx, equipment.EquipmentID, payload); err != nil {
			s.logger.Warn("Failed to update latest cache",
				zap.String("equipment_id", equipment.EquipmentID),
				zap.Error(err),
			)
		}
	}

	return m, nil
}

func (s *IngestService) publish(ctx context.Context, topic string, payload *models.BroadcastPayload) {
	if err := s.broadcaster.Publish(ctx, topic, payload); err != nil {
		s.logger.Warn("Failed to broadcast measurement",
			zap.String("topic", topic),
			zap.String("equipment_id", payload.EquipmentID),
			zap.Error(err),
		)
	}
}

// parseTimestamp 解析 ISO-8601 时间戳；空串取当前时间
// 兼容无时区后缀的形式（按 UTC 处理，与上游采集端一致）
func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q: %w", value, domain.ErrInvalidPayload)
}
