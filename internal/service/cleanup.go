package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tonton108/plc-dashboard/internal/repository"
)

// CleanupService 原始日志保留清理
// 按固定批次删除，每批一个事务；批次之间短暂停顿以限制数据库负载
type CleanupService struct {
	measurementRepo repository.MeasurementRepository
	batchSize       int
	batchPause      time.Duration
	logger          *zap.Logger

	now func() time.Time
}

// NewCleanupService 创建清理服务
func NewCleanupService(measurementRepo repository.MeasurementRepository, batchSize int, batchPause time.Duration, logger *zap.Logger) *CleanupService {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &CleanupService{
		measurementRepo: measurementRepo,
		batchSize:       batchSize,
		batchPause:      batchPause,
		logger:          logger,
		now:             time.Now,
	}
}

// Run 删除早于保留期限的原始日志，返回实际删除总数
// 某一批失败时中止后续批次，已提交批次保持删除状态，返回值报告"至少删除了 N 条"
func (s *CleanupService) Run(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := s.now().UTC().AddDate(0, 0, -retentionDays)

	s.logger.Info("Starting log cleanup",
		zap.Int("retention_days", retentionDays),
		zap.Time("cutoff", cutoff),
		zap.Int("batch_size", s.batchSize),
	)

	var total int64
	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}

		deleted, err := s.measurementRepo.DeleteBatchBefore(ctx, cutoff, s.batchSize)
		if err != nil {
			return total, fmt.Errorf("cleanup aborted after %d deletions: %w", total, err)
		}
		if deleted == 0 {
			break
		}

		total += deleted
		s.logger.Debug("Deleted log batch",
			zap.Int64("batch_deleted", deleted),
			zap.Int64("total_deleted", total),
		)

		// 还有剩余时在批次之间停顿
		if deleted == int64(s.batchSize) && s.batchPause > 0 {
			select {
			case <-ctx.Done():
				return total, ctx.Err()
			case <-time.After(s.batchPause):
			}
		}
	}

	s.logger.Info("Log cleanup completed",
		zap.Int64("total_deleted", total),
	)
	return total, nil
}

// EstimateBefore 统计当前符合删除条件的记录数（手动触发的预估值）
func (s *CleanupService) EstimateBefore(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := s.now().UTC().AddDate(0, 0, -retentionDays)
	return s.measurementRepo.CountBefore(ctx, cutoff)
}
