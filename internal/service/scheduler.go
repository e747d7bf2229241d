package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Scheduler 定时维护任务循环
// 每个周期依次执行：昨日日次汇总 →（每月1日）上月月次汇总 → 保留清理
// 单步失败只记日志，循环继续下一个周期
type Scheduler struct {
	aggregation   *AggregationService
	cleanup       *CleanupService
	interval      time.Duration
	retentionDays int
	logger        *zap.Logger

	now func() time.Time
}

// NewScheduler 创建调度器（显式构造、显式注入，便于短周期测试与手动触发）
func NewScheduler(
	aggregation *AggregationService,
	cleanup *CleanupService,
	interval time.Duration,
	retentionDays int,
	logger *zap.Logger,
) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{
		aggregation:   aggregation,
		cleanup:       cleanup,
		interval:      interval,
		retentionDays: retentionDays,
		logger:        logger,
		now:           time.Now,
	}
}

// Start 启动调度循环，阻塞到 ctx 取消
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Scheduler started",
		zap.Duration("interval", s.interval),
		zap.Int("retention_days", s.retentionDays),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return nil
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// runCycle 执行一个维护周期；每个周期分配独立 run_id 便于日志追踪
func (s *Scheduler) runCycle(ctx context.Context) {
	runID := uuid.New().String()
	log := s.logger.With(zap.String("run_id", runID))
	now := s.now().UTC()

	log.Info("Starting maintenance cycle", zap.Time("now", now))

	// 1. 昨日的日次汇总
	yesterday := now.AddDate(0, 0, -1)
	if _, err := s.aggregation.RunDaily(ctx, yesterday); err != nil {
		log.Error("Daily aggregation failed", zap.Error(err))
	}

	// 2. 每月1日补跑上月的月次汇总
	if now.Day() == 1 {
		prev := now.AddDate(0, -1, 0)
		if _, err := s.aggregation.RunMonthly(ctx, prev.Year(), int(prev.Month())); err != nil {
			log.Error("Monthly aggregation failed", zap.Error(err))
		}
	}

	// 3. 保留清理
	if _, err := s.cleanup.Run(ctx, s.retentionDays); err != nil {
		log.Error("Retention cleanup failed", zap.Error(err))
	}

	log.Info("Maintenance cycle completed")
}

// TriggerCleanup 手动触发清理（后台执行），返回当前符合条件的记录数预估
func (s *Scheduler) TriggerCleanup(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		days = s.retentionDays
	}

	estimate, err := s.cleanup.EstimateBefore(ctx, days)
	if err != nil {
		return 0, err
	}

	runID := uuid.New().String()
	go func() {
		log := s.logger.With(zap.String("run_id", runID), zap.String("trigger", "manual"))
		deleted, err := s.cleanup.Run(context.Background(), days)
		if err != nil {
			log.Error("Manual cleanup failed", zap.Int64("deleted", deleted), zap.Error(err))
			return
		}
		log.Info("Manual cleanup completed", zap.Int64("deleted", deleted))
	}()

	return estimate, nil
}

// TriggerDaily 手动触发指定日期的日次汇总（后台执行）
func (s *Scheduler) TriggerDaily(date time.Time) {
	runID := uuid.New().String()
	go func() {
		log := s.logger.With(zap.String("run_id", runID), zap.String("trigger", "manual"))
		created, err := s.aggregation.RunDaily(context.Background(), date)
		if err != nil {
			log.Error("Manual daily aggregation failed", zap.Error(err))
			return
		}
		log.Info("Manual daily aggregation completed", zap.Int("created", created))
	}()
}

// TriggerMonthly 手动触发指定月份的月次汇总（后台执行）
func (s *Scheduler) TriggerMonthly(year, month int) {
	runID := uuid.New().String()
	go func() {
		log := s.logger.With(zap.String("run_id", runID), zap.String("trigger", "manual"))
		created, err := s.aggregation.RunMonthly(context.Background(), year, month)
		if err != nil {
			log.Error("Manual monthly aggregation failed", zap.Error(err))
			return
		}
		log.Info("Manual monthly aggregation completed", zap.Int("created", created))
	}()
}
