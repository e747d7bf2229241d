package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tonton108/plc-dashboard/internal/domain"
	"github.com/tonton108/plc-dashboard/internal/repository"
)

// AggregationService 日次/月次汇总引擎
// 两个过程都是幂等的：同一周期重跑以替换语义覆盖旧集计
// 每台设备独立汇总、独立失败：一台失败不影响其他设备
type AggregationService struct {
	equipmentRepo   repository.EquipmentRepository
	measurementRepo repository.MeasurementRepository
	summaryRepo     repository.SummaryRepository
	logger          *zap.Logger
}

// NewAggregationService 创建汇总服务
func NewAggregationService(
	equipmentRepo repository.EquipmentRepository,
	measurementRepo repository.MeasurementRepository,
	summaryRepo repository.SummaryRepository,
	logger *zap.Logger,
) *AggregationService {
	return &AggregationService{
		equipmentRepo:   equipmentRepo,
		measurementRepo: measurementRepo,
		summaryRepo:     summaryRepo,
		logger:          logger,
	}
}

// RunDaily 为指定日期生成全部设备的日次集计，返回写入的集计行数
func (s *AggregationService) RunDaily(ctx context.Context, date time.Time) (int, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	equipments, err := s.equipmentRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list equipments: %w", err)
	}

	created := 0
	failed := 0
	for _, equipment := range equipments {
		if err := s.aggregateDailyForEquipment(ctx, equipment.ID, day); err != nil {
			if err == errNoData {
				continue
			}
			failed++
			s.logger.Error("Failed to aggregate daily summary",
				zap.String("equipment_id", equipment.EquipmentID),
				zap.Time("date", day),
				zap.Error(err),
			)
			continue
		}
		created++
	}

	s.logger.Info("Daily aggregation completed",
		zap.Time("date", day),
		zap.Int("created", created),
		zap.Int("failed", failed),
	)
	return created, nil
}

// errNoData 当日无原始记录，跳过该设备（不写空集计）
var errNoData = fmt.Errorf("no data for period")

func (s *AggregationService) aggregateDailyForEquipment(ctx context.Context, equipmentKey int64, day time.Time) error {
	from := day
	to := day.AddDate(0, 0, 1)

	logs, err := s.measurementRepo.ListRange(ctx, equipmentKey, from, to, 0)
	if err != nil {
		return fmt.Errorf("failed to load raw logs: %w", err)
	}
	if len(logs) == 0 {
		return errNoData
	}

	summary := computeDailySummary(equipmentKey, day, logs)
	if err := s.summaryRepo.ReplaceDaily(ctx, summary); err != nil {
		return fmt.Errorf("failed to replace daily summary: %w", err)
	}
	return nil
}

// computeDailySummary 从当日原始记录计算集计值
// production_count 为累计计数器，总量取 max 而不是 sum
func computeDailySummary(equipmentKey int64, day time.Time, logs []*domain.Measurement) *domain.DailySummary {
	summary := &domain.DailySummary{
		EquipmentID: equipmentKey,
		Date:        day,
		DataCount:   len(logs),
	}

	var currents, temperatures, pressures, cycleTimes floatSamples
	var productionMax *int64
	for _, log := range logs {
		currents.add(log.Current)
		temperatures.add(log.Temperature)
		pressures.add(log.Pressure)
		cycleTimes.add(log.CycleTime)

		if log.ProductionCount != nil {
			if productionMax == nil || *log.ProductionCount > *productionMax {
				v := *log.ProductionCount
				productionMax = &v
			}
		}
		if log.HasError() {
			summary.ErrorCount++
		}
	}

	summary.ProductionCountTotal = productionMax
	summary.CurrentAvg, summary.CurrentMax, summary.CurrentMin = currents.stats()
	summary.TemperatureAvg, summary.TemperatureMax, summary.TemperatureMin = temperatures.stats()
	summary.PressureAvg, summary.PressureMax, summary.PressureMin = pressures.stats()
	summary.CycleTimeAvg, _, _ = cycleTimes.stats()

	return summary
}

// RunMonthly 从日次集计生成指定月份的月次集计，返回写入的集计行数
func (s *AggregationService) RunMonthly(ctx context.Context, year, month int) (int, error) {
	equipments, err := s.equipmentRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list equipments: %w", err)
	}

	created := 0
	failed := 0
	for _, equipment := range equipments {
		if err := s.aggregateMonthlyForEquipment(ctx, equipment.ID, year, month); err != nil {
			if err == errNoData {
				continue
			}
			failed++
			s.logger.Error("Failed to aggregate monthly summary",
				zap.String("equipment_id", equipment.EquipmentID),
				zap.Int("year", year),
				zap.Int("month", month),
				zap.Error(err),
			)
			continue
		}
		created++
	}

	s.logger.Info("Monthly aggregation completed",
		zap.Int("year", year),
		zap.Int("month", month),
		zap.Int("created", created),
		zap.Int("failed", failed),
	)
	return created, nil
}

func (s *AggregationService) aggregateMonthlyForEquipment(ctx context.Context, equipmentKey int64, year, month int) error {
	dailies, err := s.summaryRepo.ListDailyForMonth(ctx, equipmentKey, year, month)
	if err != nil {
		return fmt.Errorf("failed to load daily summaries: %w", err)
	}
	if len(dailies) == 0 {
		return errNoData
	}

	summary := computeMonthlySummary(equipmentKey, year, month, dailies)
	if err := s.summaryRepo.ReplaceMonthly(ctx, summary); err != nil {
		return fmt.Errorf("failed to replace monthly summary: %w", err)
	}
	return nil
}

// computeMonthlySummary 从日次集计计算月次集计
// current_avg 取日次均值的均值（有意的近似，不回溯原始数据）
func computeMonthlySummary(equipmentKey int64, year, month int, dailies []*domain.DailySummary) *domain.MonthlySummary {
	summary := &domain.MonthlySummary{
		EquipmentID:     equipmentKey,
		Year:            year,
		Month:           month,
		OperationalDays: len(dailies),
	}

	var currentAvgs floatSamples
	var productionMax *int64
	for _, d := range dailies {
		currentAvgs.add(d.CurrentAvg)
		summary.ErrorCountTotal += d.ErrorCount
		if d.ProductionCountTotal != nil {
			if productionMax == nil || *d.ProductionCountTotal > *productionMax {
				v := *d.ProductionCountTotal
				productionMax = &v
			}
		}
	}

	summary.ProductionCountTotal = productionMax
	summary.CurrentAvg, _, _ = currentAvgs.stats()

	return summary
}

// floatSamples 非空样本的 avg/max/min 计算
type floatSamples struct {
	sum   float64
	max   float64
	min   float64
	count int
}

func (f *floatSamples) add(v *float64) {
	if v == nil {
		return
	}
	if f.count == 0 || *v > f.max {
		f.max = *v
	}
	if f.count == 0 || *v < f.min {
		f.min = *v
	}
	f.sum += *v
	f.count++
}

// stats 无样本时三个值都为 nil
func (f *floatSamples) stats() (avg, max, min *float64) {
	if f.count == 0 {
		return nil, nil, nil
	}
	a := f.sum / float64(f.count)
	mx := f.max
	mn := f.min
	return &a, &mx, &mn
}
