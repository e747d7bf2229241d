package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tonton108/plc-dashboard/internal/domain"
	"github.com/tonton108/plc-dashboard/internal/models"
	"github.com/tonton108/plc-dashboard/internal/repository"
)

// 查询周期与对应的时间窗口
var rawPeriods = map[string]time.Duration{
	"1h":  time.Hour,
	"6h":  6 * time.Hour,
	"24h": 24 * time.Hour,
}

var dailyPeriods = map[string]int{
	"7d":  7,
	"30d": 30,
}

// QueryService 分辨率路由查询
// 短窗口（1h/6h/24h）读原始日志，长窗口（7d/30d）读日次集计
type QueryService struct {
	equipmentRepo   repository.EquipmentRepository
	measurementRepo repository.MeasurementRepository
	summaryRepo     repository.SummaryRepository
	logger          *zap.Logger

	now func() time.Time
}

// NewQueryService 创建查询服务
func NewQueryService(
	equipmentRepo repository.EquipmentRepository,
	measurementRepo repository.MeasurementRepository,
	summaryRepo repository.SummaryRepository,
	logger *zap.Logger,
) *QueryService {
	return &QueryService{
		equipmentRepo:   equipmentRepo,
		measurementRepo: measurementRepo,
		summaryRepo:     summaryRepo,
		logger:          logger,
		now:             time.Now,
	}
}

// Query 按周期返回相应分辨率的遥测数据
// 无匹配数据返回空列表（data_source 照常填写），不是错误
func (s *QueryService) Query(ctx context.Context, equipmentID, period string, limit int) (*models.QueryResponse, error) {
	equipment, err := s.equipmentRepo.Resolve(ctx, equipmentID)
	if err != nil {
		return nil, err
	}

	if window, ok := rawPeriods[period]; ok {
		return s.queryRaw(ctx, equipment, period, window, limit)
	}
	if days, ok := dailyPeriods[period]; ok {
		return s.queryDaily(ctx, equipment, period, days)
	}
	return nil, fmt.Errorf("unsupported period %q: %w", period, domain.ErrInvalidPeriod)
}

func (s *QueryService) queryRaw(ctx context.Context, equipment *domain.Equipment, period string, window time.Duration, limit int) (*models.QueryResponse, error) {
	to := s.now().UTC()
	from := to.Add(-window)

	logs, err := s.measurementRepo.ListRange(ctx, equipment.ID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query raw logs: %w", err)
	}

	entries := make([]models.LogEntry, 0, len(logs))
	for _, m := range logs {
		entries = append(entries, models.LogEntry{
			Timestamp:       m.Timestamp.UTC().Format(time.RFC3339),
			ProductionCount: m.ProductionCount,
			Current:         m.Current,
			Temperature:     m.Temperature,
			Pressure:        m.Pressure,
			CycleTime:       m.CycleTime,
			ErrorCode:       m.ErrorCode,
		})
	}

	return &models.QueryResponse{
		EquipmentID:  equipment.EquipmentID,
		Period:       period,
		DataSource:   models.DataSourceRawLogs,
		Data:         entries,
		TotalRecords: len(entries),
	}, nil
}

func (s *QueryService) queryDaily(ctx context.Context, equipment *domain.Equipment, period string, days int) (*models.QueryResponse, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := today.AddDate(0, 0, -days)

	summaries, err := s.summaryRepo.ListDailyRange(ctx, equipment.ID, from, today)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily summaries: %w", err)
	}

	entries := make([]models.DailySummaryEntry, 0, len(summaries))
	for _, d := range summaries {
		entries = append(entries, models.DailySummaryEntry{
			Date:                 d.Date.Format("2006-01-02"),
			ProductionCountTotal: d.ProductionCountTotal,
			CurrentAvg:           d.CurrentAvg,
			CurrentMax:           d.CurrentMax,
			CurrentMin:           d.CurrentMin,
			TemperatureAvg:       d.TemperatureAvg,
			TemperatureMax:       d.TemperatureMax,
			TemperatureMin:       d.TemperatureMin,
			PressureAvg:          d.PressureAvg,
			PressureMax:          d.PressureMax,
			PressureMin:          d.PressureMin,
			CycleTimeAvg:         d.CycleTimeAvg,
			ErrorCount:           d.ErrorCount,
			DataCount:            d.DataCount,
		})
	}

	return &models.QueryResponse{
		EquipmentID:  equipment.EquipmentID,
		Period:       period,
		DataSource:   models.DataSourceDailySummaries,
		Data:         entries,
		TotalRecords: len(entries),
	}, nil
}

// MonthlySummaries 查询指定年份的月次集计（独立于周期路由的显式查询）
func (s *QueryService) MonthlySummaries(ctx context.Context, equipmentID string, year int) ([]models.MonthlySummaryEntry, error) {
	equipment, err := s.equipmentRepo.Resolve(ctx, equipmentID)
	if err != nil {
		return nil, err
	}

	summaries, err := s.summaryRepo.ListMonthlyByYear(ctx, equipment.ID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly summaries: %w", err)
	}

	entries := make([]models.MonthlySummaryEntry, 0, len(summaries))
	for _, m := range summaries {
		entries = append(entries, models.MonthlySummaryEntry{
			Year:                 m.Year,
			Month:                m.Month,
			ProductionCountTotal: m.ProductionCountTotal,
			CurrentAvg:           m.CurrentAvg,
			ErrorCountTotal:      m.ErrorCountTotal,
			OperationalDays:      m.OperationalDays,
		})
	}
	return entries, nil
}
