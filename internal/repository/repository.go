package repository

import (
	"context"
	"time"

	"github.com/tonton108/plc-dashboard/internal/domain"
)

// EquipmentRepository 设备目录访问接口（遥测管线只读）
type EquipmentRepository interface {
	// Resolve 按外部 equipment_id 解析设备；未找到返回 domain.ErrEquipmentNotFound
	Resolve(ctx context.Context, equipmentID string) (*domain.Equipment, error)
	// List 返回全部已知设备（集计循环的输入）
	List(ctx context.Context) ([]*domain.Equipment, error)
}

// MeasurementRepository 原始遥测记录访问接口（logs 表）
type MeasurementRepository interface {
	// Insert 插入一条记录，返回生成的主键
	Insert(ctx context.Context, m *domain.Measurement) (int64, error)
	// ListRange 查询 [from, to) 区间内的记录，按 timestamp 降序；limit <= 0 表示不限制
	ListRange(ctx context.Context, equipmentKey int64, from, to time.Time, limit int) ([]*domain.Measurement, error)
	// DeleteBatchBefore 删除 timestamp 严格早于 cutoff 的最多 batchSize 条记录（一个事务），返回删除行数
	DeleteBatchBefore(ctx context.Context, cutoff time.Time, batchSize int) (int64, error)
	// CountBefore 统计 timestamp 严格早于 cutoff 的记录数
	CountBefore(ctx context.Context, cutoff time.Time) (int64, error)
	// Count 统计全部记录数
	Count(ctx context.Context) (int64, error)
}

// SummaryRepository 日次/月次集计访问接口
type SummaryRepository interface {
	// ReplaceDaily 以替换语义写入日次集计（同一 (equipment, date) 先删后插，一个事务）
	ReplaceDaily(ctx context.Context, s *domain.DailySummary) error
	// ReplaceMonthly 以替换语义写入月次集计
	ReplaceMonthly(ctx context.Context, s *domain.MonthlySummary) error
	// ListDailyRange 查询 [from, to] 日期区间的日次集计，按 date 降序
	ListDailyRange(ctx context.Context, equipmentKey int64, from, to time.Time) ([]*domain.DailySummary, error)
	// ListDailyForMonth 查询指定月份的日次集计，按 date 升序（月次汇总的输入）
	ListDailyForMonth(ctx context.Context, equipmentKey int64, year, month int) ([]*domain.DailySummary, error)
	// ListMonthlyByYear 查询指定年份的月次集计，按 month 升序
	ListMonthlyByYear(ctx context.Context, equipmentKey int64, year int) ([]*domain.MonthlySummary, error)
	// CountDaily / CountMonthly 统计集计行数
	CountDaily(ctx context.Context) (int64, error)
	CountMonthly(ctx context.Context) (int64, error)
}
