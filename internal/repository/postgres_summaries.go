package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tonton108/plc-dashboard/internal/domain"
)

// PostgresSummaryRepository 日次/月次集计Repository实现
type PostgresSummaryRepository struct {
	db *sql.DB
}

// NewPostgresSummaryRepository 创建集计Repository
func NewPostgresSummaryRepository(db *sql.DB) *PostgresSummaryRepository {
	return &PostgresSummaryRepository{db: db}
}

// 确保实现了接口
var _ SummaryRepository = (*PostgresSummaryRepository)(nil)

// ReplaceDaily 以替换语义写入日次集计
// 同一事务内先删除旧行再插入，重跑不会产生唯一约束冲突
func (r *PostgresSummaryRepository) ReplaceDaily(ctx context.Context, s *domain.DailySummary) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM daily_log_summaries WHERE equipment_id = $1 AND date = $2`,
		s.EquipmentID, s.Date,
	); err != nil {
		return fmt.Errorf("failed to delete existing daily summary: %w", err)
	}

	insert := `
		INSERT INTO daily_log_summaries (
			equipment_id,
			date,
			production_count_total,
			current_avg,
			current_max,
			current_min,
			temperature_avg,
			temperature_max,
			temperature_min,
			pressure_avg,
			pressure_max,
			pressure_min,
			cycle_time_avg,
			error_count,
			data_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	if err := tx.QueryRowContext(ctx, insert,
		s.EquipmentID,
		s.Date,
		s.ProductionCountTotal,
		s.CurrentAvg,
		s.CurrentMax,
		s.CurrentMin,
		s.TemperatureAvg,
		s.TemperatureMax,
		s.TemperatureMin,
		s.PressureAvg,
		s.PressureMax,
		s.PressureMin,
		s.CycleTimeAvg,
		s.ErrorCount,
		s.DataCount,
	).Scan(&s.ID); err != nil {
		return fmt.Errorf("failed to insert daily summary: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit daily summary: %w", err)
	}
	return nil
}

// ReplaceMonthly 以替换语义写入月次集计
func (r *PostgresSummaryRepository) ReplaceMonthly(ctx context.Context, s *domain.MonthlySummary) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM monthly_log_summaries WHERE equipment_id = $1 AND year = $2 AND month = $3`,
		s.EquipmentID, s.Year, s.Month,
	); err != nil {
		return fmt.Errorf("failed to delete existing monthly summary: %w", err)
	}

	insert := `
		INSERT INTO monthly_log_summaries (
			equipment_id,
			year,
			month,
			production_count_total,
			current_avg,
			error_count_total,
			operational_days
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	if err := tx.QueryRowContext(ctx, insert,
		s.EquipmentID,
		s.Year,
		s.Month,
		s.ProductionCountTotal,
		s.CurrentAvg,
		s.ErrorCountTotal,
		s.OperationalDays,
	).Scan(&s.ID); err != nil {
		return fmt.Errorf("failed to insert monthly summary: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit monthly summary: %w", err)
	}
	return nil
}

const dailySummaryColumns = `
	id,
	equipment_id,
	date,
	production_count_total,
	current_avg,
	current_max,
	current_min,
	temperature_avg,
	temperature_max,
	temperature_min,
	pressure_avg,
	pressure_max,
	pressure_min,
	cycle_time_avg,
	error_count,
	data_count
`

func scanDailySummary(rows *sql.Rows) (*domain.DailySummary, error) {
	var s domain.DailySummary
	if err := rows.Scan(
		&s.ID,
		&s.EquipmentID,
		&s.Date,
		&s.ProductionCountTotal,
		&s.CurrentAvg,
		&s.CurrentMax,
		&s.CurrentMin,
		&s.TemperatureAvg,
		&s.TemperatureMax,
		&s.TemperatureMin,
		&s.PressureAvg,
		&s.PressureMax,
		&s.PressureMin,
		&s.CycleTimeAvg,
		&s.ErrorCount,
		&s.DataCount,
	); err != nil {
		return nil, fmt.Errorf("failed to scan daily summary: %w", err)
	}
	return &s, nil
}

// ListDailyRange 查询 [from, to] 日期区间的日次集计，按 date 降序
func (r *PostgresSummaryRepository) ListDailyRange(ctx context.Context, equipmentKey int64, from, to time.Time) ([]*domain.DailySummary, error) {
	query := `
		SELECT ` + dailySummaryColumns + `
		FROM daily_log_summaries
		WHERE equipment_id = $1
		  AND date >= $2
		  AND date <= $3
		ORDER BY date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, equipmentKey, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*domain.DailySummary
	for rows.Next() {
		s, err := scanDailySummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily summaries: %w", err)
	}

	return summaries, nil
}

// ListDailyForMonth 查询指定月份的日次集计，按 date 升序
func (r *PostgresSummaryRepository) ListDailyForMonth(ctx context.Context, equipmentKey int64, year, month int) ([]*domain.DailySummary, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	query := `
		SELECT ` + dailySummaryColumns + `
		FROM daily_log_summaries
		WHERE equipment_id = $1
		  AND date >= $2
		  AND date < $3
		ORDER BY date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, equipmentKey, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily summaries for month: %w", err)
	}
	defer rows.Close()

	var summaries []*domain.DailySummary
	for rows.Next() {
		s, err := scanDailySummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily summaries: %w", err)
	}

	return summaries, nil
}

// ListMonthlyByYear 查询指定年份的月次集计，按 month 升序
func (r *PostgresSummaryRepository) ListMonthlyByYear(ctx context.Context, equipmentKey int64, year int) ([]*domain.MonthlySummary, error) {
	query := `
		SELECT
			id,
			equipment_id,
			year,
			month,
			production_count_total,
			current_avg,
			error_count_total,
			operational_days
		FROM monthly_log_summaries
		WHERE equipment_id = $1
		  AND year = $2
		ORDER BY month ASC
	`

	rows, err := r.db.QueryContext(ctx, query, equipmentKey, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*domain.MonthlySummary
	for rows.Next() {
		var s domain.MonthlySummary
		if err := rows.Scan(
			&s.ID,
			&s.EquipmentID,
			&s.Year,
			&s.Month,
			&s.ProductionCountTotal,
			&s.CurrentAvg,
			&s.ErrorCountTotal,
			&s.OperationalDays,
		); err != nil {
			return nil, fmt.Errorf("failed to scan monthly summary: %w", err)
		}
		summaries = append(summaries, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate monthly summaries: %w", err)
	}

	return summaries, nil
}

// CountDaily 统计日次集计行数
func (r *PostgresSummaryRepository) CountDaily(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM daily_log_summaries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count daily summaries: %w", err)
	}
	return count, nil
}

// CountMonthly 统计月次集计行数
func (r *PostgresSummaryRepository) CountMonthly(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM monthly_log_summaries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count monthly summaries: %w", err)
	}
	return count, nil
}
