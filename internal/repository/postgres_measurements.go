package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tonton108/plc-dashboard/internal/domain"
)

// PostgresMeasurementRepository 原始遥测记录Repository实现（logs 表）
type PostgresMeasurementRepository struct {
	db *sql.DB
}

// NewPostgresMeasurementRepository 创建遥测记录Repository
func NewPostgresMeasurementRepository(db *sql.DB) *PostgresMeasurementRepository {
	return &PostgresMeasurementRepository{db: db}
}

// 确保实现了接口
var _ MeasurementRepository = (*PostgresMeasurementRepository)(nil)

// Insert 插入一条遥测记录
func (r *PostgresMeasurementRepository) Insert(ctx context.Context, m *domain.Measurement) (int64, error) {
	query := `
		INSERT INTO logs (
			equipment_id,
			timestamp,
			production_count,
			current,
			temperature,
			pressure,
			cycle_time,
			error_code
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(
		ctx,
		query,
		m.EquipmentID,
		m.Timestamp,
		m.ProductionCount,
		m.Current,
		m.Temperature,
		m.Pressure,
		m.CycleTime,
		m.ErrorCode,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert log: %w", err)
	}

	return id, nil
}

// ListRange 查询 [from, to) 区间内的记录，按 timestamp 降序
func (r *PostgresMeasurementRepository) ListRange(ctx context.Context, equipmentKey int64, from, to time.Time, limit int) ([]*domain.Measurement, error) {
	query := `
		SELECT
			id,
			equipment_id,
			timestamp,
			production_count,
			current,
			temperature,
			pressure,
			cycle_time,
			error_code
		FROM logs
		WHERE equipment_id = $1
		  AND timestamp >= $2
		  AND timestamp < $3
		ORDER BY timestamp DESC
	`
	args := []interface{}{equipmentKey, from, to}
	if limit > 0 {
		query += ` LIMIT $4`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer rows.Close()

	var measurements []*domain.Measurement
	for rows.Next() {
		var m domain.Measurement
		if err := rows.Scan(
			&m.ID,
			&m.EquipmentID,
			&m.Timestamp,
			&m.ProductionCount,
			&m.Current,
			&m.Temperature,
			&m.Pressure,
			&m.CycleTime,
			&m.ErrorCode,
		); err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}
		measurements = append(measurements, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate logs: %w", err)
	}

	return measurements, nil
}

// DeleteBatchBefore 删除 timestamp 严格早于 cutoff 的最多 batchSize 条记录
// 每次调用是一个独立的原子批次；返回 0 表示没有剩余匹配记录
func (r *PostgresMeasurementRepository) DeleteBatchBefore(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	query := `
		DELETE FROM logs
		WHERE id IN (
			SELECT id FROM logs
			WHERE timestamp < $1
			ORDER BY timestamp ASC
			LIMIT $2
		)
	`

	result, err := r.db.ExecContext(ctx, query, cutoff, batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to delete log batch: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read deleted row count: %w", err)
	}

	return deleted, nil
}

// CountBefore 统计 timestamp 严格早于 cutoff 的记录数
func (r *PostgresMeasurementRepository) CountBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM logs WHERE timestamp < $1`, cutoff).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count old logs: %w", err)
	}
	return count, nil
}

// Count 统计全部记录数
func (r *PostgresMeasurementRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM logs`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count logs: %w", err)
	}
	return count, nil
}
