package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tonton108/plc-dashboard/internal/domain"
)

// PostgresEquipmentRepository 设备目录Repository实现
type PostgresEquipmentRepository struct {
	db *sql.DB
}

// NewPostgresEquipmentRepository 创建设备目录Repository
func NewPostgresEquipmentRepository(db *sql.DB) *PostgresEquipmentRepository {
	return &PostgresEquipmentRepository{db: db}
}

// 确保实现了接口
var _ EquipmentRepository = (*PostgresEquipmentRepository)(nil)

const equipmentColumns = `
	id,
	equipment_id,
	COALESCE(manufacturer, '') as manufacturer,
	COALESCE(series, '') as series,
	COALESCE(ip, '') as ip,
	COALESCE(mac_address, '') as mac_address,
	COALESCE(hostname, '') as hostname,
	COALESCE(port, 0) as port,
	COALESCE(interval, 60) as interval,
	COALESCE(status, '') as status,
	updated_at
`

// Resolve 按外部 equipment_id 解析设备
func (r *PostgresEquipmentRepository) Resolve(ctx context.Context, equipmentID string) (*domain.Equipment, error) {
	if equipmentID == "" {
		return nil, fmt.Errorf("equipment_id is required: %w", domain.ErrEquipmentNotFound)
	}

	query := `SELECT ` + equipmentColumns + ` FROM equipments WHERE equipment_id = $1`

	var e domain.Equipment
	err := r.db.QueryRowContext(ctx, query, equipmentID).Scan(
		&e.ID,
		&e.EquipmentID,
		&e.Manufacturer,
		&e.Series,
		&e.IP,
		&e.MACAddress,
		&e.Hostname,
		&e.Port,
		&e.Interval,
		&e.Status,
		&e.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("equipment %s: %w", equipmentID, domain.ErrEquipmentNotFound)
		}
		return nil, fmt.Errorf("failed to resolve equipment: %w", err)
	}

	return &e, nil
}

// List 返回全部已知设备
func (r *PostgresEquipmentRepository) List(ctx context.Context) ([]*domain.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipments ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipments: %w", err)
	}
	defer rows.Close()

	var equipments []*domain.Equipment
	for rows.Next() {
		var e domain.Equipment
		if err := rows.Scan(
			&e.ID,
			&e.EquipmentID,
			&e.Manufacturer,
			&e.Series,
			&e.IP,
			&e.MACAddress,
			&e.Hostname,
			&e.Port,
			&e.Interval,
			&e.Status,
			&e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan equipment: %w", err)
		}
		equipments = append(equipments, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate equipments: %w", err)
	}

	return equipments, nil
}
