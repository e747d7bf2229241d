package domain

import "time"

// Measurement PLC 原始遥测记录（对应 logs 表）
// 只追加：由摄取写入一次，之后只会被保留清理删除
type Measurement struct {
	ID          int64     `db:"id"`           // BIGSERIAL
	EquipmentID int64     `db:"equipment_id"` // equipments.id
	Timestamp   time.Time `db:"timestamp"`    // TIMESTAMPTZ, NOT NULL, UTC

	// 测量值（全部可空，取决于 PLC 上报内容）
	ProductionCount *int64   `db:"production_count"` // 累计计数器（单调递增）
	Current         *float64 `db:"current"`          // 电流 (A)
	Temperature     *float64 `db:"temperature"`      // 温度 (℃)
	Pressure        *float64 `db:"pressure"`         // 压力 (MPa)
	CycleTime       *float64 `db:"cycle_time"`       // 周期时间（秒）
	ErrorCode       *int     `db:"error_code"`       // 0 或 NULL 表示无错误
}

// HasError 判断该记录是否携带错误码
func (m *Measurement) HasError() bool {
	return m.ErrorCode != nil && *m.ErrorCode > 0
}
