package domain

import "time"

// DailySummary 日次集计（对应 daily_log_summaries 表）
// 唯一约束：每 (equipment_id, date) 一行，由日次汇总以替换语义写入
type DailySummary struct {
	ID          int64     `db:"id"`
	EquipmentID int64     `db:"equipment_id"`
	Date        time.Time `db:"date"` // 当日 00:00 UTC

	// production_count 为累计计数器，当日总量取 max（≈当日最后一次上报值）
	ProductionCountTotal *int64 `db:"production_count_total"`

	CurrentAvg     *float64 `db:"current_avg"`
	CurrentMax     *float64 `db:"current_max"`
	CurrentMin     *float64 `db:"current_min"`
	TemperatureAvg *float64 `db:"temperature_avg"`
	TemperatureMax *float64 `db:"temperature_max"`
	TemperatureMin *float64 `db:"temperature_min"`
	PressureAvg    *float64 `db:"pressure_avg"`
	PressureMax    *float64 `db:"pressure_max"`
	PressureMin    *float64 `db:"pressure_min"`
	CycleTimeAvg   *float64 `db:"cycle_time_avg"`

	ErrorCount int `db:"error_count"` // error_code > 0 的记录数
	DataCount  int `db:"data_count"`  // 参与集计的原始记录数
}

// MonthlySummary 月次集计（对应 monthly_log_summaries 表）
// 由当月日次集计派生；唯一约束：每 (equipment_id, year, month) 一行
type MonthlySummary struct {
	ID          int64 `db:"id"`
	EquipmentID int64 `db:"equipment_id"`
	Year        int   `db:"year"`
	Month       int   `db:"month"`

	ProductionCountTotal *int64   `db:"production_count_total"` // 日次总量的 max
	CurrentAvg           *float64 `db:"current_avg"`            // 日次均值的均值（有意的近似）
	ErrorCountTotal      int      `db:"error_count_total"`      // 日次错误数之和
	OperationalDays      int      `db:"operational_days"`       // 有日次集计的天数
}
