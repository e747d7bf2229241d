package models

import (
	"time"

	"github.com/tonton108/plc-dashboard/internal/domain"
)

// TelemetryInput 入站遥测数据（HTTP / MQTT 共用的 JSON 结构）
// timestamp 为 ISO-8601 字符串，缺省时取服务端当前时间
type TelemetryInput struct {
	EquipmentID     string   `json:"equipment_id"`
	Timestamp       string   `json:"timestamp,omitempty"`
	ProductionCount *int64   `json:"production_count"`
	Current         *float64 `json:"current"`
	Temperature     *float64 `json:"temperature"`
	Pressure        *float64 `json:"pressure"`
	CycleTime       *float64 `json:"cycle_time"`
	ErrorCode       *int     `json:"error_code"`
}

// 广播状态
const (
	StatusNormal = "normal"
	StatusError  = "error"
)

// BroadcastPayload 广播到 monitoring / equipment_{id} 主题的实时数据
type BroadcastPayload struct {
	EquipmentID     string   `json:"equipment_id"`
	Timestamp       string   `json:"timestamp"`
	ProductionCount *int64   `json:"production_count"`
	Current         *float64 `json:"current"`
	Temperature     *float64 `json:"temperature"`
	Pressure        *float64 `json:"pressure"`
	CycleTime       *float64 `json:"cycle_time"`
	ErrorCode       *int     `json:"error_code"`
	Status          string   `json:"status"`
}

// NewBroadcastPayload 从已持久化的记录构造广播数据
func NewBroadcastPayload(equipmentID string, m *domain.Measurement) *BroadcastPayload {
	status := StatusNormal
	if m.HasError() {
		status = StatusError
	}
	return &BroadcastPayload{
		EquipmentID:     equipmentID,
		Timestamp:       m.Timestamp.UTC().Format(time.RFC3339),
		ProductionCount: m.ProductionCount,
		Current:         m.Current,
		Temperature:     m.Temperature,
		Pressure:        m.Pressure,
		CycleTime:       m.CycleTime,
		ErrorCode:       m.ErrorCode,
		Status:          status,
	}
}

// 查询数据源标识
const (
	DataSourceRawLogs        = "raw_logs"
	DataSourceDailySummaries = "daily_summaries"
)

// LogEntry 原始分辨率的查询结果条目
type LogEntry struct {
	Timestamp       string   `json:"timestamp"`
	ProductionCount *int64   `json:"production_count"`
	Current         *float64 `json:"current"`
	Temperature     *float64 `json:"temperature"`
	Pressure        *float64 `json:"pressure"`
	CycleTime       *float64 `json:"cycle_time"`
	ErrorCode       *int     `json:"error_code"`
}

// DailySummaryEntry 日次分辨率的查询结果条目
type DailySummaryEntry struct {
	Date                 string   `json:"date"`
	ProductionCountTotal *int64   `json:"production_count_total"`
	CurrentAvg           *float64 `json:"current_avg"`
	CurrentMax           *float64 `json:"current_max"`
	CurrentMin           *float64 `json:"current_min"`
	TemperatureAvg       *float64 `json:"temperature_avg"`
	TemperatureMax       *float64 `json:"temperature_max"`
	TemperatureMin       *float64 `json:"temperature_min"`
	PressureAvg          *float64 `json:"pressure_avg"`
	PressureMax          *float64 `json:"pressure_max"`
	PressureMin          *float64 `json:"pressure_min"`
	CycleTimeAvg         *float64 `json:"cycle_time_avg"`
	ErrorCount           int      `json:"error_count"`
	DataCount            int      `json:"data_count"`
}

// MonthlySummaryEntry 月次集计查询结果条目
type MonthlySummaryEntry struct {
	Year                 int      `json:"year"`
	Month                int      `json:"month"`
	ProductionCountTotal *int64   `json:"production_count_total"`
	CurrentAvg           *float64 `json:"current_avg"`
	ErrorCountTotal      int      `json:"error_count_total"`
	OperationalDays      int      `json:"operational_days"`
}

// QueryResponse 分辨率路由查询的响应
type QueryResponse struct {
	EquipmentID  string      `json:"equipment_id"`
	Period       string      `json:"period"`
	DataSource   string      `json:"data_source"`
	Data         interface{} `json:"data"`
	TotalRecords int         `json:"total_records"`
}

// StatsResponse 各存储层的记录数统计
type StatsResponse struct {
	Equipments       int64 `json:"equipments"`
	Logs             int64 `json:"logs"`
	DailySummaries   int64 `json:"daily_summaries"`
	MonthlySummaries int64 `json:"monthly_summaries"`
}
