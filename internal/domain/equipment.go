package domain

import "time"

// Equipment 设备目录条目（对应 equipments 表）
// 遥测管线只读：按 equipment_id 解析内部主键、遍历全部设备
type Equipment struct {
	ID           int64     `db:"id"`           // BIGSERIAL
	EquipmentID  string    `db:"equipment_id"` // VARCHAR(50), UNIQUE NOT NULL
	Manufacturer string    `db:"manufacturer"`
	Series       string    `db:"series"`
	IP           string    `db:"ip"`
	MACAddress   string    `db:"mac_address"`
	Hostname     string    `db:"hostname"`
	Port         int       `db:"port"`
	Interval     int       `db:"interval"` // 采集间隔（秒）
	Status       string    `db:"status"`
	UpdatedAt    time.Time `db:"updated_at"`
}
