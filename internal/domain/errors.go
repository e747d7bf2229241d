package domain

import "errors"

// 调用方错误（HTTP 边界用 errors.Is 映射为 4xx）
var (
	ErrEquipmentNotFound = errors.New("equipment not found")
	ErrInvalidPayload    = errors.New("invalid payload")
	ErrInvalidPeriod     = errors.New("invalid period")
)
