package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/tonton108/plc-dashboard/internal/broadcast"
	"github.com/tonton108/plc-dashboard/internal/domain"
	"github.com/tonton108/plc-dashboard/internal/models"
	"github.com/tonton108/plc-dashboard/internal/service"
)

// TelemetryHandler 遥测摄取与查询接口
type TelemetryHandler struct {
	ingest      *service.IngestService
	query       *service.QueryService
	latestCache *broadcast.LatestCache
	logger      *zap.Logger
}

func NewTelemetryHandler(
	ingest *service.IngestService,
	query *service.QueryService,
	latestCache *broadcast.LatestCache,
	logger *zap.Logger,
) *TelemetryHandler {
	return &TelemetryHandler{
		ingest:      ingest,
		query:       query,
		latestCache: latestCache,
		logger:      logger,
	}
}

// POST /api/logs
// body: TelemetryInput
func (h *TelemetryHandler) IngestLog(w http.ResponseWriter, r *http.Request) {
	var in models.TelemetryInput
	if err := readBodyJSON(r, 1<<20, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if in.EquipmentID == "" {
		writeError(w, http.StatusBadRequest, "equipment_id is required")
		return
	}

	m, err := h.ingest.Ingest(r.Context(), &in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEquipmentNotFound):
			writeError(w, http.StatusNotFound, "equipment not found: "+in.EquipmentID)
		case errors.Is(err, domain.ErrInvalidPayload):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Failed to ingest telemetry",
				zap.String("equipment_id", in.EquipmentID),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "failed to store log")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "log stored",
		"id":        m.ID,
		"timestamp": m.Timestamp.UTC().Format(time.RFC3339),
	})
}

// GET /api/logs/{equipment_id}?period=24h&limit=100
func (h *TelemetryHandler) GetLogs(w http.ResponseWriter, r *http.Request, equipmentID string) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "24h"
	}
	limit := parseInt(r.URL.Query().Get("limit"), 100)

	resp, err := h.query.Query(r.Context(), equipmentID, period, limit)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEquipmentNotFound):
			writeError(w, http.StatusNotFound, "equipment not found: "+equipmentID)
		case errors.Is(err, domain.ErrInvalidPeriod):
			writeError(w, http.StatusBadRequest, "unsupported period: "+period)
		default:
			h.logger.Error("Failed to query logs",
				zap.String("equipment_id", equipmentID),
				zap.String("period", period),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "failed to query logs")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GET /api/logs/{equipment_id}/monthly?year=2026
func (h *TelemetryHandler) GetMonthlySummaries(w http.ResponseWriter, r *http.Request, equipmentID string) {
	year := parseInt(r.URL.Query().Get("year"), time.Now().UTC().Year())

	entries, err := h.query.MonthlySummaries(r.Context(), equipmentID, year)
	if err != nil {
		if errors.Is(err, domain.ErrEquipmentNotFound) {
			writeError(w, http.StatusNotFound, "equipment not found: "+equipmentID)
			return
		}
		h.logger.Error("Failed to query monthly summaries",
			zap.String("equipment_id", equipmentID),
			zap.Int("year", year),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to query monthly summaries")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"equipment_id":  equipmentID,
		"year":          year,
		"data":          entries,
		"total_records": len(entries),
	})
}

// GET /api/equipments/{equipment_id}/latest
// 从 Redis 缓存读取设备最新一条遥测数据
func (h *TelemetryHandler) GetLatest(w http.ResponseWriter, r *http.Request, equipmentID string) {
	if h.latestCache == nil {
		writeError(w, http.StatusNotFound, "latest cache disabled")
		return
	}

	data, err := h.latestCache.Get(r.Context(), equipmentID)
	if err != nil {
		if err == redis.Nil {
			writeError(w, http.StatusNotFound, "no recent data for equipment: "+equipmentID)
			return
		}
		h.logger.Error("Failed to read latest cache",
			zap.String("equipment_id", equipmentID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to read latest data")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
