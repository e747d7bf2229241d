package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tonton108/plc-dashboard/internal/service"
)

// AdminHandler 维护任务的手动触发接口
type AdminHandler struct {
	scheduler *service.Scheduler
	logger    *zap.Logger
}

func NewAdminHandler(scheduler *service.Scheduler, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{scheduler: scheduler, logger: logger}
}

// POST /api/admin/cleanup
// body: {"days": 90}（缺省用配置的保留天数）
// 清理在后台执行，响应返回当前符合条件的记录数预估
func (h *AdminHandler) TriggerCleanup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Days int `json:"days"`
	}
	if err := readBodyJSON(r, 1<<16, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Days < 0 {
		writeError(w, http.StatusBadRequest, "days must be non-negative")
		return
	}

	estimate, err := h.scheduler.TriggerCleanup(r.Context(), req.Days)
	if err != nil {
		h.logger.Error("Failed to estimate cleanup", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to start cleanup")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message":         "cleanup started",
		"estimated_count": estimate,
	})
}

// POST /api/admin/summary
// body: {"type":"daily","date":"2026-08-29"} 或 {"type":"monthly","year":2026,"month":7}
func (h *AdminHandler) TriggerSummary(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type  string `json:"type"`
		Date  string `json:"date"`
		Year  int    `json:"year"`
		Month int    `json:"month"`
	}
	if err := readBodyJSON(r, 1<<16, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	switch req.Type {
	case "daily":
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		h.scheduler.TriggerDaily(date)
		writeJSON(w, http.StatusAccepted, map[string]string{
			"message": fmt.Sprintf("daily summary for %s started", req.Date),
		})
	case "monthly":
		if req.Year <= 0 || req.Month < 1 || req.Month > 12 {
			writeError(w, http.StatusBadRequest, "valid year and month are required")
			return
		}
		h.scheduler.TriggerMonthly(req.Year, req.Month)
		writeJSON(w, http.StatusAccepted, map[string]string{
			"message": fmt.Sprintf("monthly summary for %04d-%02d started", req.Year, req.Month),
		})
	default:
		writeError(w, http.StatusBadRequest, "type must be 'daily' or 'monthly'")
	}
}
