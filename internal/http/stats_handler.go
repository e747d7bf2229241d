package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/tonton108/plc-dashboard/internal/models"
	"github.com/tonton108/plc-dashboard/internal/repository"
)

// StatsHandler 各存储层的记录数统计
type StatsHandler struct {
	equipmentRepo   repository.EquipmentRepository
	measurementRepo repository.MeasurementRepository
	summaryRepo     repository.SummaryRepository
	logger          *zap.Logger
}

func NewStatsHandler(
	equipmentRepo repository.EquipmentRepository,
	measurementRepo repository.MeasurementRepository,
	summaryRepo repository.SummaryRepository,
	logger *zap.Logger,
) *StatsHandler {
	return &StatsHandler{
		equipmentRepo:   equipmentRepo,
		measurementRepo: measurementRepo,
		summaryRepo:     summaryRepo,
		logger:          logger,
	}
}

// GET /api/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	equipments, err := h.equipmentRepo.List(ctx)
	if err != nil {
		h.logger.Error("Failed to list equipments for stats", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to collect stats")
		return
	}

	logs, err := h.measurementRepo.Count(ctx)
	if err != nil {
		h.logger.Error("Failed to count logs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to collect stats")
		return
	}

	daily, err := h.summaryRepo.CountDaily(ctx)
	if err != nil {
		h.logger.Error("Failed to count daily summaries", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to collect stats")
		return
	}

	monthly, err := h.summaryRepo.CountMonthly(ctx)
	if err != nil {
		h.logger.Error("Failed to count monthly summaries", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to collect stats")
		return
	}

	writeJSON(w, http.StatusOK, models.StatsResponse{
		Equipments:       int64(len(equipments)),
		Logs:             logs,
		DailySummaries:   daily,
		MonthlySummaries: monthly,
	})
}
