package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type StatisticsHandler struct {
	UC     *usecase.StatisticsUseCase
	logger *zap.Logger
}

func NewStatisticsHandler(uc *usecase.StatisticsUseCase, logger *zap.Logger) *StatisticsHandler {
	return &StatisticsHandler{UC: uc, logger: logger}
}

func (h *StatisticsHandler) Ads(w http.ResponseWriter, r *http.Request) {
	stats, err := h.UC.AdsStatistics(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *StatisticsHandler) Total(w http.ResponseWriter, r *http.Request) {
	totals, err := h.UC.TotalStatistics(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}
