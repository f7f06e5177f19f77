package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type AdvertisingHandler struct {
	UC     *usecase.AdvertisingUseCase
	Stats  *usecase.StatisticsUseCase
	logger *zap.Logger
}

func NewAdvertisingHandler(uc *usecase.AdvertisingUseCase, stats *usecase.StatisticsUseCase, logger *zap.Logger) *AdvertisingHandler {
	return &AdvertisingHandler{UC: uc, Stats: stats, logger: logger}
}

func (h *AdvertisingHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.UC.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AdvertisingHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.UC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AdvertisingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in usecase.AdvertisingInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	a, err := h.UC.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *AdvertisingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in usecase.AdvertisingInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	a, err := h.UC.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AdvertisingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.UC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Statistics is GET /advertisements/{id}/statistics.
func (h *AdvertisingHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	s, err := h.Stats.Campaign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
