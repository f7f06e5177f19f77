package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type CustomerHandler struct {
	UC     *usecase.CustomerUseCase
	logger *zap.Logger
}

func NewCustomerHandler(uc *usecase.CustomerUseCase, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{UC: uc, logger: logger}
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.UC.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.UC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, file, err := customerForm(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	c, err := h.UC.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	middleware.RecordConversion("create")
	writeJSON(w, http.StatusCreated, c)
}

// Convert is POST /leads/{id}/convert.
func (h *CustomerHandler) Convert(w http.ResponseWriter, r *http.Request) {
	in, file, err := customerForm(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	c, err := h.UC.ConvertLead(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	middleware.RecordConversion("convert")
	writeJSON(w, http.StatusCreated, c)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	in, file, err := customerForm(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	c, err := h.UC.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.UC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
