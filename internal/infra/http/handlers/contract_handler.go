package handlers

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type ContractHandler struct {
	UC     *usecase.ContractUseCase
	logger *zap.Logger
}

func NewContractHandler(uc *usecase.ContractUseCase, logger *zap.Logger) *ContractHandler {
	return &ContractHandler{UC: uc, logger: logger}
}

func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.UC.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ContractHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.UC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ContractHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, h.logger, err)
		return
	}
	in, file, err := contractForm(r)
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
	writeJSON(w, http.StatusCreated, c)
}

func (h *ContractHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, h.logger, err)
		return
	}
	in, file, err := contractForm(r)
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

func (h *ContractHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.UC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Document streams the stored file as an attachment named after the
// contract.
func (h *ContractHandler) Document(w http.ResponseWriter, r *http.Request) {
	rc, c, err := h.UC.Document(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	defer rc.Close()

	ext := filepath.Ext(c.Doc)
	ctype := mime.TypeByExtension(ext)
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": fmt.Sprintf("%s%s", c.Name, ext),
	}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("document download interrupted", zap.String("contract_id", c.ID), zap.Error(err))
	}
}
