package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type ErrorResponse struct {
	Error          string              `json:"error"`
	Message        string              `json:"message"`
	Fields         map[string][]string `json:"fields,omitempty"`
	NonFieldErrors []string            `json:"non_field_errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

func statusFor(code string) int {
	switch code {
	case usecase.CodeValidation:
		return http.StatusBadRequest
	case usecase.CodeConflict:
		return http.StatusConflict
	case usecase.CodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeError renders a use case error. Anything that is not a domain
// error is logged and hidden behind a 500.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	if d, ok := usecase.AsDomainError(err); ok {
		resp := ErrorResponse{Error: d.Code, Message: d.Message}
		if len(d.Errors) > 0 {
			if fields := d.Errors.Fields(); len(fields) > 0 {
				resp.Fields = fields
			}
			resp.NonFieldErrors = d.Errors.NonField()
		}
		if d.Code == usecase.CodeConflict {
			for _, e := range d.Errors {
				middleware.RecordConflict(e.Field)
			}
		}
		writeJSON(w, statusFor(d.Code), resp)
		return
	}

	logger.Error("request failed", zap.Error(err))
	writeErrorResponse(w, http.StatusInternalServerError, usecase.CodeInternal, "internal server error")
}

func invalidRequest(errs usecase.ValidationErrors) error {
	return &usecase.DomainError{Code: usecase.CodeValidation, Message: "validation failed", Errors: errs}
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return invalidRequest(usecase.ValidationErrors{{Message: "Invalid JSON: " + err.Error()}})
	}
	return nil
}
