package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// RoleHeader carries the caller's role, set by the upstream gateway after
// authentication.
const RoleHeader = "X-Role"

type PermissionChecker interface {
	Allowed(ctx context.Context, role, permission string) (bool, error)
}

type Permissions struct {
	checker PermissionChecker
	logger  *zap.Logger
}

func NewPermissions(checker PermissionChecker, logger *zap.Logger) *Permissions {
	return &Permissions{checker: checker, logger: logger}
}

// Require rejects the request with 403 unless the caller's role holds
// permission.
func (p *Permissions) Require(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := r.Header.Get(RoleHeader)
			ok, err := p.checker.Allowed(r.Context(), role, permission)
			if err != nil {
				p.logger.Error("permission check failed",
					zap.String("role", role),
					zap.String("permission", permission),
					zap.Error(err),
				)
				deny(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
				return
			}
			if !ok {
				permissionDenials.WithLabelValues(permission).Inc()
				deny(w, http.StatusForbidden, "FORBIDDEN", "missing permission "+permission)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}
