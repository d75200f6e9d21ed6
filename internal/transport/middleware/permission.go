package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/timesheet-management/internal"
)

// RequireRole lets the request through only when the authenticated principal
// holds one of roles. It must run after the auth middleware.
func RequireRole(logger *slog.Logger, roles ...internal.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := internal.PrincipalFromContext(r.Context())
			if !ok || p.ID == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			for _, role := range roles {
				if p.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.WarnContext(r.Context(), "access denied: role not allowed",
				"user_id", p.ID,
				"role", p.Role,
				"required_roles", roles,
				"path", r.URL.Path)
			writeError(w, http.StatusForbidden, "Access denied. Admin only.")
		})
	}
}

// writeError uses the same payload as the handlers.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    status,
		"message": message,
	})
}
