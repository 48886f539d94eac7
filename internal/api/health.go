package api

import (
	"database/sql"
	"net/http"
)

// HealthHandler reports liveness.
type HealthHandler struct {
	DB *sql.DB
}

// Check handles GET /api/health.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.PingContext(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
