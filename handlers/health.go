package handlers

import (
	"net/http"
)

// GET /db_health
func (h *Handler) DBHealth(w http.ResponseWriter, r *http.Request) {
	health := h.Store.HealthCheck(r.Context())
	if !health.OK {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"db": "error", "detail": health.Detail})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"db": "ok"})
}
