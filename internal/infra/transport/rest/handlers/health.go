package handlers

import "net/http"

// GET /health
func (h *Handlers) GetHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
