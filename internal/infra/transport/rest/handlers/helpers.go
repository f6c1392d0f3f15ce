package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/flowradar/flowradar/internal/domain/entity"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, ErrorResponse{Error: message})
}

// keyFromQuery reads the analysis key labels. Org and repo are
// required; team may be empty.
func keyFromQuery(r *http.Request) (entity.AnalysisKey, bool) {
	key := entity.AnalysisKey{
		Org:  r.URL.Query().Get("org"),
		Team: r.URL.Query().Get("team"),
		Repo: r.URL.Query().Get("repo"),
	}
	return key, key.Org != "" && key.Repo != ""
}
