package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flowradar/flowradar/internal/domain/entity"
	"github.com/flowradar/flowradar/internal/domain/usecase"
)

// GET /constraints/history?org=&team=&repo=
func (h *Handlers) GetConstraintHistory(w http.ResponseWriter, r *http.Request) {
	key, ok := keyFromQuery(r)
	if !ok {
		WriteError(w, http.StatusBadRequest, "org and repo query parameters are required")
		return
	}

	history, err := h.service.GetConstraintHistory(r.Context(), key)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"constraints": history})
}

// DELETE /constraints/history?org=&team=&repo=
func (h *Handlers) DeleteConstraintHistory(w http.ResponseWriter, r *http.Request) {
	key, ok := keyFromQuery(r)
	if !ok {
		WriteError(w, http.StatusBadRequest, "org and repo query parameters are required")
		return
	}

	if err := h.service.ClearHistory(r.Context(), key); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /constraints/{id}/acknowledge?org=&team=&repo=
func (h *Handlers) PostConstraintAcknowledge(w http.ResponseWriter, r *http.Request) {
	h.stampConstraint(w, r, h.service.AcknowledgeConstraint)
}

// POST /constraints/{id}/resolve?org=&team=&repo=
func (h *Handlers) PostConstraintResolve(w http.ResponseWriter, r *http.Request) {
	h.stampConstraint(w, r, h.service.ResolveConstraint)
}

func (h *Handlers) stampConstraint(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, key entity.AnalysisKey, id string) (entity.Constraint, error)) {
	key, ok := keyFromQuery(r)
	if !ok {
		WriteError(w, http.StatusBadRequest, "org and repo query parameters are required")
		return
	}
	id := chi.URLParam(r, "id")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "constraint id is required")
		return
	}

	constraint, err := op(r.Context(), key, id)
	if err != nil {
		if errors.Is(err, usecase.ErrConstraintNotFound) {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, constraint)
}
