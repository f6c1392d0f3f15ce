package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/flowradar/flowradar/internal/domain/entity"
	"github.com/flowradar/flowradar/internal/domain/usecase"
)

type flowRequest struct {
	Org          string                     `json:"org"`
	Team         string                     `json:"team"`
	Repo         string                     `json:"repo"`
	PullRequests []entity.PullRequestRecord `json:"pull_requests"`
	Events       []entity.CorrelatedEvent   `json:"events,omitempty"`
}

type constraintsRequest struct {
	Org     string                   `json:"org"`
	Team    string                   `json:"team"`
	Repo    string                   `json:"repo"`
	Stages  []entity.FlowStageMetric `json:"stages"`
	PRCount int                      `json:"pr_count"`
}

type rootCauseRequest struct {
	Constraint   entity.Constraint          `json:"constraint"`
	PullRequests []entity.PullRequestRecord `json:"pull_requests"`
	Events       []entity.CorrelatedEvent   `json:"events,omitempty"`
}

type forecastRequest struct {
	Org         string                   `json:"org"`
	Team        string                   `json:"team"`
	Repo        string                   `json:"repo"`
	Constraints []entity.Constraint      `json:"constraints"`
	Stages      []entity.FlowStageMetric `json:"stages"`
}

type ownershipRequest struct {
	Contributors []entity.AuthorCommits `json:"contributors"`
}

func (r flowRequest) key() entity.AnalysisKey {
	return entity.AnalysisKey{Org: r.Org, Team: r.Team, Repo: r.Repo}
}

// POST /analysis/flow
func (h *Handlers) PostAnalysisFlow(w http.ResponseWriter, r *http.Request) {
	var req flowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	flow, err := h.service.DecomposeFlow(r.Context(), req.key(), req.PullRequests)
	if err != nil {
		if errors.Is(err, usecase.ErrMissingCreatedAt) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, flow)
}

// POST /analysis/constraints
func (h *Handlers) PostAnalysisConstraints(w http.ResponseWriter, r *http.Request) {
	var req constraintsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	key := entity.AnalysisKey{Org: req.Org, Team: req.Team, Repo: req.Repo}
	snapshot, err := h.service.DetectConstraints(r.Context(), key, req.Stages, req.PRCount)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, snapshot)
}

// POST /analysis/rootcause
func (h *Handlers) PostAnalysisRootCause(w http.ResponseWriter, r *http.Request) {
	var req rootCauseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.Constraint.Stage == "" {
		WriteError(w, http.StatusBadRequest, "constraint.stage is required")
		return
	}

	report, err := h.service.AnalyzeRootCause(r.Context(), req.Constraint, req.PullRequests, req.Events)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// POST /analysis/forecast
func (h *Handlers) PostAnalysisForecast(w http.ResponseWriter, r *http.Request) {
	var req forecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	key := entity.AnalysisKey{Org: req.Org, Team: req.Team, Repo: req.Repo}
	forecast, err := h.service.Forecast(r.Context(), key, req.Constraints, req.Stages)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, forecast)
}

// POST /analysis/run runs the full pipeline over raw PR records.
func (h *Handlers) PostAnalysisRun(w http.ResponseWriter, r *http.Request) {
	var req flowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	result, err := h.service.RunAnalysis(r.Context(), req.key(), req.PullRequests, req.Events)
	if err != nil {
		if errors.Is(err, usecase.ErrMissingCreatedAt) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// POST /analysis/ownership
func (h *Handlers) PostAnalysisOwnership(w http.ResponseWriter, r *http.Request) {
	var req ownershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	report, err := h.service.AnalyzeOwnership(r.Context(), req.Contributors)
	if err != nil {
		if errors.Is(err, usecase.ErrNoContributors) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, report)
}
