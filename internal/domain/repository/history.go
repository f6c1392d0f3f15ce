package repository

import (
	"context"

	"github.com/flowradar/flowradar/internal/domain/entity"
)

// HistoryStore owns all rolling analysis state. Every list is a
// bounded FIFO per key: appends past the capacity evict the oldest
// entries first. Implementations must be safe for concurrent use
// across distinct keys; same-key serialization is the caller's job.
type HistoryStore interface {
	// Constraint history per (org, team, repo).
	AppendConstraints(ctx context.Context, key entity.AnalysisKey, constraints []entity.Constraint) error
	ListConstraints(ctx context.Context, key entity.AnalysisKey) ([]entity.Constraint, error)
	ClearConstraints(ctx context.Context, key entity.AnalysisKey) error
	UpdateConstraint(ctx context.Context, key entity.AnalysisKey, constraint entity.Constraint) error

	// Per-stage median history used for trend classification.
	AppendStageMedian(ctx context.Context, key entity.AnalysisKey, stage string, median float64) error
	ListStageMedians(ctx context.Context, key entity.AnalysisKey, stage string) ([]float64, error)

	// Stage-metric snapshots, one per prior analysis run, used by
	// forecasting for variance and confidence.
	AppendSnapshot(ctx context.Context, key entity.AnalysisKey, stages []entity.FlowStageMetric) error
	ListSnapshots(ctx context.Context, key entity.AnalysisKey) ([][]entity.FlowStageMetric, error)
}
