package usecase

import (
	"context"

	"github.com/flowradar/flowradar/internal/domain/entity"
)

// Stage decomposition over collected PR records.
type FlowUseCase interface {
	// Decompose PR records into per-stage duration metrics,
	// updating the per-key median history used for trends.
	DecomposeFlow(ctx context.Context, key entity.AnalysisKey, records []entity.PullRequestRecord) (entity.FlowDecomposition, error)
}

// Bottleneck detection over stage metrics.
type ConstraintUseCase interface {
	// Detect classifies each stage and appends surviving
	// constraints to the key's rolling history.
	DetectConstraints(ctx context.Context, key entity.AnalysisKey, stages []entity.FlowStageMetric, prCount int) (entity.ConstraintSnapshot, error)

	GetConstraintHistory(ctx context.Context, key entity.AnalysisKey) ([]entity.Constraint, error)
	ClearHistory(ctx context.Context, key entity.AnalysisKey) error

	// Operator actions on an already detected constraint.
	AcknowledgeConstraint(ctx context.Context, key entity.AnalysisKey, constraintID string) (entity.Constraint, error)
	ResolveConstraint(ctx context.Context, key entity.AnalysisKey, constraintID string) (entity.Constraint, error)
}

type RootCauseUseCase interface {
	// AnalyzeRootCause explains one constraint from the PRs behind
	// it and any externally supplied correlated events.
	AnalyzeRootCause(ctx context.Context, constraint entity.Constraint, records []entity.PullRequestRecord, events []entity.CorrelatedEvent) (entity.RootCauseReport, error)
}

type ForecastUseCase interface {
	// Forecast projects stage severities forward using the key's
	// stored stage-metric snapshots for variance and confidence.
	Forecast(ctx context.Context, key entity.AnalysisKey, constraints []entity.Constraint, stages []entity.FlowStageMetric) (entity.PredictiveAnalysis, error)
}

type OwnershipUseCase interface {
	// AnalyzeOwnership computes bus-factor style commit
	// concentration for the supplied contributor counts.
	AnalyzeOwnership(ctx context.Context, contributors []entity.AuthorCommits) (entity.OwnershipReport, error)
}

// Full pipeline: decompose, detect, explain the primary constraint,
// forecast. One call per analysis run.
type PipelineUseCase interface {
	RunAnalysis(ctx context.Context, key entity.AnalysisKey, records []entity.PullRequestRecord, events []entity.CorrelatedEvent) (entity.AnalysisResult, error)
}

// Service aggregates the component interfaces behind one facade.
type Service interface {
	FlowUseCase
	ConstraintUseCase
	RootCauseUseCase
	ForecastUseCase
	OwnershipUseCase
	PipelineUseCase
}
