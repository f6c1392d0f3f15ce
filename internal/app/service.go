package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/flowradar/flowradar/internal/analysis"
	"github.com/flowradar/flowradar/internal/domain/entity"
	"github.com/flowradar/flowradar/internal/domain/repository"
	"github.com/flowradar/flowradar/internal/domain/usecase"
	"github.com/flowradar/flowradar/internal/infra/metrics"
)

// compile-time proof
var _ usecase.Service = (*ServiceImpl)(nil)

// ServiceImpl orchestrates the analysis components over the history
// store. Calls for the same (org, team, repo) key are serialized
// because history append-then-truncate is not atomic; distinct keys
// run concurrently.
type ServiceImpl struct {
	store      repository.HistoryStore
	decomposer *analysis.Decomposer
	detector   *analysis.Detector
	rootCause  *analysis.RootCauseAnalyzer
	predictor  *analysis.Predictor
	metrics    *metrics.Metrics
	log        *slog.Logger

	keyLocks sync.Map // entity.AnalysisKey -> *sync.Mutex
}

func NewService(store repository.HistoryStore, m *metrics.Metrics, log *slog.Logger) usecase.Service {
	if log == nil {
		log = slog.Default()
	}
	return &ServiceImpl{
		store:      store,
		decomposer: analysis.NewDecomposer(),
		detector:   analysis.NewDetector(),
		rootCause:  analysis.NewRootCauseAnalyzer(),
		predictor:  analysis.NewPredictor(),
		metrics:    m,
		log:        log,
	}
}

func (s *ServiceImpl) lockKey(key entity.AnalysisKey) func() {
	v, _ := s.keyLocks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *ServiceImpl) countRun(kind string) {
	if s.metrics != nil {
		s.metrics.AnalysisRuns.WithLabelValues(kind).Inc()
	}
}

func (s *ServiceImpl) DecomposeFlow(ctx context.Context, key entity.AnalysisKey, records []entity.PullRequestRecord) (entity.FlowDecomposition, error) {
	unlock := s.lockKey(key)
	defer unlock()
	return s.decomposeLocked(ctx, key, records)
}

func (s *ServiceImpl) decomposeLocked(ctx context.Context, key entity.AnalysisKey, records []entity.PullRequestRecord) (entity.FlowDecomposition, error) {
	history := make(map[string][]float64, len(entity.StageNames))
	for _, stage := range entity.StageNames {
		medians, err := s.store.ListStageMedians(ctx, key, stage)
		if err != nil {
			return entity.FlowDecomposition{}, fmt.Errorf("list stage medians: %w", err)
		}
		history[stage] = medians
	}

	flow, err := s.decomposer.Decompose(records, history)
	if err != nil {
		return entity.FlowDecomposition{}, err
	}

	for _, m := range flow.Stages {
		if err := s.store.AppendStageMedian(ctx, key, m.Stage, m.MedianTime); err != nil {
			return entity.FlowDecomposition{}, fmt.Errorf("append stage median: %w", err)
		}
	}
	if len(flow.Stages) > 0 {
		if err := s.store.AppendSnapshot(ctx, key, flow.Stages); err != nil {
			return entity.FlowDecomposition{}, fmt.Errorf("append snapshot: %w", err)
		}
	}

	s.countRun("flow")
	s.log.Debug("flow decomposed",
		"key", key.String(),
		"stages", len(flow.Stages),
		"anomalies", len(flow.Anomalies),
	)
	return flow, nil
}

func (s *ServiceImpl) DetectConstraints(ctx context.Context, key entity.AnalysisKey, stages []entity.FlowStageMetric, prCount int) (entity.ConstraintSnapshot, error) {
	unlock := s.lockKey(key)
	defer unlock()
	return s.detectLocked(ctx, key, stages, prCount)
}

func (s *ServiceImpl) detectLocked(ctx context.Context, key entity.AnalysisKey, stages []entity.FlowStageMetric, prCount int) (entity.ConstraintSnapshot, error) {
	snapshot := s.detector.Detect(stages, prCount, time.Now().UTC())
	if len(snapshot.Constraints) > 0 {
		if err := s.store.AppendConstraints(ctx, key, snapshot.Constraints); err != nil {
			return entity.ConstraintSnapshot{}, fmt.Errorf("append constraints: %w", err)
		}
	}

	s.countRun("constraints")
	for _, c := range snapshot.Constraints {
		if s.metrics != nil {
			s.metrics.ConstraintsDetected.WithLabelValues(string(c.Severity)).Inc()
		}
	}
	s.log.Info("constraints detected",
		"key", key.String(),
		"count", len(snapshot.Constraints),
		"constraint_score", snapshot.ConstraintScore,
	)
	return snapshot, nil
}

func (s *ServiceImpl) GetConstraintHistory(ctx context.Context, key entity.AnalysisKey) ([]entity.Constraint, error) {
	return s.store.ListConstraints(ctx, key)
}

func (s *ServiceImpl) ClearHistory(ctx context.Context, key entity.AnalysisKey) error {
	unlock := s.lockKey(key)
	defer unlock()
	return s.store.ClearConstraints(ctx, key)
}

func (s *ServiceImpl) AcknowledgeConstraint(ctx context.Context, key entity.AnalysisKey, constraintID string) (entity.Constraint, error) {
	return s.stampConstraint(ctx, key, constraintID, func(c *entity.Constraint, now time.Time) {
		c.AcknowledgedAt = &now
	})
}

func (s *ServiceImpl) ResolveConstraint(ctx context.Context, key entity.AnalysisKey, constraintID string) (entity.Constraint, error) {
	return s.stampConstraint(ctx, key, constraintID, func(c *entity.Constraint, now time.Time) {
		c.ResolvedAt = &now
	})
}

func (s *ServiceImpl) stampConstraint(ctx context.Context, key entity.AnalysisKey, constraintID string, stamp func(*entity.Constraint, time.Time)) (entity.Constraint, error) {
	unlock := s.lockKey(key)
	defer unlock()

	history, err := s.store.ListConstraints(ctx, key)
	if err != nil {
		return entity.Constraint{}, err
	}
	for _, c := range history {
		if c.ID == constraintID {
			stamp(&c, time.Now().UTC())
			if err := s.store.UpdateConstraint(ctx, key, c); err != nil {
				return entity.Constraint{}, err
			}
			return c, nil
		}
	}
	return entity.Constraint{}, usecase.ErrConstraintNotFound
}

func (s *ServiceImpl) AnalyzeRootCause(_ context.Context, constraint entity.Constraint, records []entity.PullRequestRecord, events []entity.CorrelatedEvent) (entity.RootCauseReport, error) {
	report := s.rootCause.Analyze(constraint, records, events, time.Now().UTC())
	s.countRun("rootcause")
	return report, nil
}

func (s *ServiceImpl) Forecast(ctx context.Context, key entity.AnalysisKey, constraints []entity.Constraint, stages []entity.FlowStageMetric) (entity.PredictiveAnalysis, error) {
	unlock := s.lockKey(key)
	defer unlock()
	return s.forecastLocked(ctx, key, constraints, stages)
}

func (s *ServiceImpl) forecastLocked(ctx context.Context, key entity.AnalysisKey, constraints []entity.Constraint, stages []entity.FlowStageMetric) (entity.PredictiveAnalysis, error) {
	snapshots, err := s.store.ListSnapshots(ctx, key)
	if err != nil {
		return entity.PredictiveAnalysis{}, fmt.Errorf("list snapshots: %w", err)
	}
	s.countRun("forecast")
	return s.predictor.Forecast(constraints, stages, snapshots, time.Now().UTC()), nil
}

func (s *ServiceImpl) AnalyzeOwnership(_ context.Context, contributors []entity.AuthorCommits) (entity.OwnershipReport, error) {
	if len(contributors) == 0 {
		return entity.OwnershipReport{}, usecase.ErrNoContributors
	}
	s.countRun("ownership")
	return analysis.AnalyzeOwnership(contributors), nil
}

// RunAnalysis executes the full pipeline under one key lock:
// decompose, detect, explain the primary constraint, forecast.
func (s *ServiceImpl) RunAnalysis(ctx context.Context, key entity.AnalysisKey, records []entity.PullRequestRecord, events []entity.CorrelatedEvent) (entity.AnalysisResult, error) {
	unlock := s.lockKey(key)
	defer unlock()

	flow, err := s.decomposeLocked(ctx, key, records)
	if err != nil {
		return entity.AnalysisResult{}, err
	}

	merged := 0
	for _, r := range records {
		if r.Status == entity.PRMerged {
			merged++
		}
	}

	snapshot, err := s.detectLocked(ctx, key, flow.Stages, merged)
	if err != nil {
		return entity.AnalysisResult{}, err
	}

	result := entity.AnalysisResult{
		Key:         key,
		Flow:        flow,
		Constraints: snapshot,
		AnalyzedAt:  time.Now().UTC(),
	}

	if snapshot.PrimaryConstraint != nil {
		report := s.rootCause.Analyze(*snapshot.PrimaryConstraint, mergedRecords(records), events, result.AnalyzedAt)
		result.RootCause = &report
	}

	forecast, err := s.forecastLocked(ctx, key, snapshot.Constraints, flow.Stages)
	if err != nil {
		return entity.AnalysisResult{}, err
	}
	result.Forecast = forecast
	return result, nil
}

func mergedRecords(records []entity.PullRequestRecord) []entity.PullRequestRecord {
	out := make([]entity.PullRequestRecord, 0, len(records))
	for _, r := range records {
		if r.Status == entity.PRMerged {
			out = append(out, r)
		}
	}
	return out
}
