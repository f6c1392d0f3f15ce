package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowradar/flowradar/internal/domain/entity"
	"github.com/flowradar/flowradar/internal/domain/usecase"
	"github.com/flowradar/flowradar/internal/infra/storage/memory"
)

var testKey = entity.AnalysisKey{Org: "acme", Team: "payments", Repo: "billing"}

func newTestService() usecase.Service {
	return NewService(memory.NewHistoryStore(100, 50), nil, nil)
}

func slowMergedPR(id string, reviewMinutes float64) entity.PullRequestRecord {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	firstReview := created.Add(time.Duration(reviewMinutes * float64(time.Minute)))
	approved := firstReview.Add(30 * time.Minute)
	merged := approved.Add(15 * time.Minute)
	return entity.PullRequestRecord{
		ID:            id,
		Author:        "alice",
		Status:        entity.PRMerged,
		CreatedAt:     &created,
		FirstReviewAt: &firstReview,
		ApprovedAt:    &approved,
		MergedAt:      &merged,
		FilesChanged:  25,
		Additions:     400,
		Deletions:     200,
	}
}

func TestRunAnalysis_FullPipeline(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	records := []entity.PullRequestRecord{
		slowMergedPR("pr-1", 700),
		slowMergedPR("pr-2", 800),
		slowMergedPR("pr-3", 900),
	}

	result, err := svc.RunAnalysis(ctx, testKey, records, nil)
	require.NoError(t, err)

	// First Review dominates the cycle and must surface as the
	// primary constraint.
	require.NotNil(t, result.Constraints.PrimaryConstraint)
	assert.Equal(t, entity.StageFirstReview, result.Constraints.PrimaryConstraint.Stage)
	assert.Equal(t, entity.SeverityCritical, result.Constraints.PrimaryConstraint.Severity)
	assert.Equal(t, 3, result.Constraints.PrimaryConstraint.AffectedPRCount)

	require.NotNil(t, result.RootCause)
	assert.Equal(t, entity.StageFirstReview, result.RootCause.Stage)
	assert.NotEmpty(t, result.RootCause.PrimaryCause)

	assert.NotEmpty(t, result.Forecast.Forecasts)
	assert.Greater(t, result.Forecast.BottleneckProbability, 0.0)

	history, err := svc.GetConstraintHistory(ctx, testKey)
	require.NoError(t, err)
	assert.NotEmpty(t, history)
}

func TestRunAnalysis_HealthyFlow(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	records := []entity.PullRequestRecord{
		slowMergedPR("pr-1", 20),
		slowMergedPR("pr-2", 30),
	}

	result, err := svc.RunAnalysis(ctx, testKey, records, nil)
	require.NoError(t, err)

	assert.Empty(t, result.Constraints.Constraints)
	assert.Equal(t, 100, result.Constraints.HealthScore)
	assert.Nil(t, result.RootCause)
	assert.Zero(t, result.Forecast.BottleneckProbability)
	assert.Zero(t, result.Forecast.EstimatedTimeToBottleneck)
}

func TestRunAnalysis_ForecastConfidenceGrowsWithHistory(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	records := []entity.PullRequestRecord{slowMergedPR("pr-1", 300)}

	first, err := svc.RunAnalysis(ctx, testKey, records, nil)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := svc.RunAnalysis(ctx, testKey, records, nil)
		require.NoError(t, err)
	}
	last, err := svc.RunAnalysis(ctx, testKey, records, nil)
	require.NoError(t, err)

	require.NotEmpty(t, first.Forecast.Forecasts)
	require.NotEmpty(t, last.Forecast.Forecasts)
	assert.Greater(t,
		last.Forecast.Forecasts[0].ConfidenceScore,
		first.Forecast.Forecasts[0].ConfidenceScore)
}

func TestDecomposeFlow_ValidationError(t *testing.T) {
	svc := newTestService()
	pr := slowMergedPR("pr-1", 100)
	pr.CreatedAt = nil

	_, err := svc.DecomposeFlow(context.Background(), testKey, []entity.PullRequestRecord{pr})
	require.ErrorIs(t, err, usecase.ErrMissingCreatedAt)
}

func TestAcknowledgeAndResolveConstraint(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	records := []entity.PullRequestRecord{
		slowMergedPR("pr-1", 700),
		slowMergedPR("pr-2", 800),
	}
	result, err := svc.RunAnalysis(ctx, testKey, records, nil)
	require.NoError(t, err)
	require.NotNil(t, result.Constraints.PrimaryConstraint)
	id := result.Constraints.PrimaryConstraint.ID

	acked, err := svc.AcknowledgeConstraint(ctx, testKey, id)
	require.NoError(t, err)
	require.NotNil(t, acked.AcknowledgedAt)

	resolved, err := svc.ResolveConstraint(ctx, testKey, id)
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)
	// The acknowledgement set earlier must survive the resolve.
	require.NotNil(t, resolved.AcknowledgedAt)

	_, err = svc.AcknowledgeConstraint(ctx, testKey, "no-such-id")
	assert.ErrorIs(t, err, usecase.ErrConstraintNotFound)
}

func TestClearHistory(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.RunAnalysis(ctx, testKey, []entity.PullRequestRecord{
		slowMergedPR("pr-1", 700),
	}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.ClearHistory(ctx, testKey))

	history, err := svc.GetConstraintHistory(ctx, testKey)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAnalyzeOwnership_EmptyInput(t *testing.T) {
	svc := newTestService()
	_, err := svc.AnalyzeOwnership(context.Background(), nil)
	assert.ErrorIs(t, err, usecase.ErrNoContributors)
}

func TestDetectConstraints_AppendsHistoryPerKey(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	otherKey := entity.AnalysisKey{Org: "acme", Team: "payments", Repo: "other"}

	stages := []entity.FlowStageMetric{
		{Stage: entity.StageFirstReview, MedianTime: 400, P95Time: 700, Trend: entity.TrendStable},
	}

	_, err := svc.DetectConstraints(ctx, testKey, stages, 9)
	require.NoError(t, err)

	mine, err := svc.GetConstraintHistory(ctx, testKey)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := svc.GetConstraintHistory(ctx, otherKey)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}
