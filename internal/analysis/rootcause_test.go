package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowradar/flowradar/internal/domain/entity"
)

func reviewConstraint(severity entity.Severity) entity.Constraint {
	return entity.Constraint{
		ID:       "c-1",
		Stage:    entity.StageFirstReview,
		Severity: severity,
		Trend:    entity.TrendDegrading,
	}
}

func sizedPR(id, author string, files, additions, deletions int) entity.PullRequestRecord {
	return entity.PullRequestRecord{
		ID:           id,
		Author:       author,
		Status:       entity.PRMerged,
		CreatedAt:    ts(0),
		FilesChanged: files,
		Additions:    additions,
		Deletions:    deletions,
	}
}

func TestAnalyze_BaselineConfidenceAndGenericCause(t *testing.T) {
	a := NewRootCauseAnalyzer()
	report := a.Analyze(reviewConstraint(entity.SeverityHigh), nil, nil, time.Now())

	assert.InDelta(t, 0.5, report.Confidence, 0.001)
	assert.Equal(t, stageGenericCauses[entity.StageFirstReview], report.PrimaryCause)
	assert.Empty(t, report.SecondaryCauses)
	assert.NotEmpty(t, report.ImmediateActions)
	assert.NotEmpty(t, report.LongTermImprovements)
}

func TestAnalyze_StrongEventBecomesPrimaryCause(t *testing.T) {
	a := NewRootCauseAnalyzer()
	events := []entity.CorrelatedEvent{
		{Type: "deployment", Description: "review-bot rollout", Correlation: 0.4},
		{Type: "incident", Description: "CI outage", Correlation: 0.9},
	}

	report := a.Analyze(reviewConstraint(entity.SeverityHigh), nil, events, time.Now())

	assert.InDelta(t, 0.7, report.Confidence, 0.001)
	assert.Contains(t, report.PrimaryCause, "CI outage")
}

func TestAnalyze_WeakEventIgnored(t *testing.T) {
	a := NewRootCauseAnalyzer()
	events := []entity.CorrelatedEvent{
		{Type: "deployment", Description: "minor change", Correlation: 0.5},
	}

	report := a.Analyze(reviewConstraint(entity.SeverityHigh), nil, events, time.Now())

	assert.InDelta(t, 0.5, report.Confidence, 0.001)
	assert.NotContains(t, report.PrimaryCause, "minor change")
}

func TestAnalyze_ConfidenceLadder(t *testing.T) {
	a := NewRootCauseAnalyzer()
	records := []entity.PullRequestRecord{
		sizedPR("pr-1", "alice", 30, 400, 200),
		sizedPR("pr-2", "alice", 25, 300, 100),
	}
	events := []entity.CorrelatedEvent{
		{Type: "incident", Description: "merge queue stuck", Correlation: 0.8},
	}

	report := a.Analyze(reviewConstraint(entity.SeverityHigh), records, events, time.Now())

	// 0.5 + 0.2 (event) + 0.15 (large PRs) + 0.1 (single author)
	assert.InDelta(t, 0.95, report.Confidence, 0.001)
	require.Len(t, report.SecondaryCauses, 3)
	assert.Equal(t, []string{"pr-1", "pr-2"}, report.AffectedPRs)
}

func TestAnalyze_MultipleAuthorsNotSingleAuthorCause(t *testing.T) {
	a := NewRootCauseAnalyzer()
	records := []entity.PullRequestRecord{
		sizedPR("pr-1", "alice", 5, 50, 10),
		sizedPR("pr-2", "bob", 5, 50, 10),
	}

	report := a.Analyze(reviewConstraint(entity.SeverityHigh), records, nil, time.Now())

	for _, cause := range append([]string{report.PrimaryCause}, report.SecondaryCauses...) {
		assert.NotContains(t, cause, "Single-author")
	}
}

func TestMinePatterns(t *testing.T) {
	records := []entity.PullRequestRecord{
		sizedPR("pr-1", "alice", 25, 400, 300), // large + high churn
		sizedPR("pr-2", "alice", 5, 100, 50),
		sizedPR("pr-3", "bob", 5, 100, 50),
	}

	patterns := minePatterns(records)

	names := map[string]entity.FailurePattern{}
	for _, p := range patterns {
		names[p.Name] = p
	}

	large, ok := names["large PR size"]
	require.True(t, ok)
	assert.Equal(t, 1, large.Frequency)
	assert.InDelta(t, 33.3, large.Percentage, 0.1)
	assert.Equal(t, entity.SeverityHigh, large.Severity)

	churn, ok := names["high churn"]
	require.True(t, ok)
	assert.Equal(t, entity.SeverityMedium, churn.Severity)

	// alice wrote 2 of 3 PRs (66%), over the 30% line.
	conc, ok := names["author concentration: alice"]
	require.True(t, ok)
	assert.Equal(t, 2, conc.Frequency)
	assert.InDelta(t, 66.7, conc.Percentage, 0.1)

	_, bobConcentrated := names["author concentration: bob"]
	assert.True(t, bobConcentrated, "33% is above the 30% threshold")
}

func TestMinePatterns_EmptyRecords(t *testing.T) {
	assert.Nil(t, minePatterns(nil))
}

func TestImmediateActions(t *testing.T) {
	large := immediateActions("Large PR size is slowing the stage down", entity.SeverityHigh)
	require.NotEmpty(t, large)
	assert.Contains(t, large[0], "split")

	critical := immediateActions("Merge or CI pipeline delays after approval", entity.SeverityCritical)
	require.Len(t, critical, 2)
	assert.Contains(t, critical[1], "Escalate")
}
