package analysis

import (
	"fmt"
	"time"

	"github.com/flowradar/flowradar/internal/domain/entity"
	"github.com/flowradar/flowradar/internal/domain/usecase"
)

// Decomposer turns PR lifecycle records into per-stage duration
// metrics. It is stateless: the median history needed for trend
// classification is supplied by the caller per stage.
type Decomposer struct{}

func NewDecomposer() *Decomposer {
	return &Decomposer{}
}

// Decompose computes stage metrics over the supplied records.
// medianHistory maps stage name to the time-ordered (oldest first)
// median durations of prior runs; the current run's median is
// appended before the trend split. Stages with no samples are
// omitted entirely.
func (d *Decomposer) Decompose(records []entity.PullRequestRecord, medianHistory map[string][]float64) (entity.FlowDecomposition, error) {
	for _, r := range records {
		if r.CreatedAt == nil {
			return entity.FlowDecomposition{}, fmt.Errorf("pr %q: %w", r.ID, usecase.ErrMissingCreatedAt)
		}
	}

	var result entity.FlowDecomposition
	samplesByStage := make(map[string][]entity.StageSample, len(entity.StageNames))
	for _, r := range records {
		if r.Status != entity.PRMerged {
			continue
		}
		for _, s := range stageSamples(r) {
			samplesByStage[s.Stage] = append(samplesByStage[s.Stage], s)
		}
	}

	var totalMedian float64
	medians := make(map[string]float64, len(samplesByStage))
	for _, stage := range entity.StageNames {
		if len(samplesByStage[stage]) == 0 {
			continue
		}
		durations := make([]float64, 0, len(samplesByStage[stage]))
		for _, s := range samplesByStage[stage] {
			durations = append(durations, s.Duration)
		}
		sorted := sortedCopy(durations)
		med := median(sorted)
		medians[stage] = med
		totalMedian += med

		trend, trendPct := classifyTrend(append(append([]float64{}, medianHistory[stage]...), med))
		result.Stages = append(result.Stages, entity.FlowStageMetric{
			Stage:           stage,
			MedianTime:      med,
			P5Time:          percentile(sorted, 0.05),
			P95Time:         percentile(sorted, 0.95),
			SampleCount:     len(sorted),
			Trend:           trend,
			TrendPercentage: trendPct,
		})
	}

	var longest string
	var longestPct float64
	for i := range result.Stages {
		m := &result.Stages[i]
		if totalMedian > 0 {
			m.PercentageOfTime = round1(m.MedianTime / totalMedian * 100)
		}
		if m.PercentageOfTime > longestPct {
			longestPct = m.PercentageOfTime
			longest = m.Stage
		}
	}
	result.TotalMedianCycleTime = totalMedian
	result.LongestStage = longest

	for _, stage := range entity.StageNames {
		med := medians[stage]
		if med <= 0 {
			continue
		}
		for _, s := range samplesByStage[stage] {
			if s.Duration > 2*med {
				result.Anomalies = append(result.Anomalies, entity.StageAnomaly{
					PRID:     s.PRID,
					Stage:    s.Stage,
					Duration: s.Duration,
					Median:   med,
				})
			}
		}
	}

	return result, nil
}

// stageSamples extracts the durations a single merged PR contributes.
// A missing timestamp drops only the stages bounded by it; later
// stages with both timestamps present still contribute.
func stageSamples(r entity.PullRequestRecord) []entity.StageSample {
	var out []entity.StageSample
	add := func(stage string, from, to *time.Time) {
		if from == nil || to == nil {
			return
		}
		minutes := to.Sub(*from).Minutes()
		if minutes < 0 {
			return
		}
		out = append(out, entity.StageSample{PRID: r.ID, Stage: stage, Duration: minutes})
	}
	add(entity.StageFirstReview, r.CreatedAt, r.FirstReviewAt)
	add(entity.StageApproval, r.FirstReviewAt, r.ApprovedAt)
	add(entity.StageMerge, r.ApprovedAt, r.MergedAt)
	return out
}

// classifyTrend splits a time-ordered median history into an older and
// a newer half and compares their means. Less than two points, or a
// zero older mean, reads as stable.
func classifyTrend(history []float64) (entity.Trend, float64) {
	if len(history) < 2 {
		return entity.TrendStable, 0
	}
	half := len(history) / 2
	olderMean := mean(history[:half])
	newerMean := mean(history[half:])
	if olderMean == 0 {
		return entity.TrendStable, 0
	}
	pct := (newerMean - olderMean) / olderMean * 100
	switch {
	case pct < -5:
		return entity.TrendImproving, round1(pct)
	case pct > 5:
		return entity.TrendDegrading, round1(pct)
	default:
		return entity.TrendStable, round1(pct)
	}
}
