package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/flowradar/flowradar/internal/domain/entity"
)

// Detector classifies stage metrics into constraints. Detection
// itself is pure; the rolling history lives in the store and is
// appended by the orchestrating service.
type Detector struct{}

func NewDetector() *Detector {
	return &Detector{}
}

// Detect builds the constraint snapshot for one run. prCount is
// reporting-only and lands in AffectedPRCount unchanged.
func (d *Detector) Detect(stages []entity.FlowStageMetric, prCount int, now time.Time) entity.ConstraintSnapshot {
	var constraints []entity.Constraint
	for _, stage := range stages {
		severity := baseSeverity(stage)
		if stage.Trend == entity.TrendDegrading && stage.TrendPercentage > 20 {
			severity = escalate(severity)
		}
		if severity == entity.SeverityLow {
			continue
		}
		constraints = append(constraints, entity.Constraint{
			ID:         uuid.NewString(),
			Stage:      stage.Stage,
			Severity:   severity,
			MedianTime: stage.MedianTime,
			P95Time:    stage.P95Time,
			// No independent p99 sample exists at this layer.
			P99Time: round1(1.2 * stage.P95Time),
			// Back-computed approximation, not a stored prior
			// measurement; unstable as the trend approaches -100%.
			PreviousMedianTime: previousMedian(stage.MedianTime, stage.TrendPercentage),
			PercentageIncrease: stage.TrendPercentage,
			Trend:              stage.Trend,
			AffectedPRCount:    prCount,
			Recommendations:    recommendationsFor(stage.Stage, stage.Trend, severity),
			DetectedAt:         now,
		})
	}

	sort.SliceStable(constraints, func(i, j int) bool {
		return constraints[i].Severity.Weight() > constraints[j].Severity.Weight()
	})

	snapshot := entity.ConstraintSnapshot{
		Constraints:     constraints,
		ConstraintScore: constraintScore(constraints),
		AnalyzedAt:      now,
	}
	snapshot.HealthScore = 100 - snapshot.ConstraintScore
	if len(constraints) > 0 {
		snapshot.PrimaryConstraint = &constraints[0]
		snapshot.SecondaryConstraints = constraints[1:]
	}
	return snapshot
}

// baseSeverity applies the p95 thresholds without trend escalation.
// The predictive analyzer reuses it as the baseline projection.
func baseSeverity(stage entity.FlowStageMetric) entity.Severity {
	switch {
	case stage.P95Time > 600:
		return entity.SeverityCritical
	case stage.P95Time > 300:
		return entity.SeverityHigh
	case stage.MedianTime > 240 && stage.P95Time > 240:
		return entity.SeverityMedium
	default:
		return entity.SeverityLow
	}
}

func escalate(s entity.Severity) entity.Severity {
	switch s {
	case entity.SeverityLow:
		return entity.SeverityMedium
	case entity.SeverityMedium:
		return entity.SeverityHigh
	default:
		return entity.SeverityCritical
	}
}

func previousMedian(median, trendPct float64) float64 {
	denom := 1 + trendPct/100
	if denom == 0 {
		return 0
	}
	return round1(median / denom)
}

func recommendationsFor(stage string, trend entity.Trend, severity entity.Severity) []string {
	recs := append([]string{}, stageRecommendations[stage]...)
	if trend == entity.TrendDegrading {
		recs = append(recs, degradingTrendRecommendations...)
	}
	if severity == entity.SeverityCritical {
		recs = append(recs, criticalSeverityRecommendations...)
	}
	return recs
}

func constraintScore(constraints []entity.Constraint) int {
	if len(constraints) == 0 {
		return 0
	}
	var sum float64
	for _, c := range constraints {
		sum += float64(c.Severity.Weight())
	}
	score := int(math.Round(sum / float64(len(constraints)) * 25))
	if score > 100 {
		score = 100
	}
	return score
}
