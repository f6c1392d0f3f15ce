package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/flowradar/flowradar/internal/domain/entity"
)

// Predictor projects stage severities forward from current metrics,
// current constraints and prior stage-metric snapshots. All
// probabilities are threshold heuristics used for ranking.
type Predictor struct{}

func NewPredictor() *Predictor {
	return &Predictor{}
}

func (p *Predictor) Forecast(constraints []entity.Constraint, stages []entity.FlowStageMetric, snapshots [][]entity.FlowStageMetric, now time.Time) entity.PredictiveAnalysis {
	currentSeverity := map[string]entity.Severity{}
	for _, c := range constraints {
		currentSeverity[c.Stage] = c.Severity
	}

	analysis := entity.PredictiveAnalysis{AnalyzedAt: now}
	for _, stage := range stages {
		severity, ok := currentSeverity[stage.Stage]
		if !ok {
			severity = entity.SeverityLow
		}
		prob := forecastProbability(stage)
		analysis.Forecasts = append(analysis.Forecasts, entity.PredictiveForecast{
			Stage:              stage.Stage,
			CurrentSeverity:    severity,
			ForecastedSeverity: baseSeverity(stage),
			Probability:        prob,
			Timeframe:          timeframeFor(prob),
			Trend:              stage.Trend,
			ConfidenceScore:    confidenceScore(len(snapshots)),
		})
	}

	analysis.AtRiskStages = atRiskStages(stages, snapshots)

	if len(constraints) > 0 {
		if top, ok := topForecast(analysis.Forecasts); ok {
			analysis.BottleneckProbability = top.Probability
			analysis.EstimatedTimeToBottleneck = etaHours(top.Timeframe)
		}
	}

	analysis.PreventiveActions = preventiveActions(analysis.AtRiskStages, analysis.Forecasts)
	return analysis
}

func forecastProbability(stage entity.FlowStageMetric) float64 {
	prob := 0.3
	switch {
	case stage.P95Time > 240:
		prob += 0.4
	case stage.P95Time > 0:
		prob += 0.2
	}
	if stage.Trend == entity.TrendDegrading {
		prob += 0.2
	}
	if prob > 1 {
		prob = 1
	}
	return prob
}

func timeframeFor(probability float64) entity.Timeframe {
	switch {
	case probability > 0.8:
		return entity.TimeframeImmediate
	case probability > 0.6:
		return entity.TimeframeToday
	case probability > 0.4:
		return entity.TimeframeThisWeek
	default:
		return entity.TimeframeThisMonth
	}
}

func confidenceScore(snapshotCount int) float64 {
	c := 0.5 + 0.05*float64(snapshotCount)
	if c > 1 {
		c = 1
	}
	return c
}

func etaHours(tf entity.Timeframe) float64 {
	switch tf {
	case entity.TimeframeImmediate:
		return 1
	case entity.TimeframeToday:
		return 8
	case entity.TimeframeThisWeek:
		return 72
	default:
		// Conservative default for the month bucket.
		return 24
	}
}

func atRiskStages(stages []entity.FlowStageMetric, snapshots [][]entity.FlowStageMetric) []entity.AtRiskStage {
	var out []entity.AtRiskStage
	for _, stage := range stages {
		score := 0
		var factors []string
		switch {
		case stage.P95Time > 240:
			score += 40
			factors = append(factors, fmt.Sprintf("p95 duration %.0f min exceeds 4 hours", stage.P95Time))
		case stage.P95Time > 0:
			score += 25
			factors = append(factors, fmt.Sprintf("p95 duration %.0f min", stage.P95Time))
		case stage.MedianTime > 0:
			score += 10
			factors = append(factors, fmt.Sprintf("median duration %.0f min", stage.MedianTime))
		}
		switch stage.Trend {
		case entity.TrendDegrading:
			score += 30
			factors = append(factors, fmt.Sprintf("degrading trend (%.1f%%)", stage.TrendPercentage))
		case entity.TrendStable:
			score += 10
		}
		if sd := recentMedianStdDev(snapshots, stage.Stage, 5); sd > 50 {
			score += 20
			factors = append(factors, fmt.Sprintf("high variance across recent runs (stddev %.0f min)", sd))
		}
		if score <= 30 {
			continue
		}
		out = append(out, entity.AtRiskStage{
			Stage:                stage.Stage,
			RiskScore:            score,
			RiskFactors:          factors,
			EstimatedImpact:      impactFor(score),
			MitigationStrategies: append([]string{}, stageMitigations[stage.Stage]...),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RiskScore > out[j].RiskScore })
	return out
}

// recentMedianStdDev looks at the latest n snapshots (oldest first
// ordering preserved) and measures how much the stage's median moved.
func recentMedianStdDev(snapshots [][]entity.FlowStageMetric, stage string, n int) float64 {
	var medians []float64
	for _, snap := range snapshots {
		for _, m := range snap {
			if m.Stage == stage {
				medians = append(medians, m.MedianTime)
				break
			}
		}
	}
	if len(medians) > n {
		medians = medians[len(medians)-n:]
	}
	return stdDev(medians)
}

func impactFor(score int) string {
	switch {
	case score >= 80:
		return "Likely to become the dominant bottleneck within days"
	case score >= 60:
		return "Cycle time will degrade noticeably if the trend continues"
	default:
		return "Minor slowdown expected unless load increases"
	}
}

func topForecast(forecasts []entity.PredictiveForecast) (entity.PredictiveForecast, bool) {
	if len(forecasts) == 0 {
		return entity.PredictiveForecast{}, false
	}
	top := forecasts[0]
	for _, f := range forecasts[1:] {
		w, tw := f.ForecastedSeverity.Weight(), top.ForecastedSeverity.Weight()
		if w > tw || (w == tw && f.Probability > top.Probability) {
			top = f
		}
	}
	return top, true
}

func preventiveActions(atRisk []entity.AtRiskStage, forecasts []entity.PredictiveForecast) []string {
	seen := map[string]bool{}
	var actions []string
	add := func(a string) {
		if !seen[a] {
			seen[a] = true
			actions = append(actions, a)
		}
	}
	for _, s := range atRisk {
		for _, m := range s.MitigationStrategies {
			add(m)
		}
	}
	for _, f := range forecasts {
		if f.Probability > 0.6 {
			add(fmt.Sprintf("Monitor the %s stage closely over the next runs", f.Stage))
		}
	}
	return actions
}
