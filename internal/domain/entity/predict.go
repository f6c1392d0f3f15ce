package entity

import "time"

type Timeframe string

const (
	TimeframeImmediate Timeframe = "immediate"
	TimeframeToday     Timeframe = "today"
	TimeframeThisWeek  Timeframe = "this_week"
	TimeframeThisMonth Timeframe = "this_month"
)

// PredictiveForecast projects one stage's severity forward.
// Probability and ConfidenceScore are heuristic ranking signals.
type PredictiveForecast struct {
	Stage              string    `json:"stage"`
	CurrentSeverity    Severity  `json:"current_severity"`
	ForecastedSeverity Severity  `json:"forecasted_severity"`
	Probability        float64   `json:"probability"`
	Timeframe          Timeframe `json:"timeframe"`
	Trend              Trend     `json:"trend"`
	ConfidenceScore    float64   `json:"confidence_score"`
}

// AtRiskStage scores a stage 0..100 on how close it is to becoming a
// bottleneck.
type AtRiskStage struct {
	Stage                string   `json:"stage"`
	RiskScore            int      `json:"risk_score"`
	RiskFactors          []string `json:"risk_factors"`
	EstimatedImpact      string   `json:"estimated_impact"`
	MitigationStrategies []string `json:"mitigation_strategies"`
}

// PredictiveAnalysis is one forecasting run.
type PredictiveAnalysis struct {
	Forecasts                 []PredictiveForecast `json:"forecasts"`
	AtRiskStages              []AtRiskStage        `json:"at_risk_stages,omitempty"`
	BottleneckProbability     float64              `json:"bottleneck_probability"`
	EstimatedTimeToBottleneck float64              `json:"estimated_time_to_bottleneck_hours"`
	PreventiveActions         []string             `json:"preventive_actions,omitempty"`
	AnalyzedAt                time.Time            `json:"analyzed_at"`
}
