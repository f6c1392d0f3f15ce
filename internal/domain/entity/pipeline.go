package entity

import "time"

// AnalysisResult is one full pipeline run: decomposition, detection,
// root cause of the primary constraint (when one exists), forecast.
type AnalysisResult struct {
	Key         AnalysisKey        `json:"key"`
	Flow        FlowDecomposition  `json:"flow"`
	Constraints ConstraintSnapshot `json:"constraints"`
	RootCause   *RootCauseReport   `json:"root_cause,omitempty"`
	Forecast    PredictiveAnalysis `json:"forecast"`
	AnalyzedAt  time.Time          `json:"analyzed_at"`
}
