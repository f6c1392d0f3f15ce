package entity

// Lifecycle stages, each bounded by two PR timestamps.
const (
	StageFirstReview = "First Review"
	StageApproval    = "Approval"
	StageMerge       = "Merge"
)

// StageNames lists the stages in lifecycle order.
var StageNames = []string{StageFirstReview, StageApproval, StageMerge}

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDegrading Trend = "degrading"
)

// StageSample is a single PR's time spent in one stage, in minutes.
type StageSample struct {
	PRID     string  `json:"pr_id"`
	Stage    string  `json:"stage"`
	Duration float64 `json:"duration_minutes"`
}

// FlowStageMetric aggregates one stage over a PR set.
// For any non-empty sample set p5 <= median <= p95, and the
// PercentageOfTime values of one decomposition sum to ~100.
type FlowStageMetric struct {
	Stage            string  `json:"stage"`
	PercentageOfTime float64 `json:"percentage_of_time"`
	MedianTime       float64 `json:"median_time_minutes"`
	P5Time           float64 `json:"p5_time_minutes"`
	P95Time          float64 `json:"p95_time_minutes"`
	SampleCount      int     `json:"sample_count"`
	Trend            Trend   `json:"trend"`
	TrendPercentage  float64 `json:"trend_percentage"`
}

// StageAnomaly flags a PR whose stage duration exceeded twice the
// stage median.
type StageAnomaly struct {
	PRID     string  `json:"pr_id"`
	Stage    string  `json:"stage"`
	Duration float64 `json:"duration_minutes"`
	Median   float64 `json:"stage_median_minutes"`
}

// FlowDecomposition is one stage-decomposition run.
type FlowDecomposition struct {
	Stages               []FlowStageMetric `json:"stages"`
	TotalMedianCycleTime float64           `json:"total_median_cycle_time_minutes"`
	LongestStage         string            `json:"longest_stage,omitempty"`
	Anomalies            []StageAnomaly    `json:"anomalies,omitempty"`
}
