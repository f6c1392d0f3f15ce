package entity

import "time"

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Weight orders severities for sorting and scoring (critical=4 .. low=1).
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// Constraint is a detected bottleneck for one stage. Immutable after
// detection except for the operator-set acknowledge/resolve timestamps.
type Constraint struct {
	ID                 string     `json:"id"`
	Stage              string     `json:"stage"`
	Severity           Severity   `json:"severity"`
	MedianTime         float64    `json:"median_time_minutes"`
	P95Time            float64    `json:"p95_time_minutes"`
	P99Time            float64    `json:"p99_time_minutes"`
	PreviousMedianTime float64    `json:"previous_median_time_minutes"`
	PercentageIncrease float64    `json:"percentage_increase"`
	Trend              Trend      `json:"trend"`
	AffectedPRCount    int        `json:"affected_pr_count"`
	Recommendations    []string   `json:"recommendations"`
	DetectedAt         time.Time  `json:"detected_at"`
	AcknowledgedAt     *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedAt         *time.Time `json:"resolved_at,omitempty"`
}

// ConstraintSnapshot is one detection run: the radar view consumed by
// dashboards. ConstraintScore is 0..100, higher is worse;
// HealthScore is always 100 - ConstraintScore.
type ConstraintSnapshot struct {
	Constraints          []Constraint `json:"constraints"`
	PrimaryConstraint    *Constraint  `json:"primary_constraint,omitempty"`
	SecondaryConstraints []Constraint `json:"secondary_constraints,omitempty"`
	ConstraintScore      int          `json:"constraint_score"`
	HealthScore          int          `json:"health_score"`
	AnalyzedAt           time.Time    `json:"analyzed_at"`
}
