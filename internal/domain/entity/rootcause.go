package entity

import "time"

// CorrelatedEvent is an externally observed event (deployment,
// incident, team change) the caller believes may relate to a
// constraint. Correlation is a 0..1 ranking signal, not a calibrated
// probability.
type CorrelatedEvent struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Correlation float64   `json:"correlation"`
}

// FailurePattern is a named pattern mined from the affected PR set.
type FailurePattern struct {
	Name       string   `json:"name"`
	Frequency  int      `json:"frequency"`
	Percentage float64  `json:"percentage"`
	Severity   Severity `json:"severity"`
}

// RootCauseReport explains one constraint. Causes are ranked
// heuristics: Confidence is a scoring formula, not a verified
// statistical statement.
type RootCauseReport struct {
	ID                   string            `json:"id"`
	Stage                string            `json:"stage"`
	PrimaryCause         string            `json:"primary_cause"`
	SecondaryCauses      []string          `json:"secondary_causes,omitempty"`
	Confidence           float64           `json:"confidence"`
	CorrelatedEvents     []CorrelatedEvent `json:"correlated_events,omitempty"`
	AffectedPRs          []string          `json:"affected_prs,omitempty"`
	FailurePatterns      []FailurePattern  `json:"failure_patterns,omitempty"`
	ImmediateActions     []string          `json:"immediate_actions"`
	LongTermImprovements []string          `json:"long_term_improvements"`
	AnalyzedAt           time.Time         `json:"analyzed_at"`
}
