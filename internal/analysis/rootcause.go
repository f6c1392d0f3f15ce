package analysis

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flowradar/flowradar/internal/domain/entity"
)

// RootCauseAnalyzer explains a single constraint from the PR records
// behind it and any externally supplied correlated events. Its output
// is a ranked heuristic explanation, not verified causal inference.
type RootCauseAnalyzer struct{}

func NewRootCauseAnalyzer() *RootCauseAnalyzer {
	return &RootCauseAnalyzer{}
}

func (a *RootCauseAnalyzer) Analyze(constraint entity.Constraint, records []entity.PullRequestRecord, events []entity.CorrelatedEvent, now time.Time) entity.RootCauseReport {
	var causes []string
	confidence := 0.5

	if top, ok := topCorrelatedEvent(events); ok && top.Correlation > 0.7 {
		causes = append(causes, fmt.Sprintf("Correlated %s: %s", top.Type, top.Description))
		confidence += 0.2
	}
	if avgFilesChanged(records) > 20 {
		causes = append(causes, "Large PR size is slowing the stage down")
		confidence += 0.15
	}
	if singleAuthor(records) {
		causes = append(causes, "Single-author bottleneck: all affected PRs come from one person")
		confidence += 0.1
	}
	if generic, ok := stageGenericCauses[constraint.Stage]; ok {
		causes = append(causes, generic)
	}
	if confidence > 1 {
		confidence = 1
	}

	report := entity.RootCauseReport{
		ID:               uuid.NewString(),
		Stage:            constraint.Stage,
		Confidence:       confidence,
		CorrelatedEvents: events,
		AffectedPRs:      prIDs(records),
		FailurePatterns:  minePatterns(records),
		AnalyzedAt:       now,
	}
	if len(causes) > 0 {
		report.PrimaryCause = causes[0]
		report.SecondaryCauses = causes[1:]
	}
	report.ImmediateActions = immediateActions(report.PrimaryCause, constraint.Severity)
	report.LongTermImprovements = append(append([]string{}, longTermImprovementsBase...), stageLongTermImprovements[constraint.Stage]...)
	return report
}

func topCorrelatedEvent(events []entity.CorrelatedEvent) (entity.CorrelatedEvent, bool) {
	if len(events) == 0 {
		return entity.CorrelatedEvent{}, false
	}
	top := events[0]
	for _, e := range events[1:] {
		if e.Correlation > top.Correlation {
			top = e
		}
	}
	return top, true
}

func avgFilesChanged(records []entity.PullRequestRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += float64(r.FilesChanged)
	}
	return sum / float64(len(records))
}

func singleAuthor(records []entity.PullRequestRecord) bool {
	if len(records) == 0 {
		return false
	}
	first := records[0].Author
	for _, r := range records[1:] {
		if r.Author != first {
			return false
		}
	}
	return true
}

func prIDs(records []entity.PullRequestRecord) []string {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return ids
}

// minePatterns scans the affected PR set for recurring failure
// shapes: oversized PRs, high churn, and author concentration.
func minePatterns(records []entity.PullRequestRecord) []entity.FailurePattern {
	if len(records) == 0 {
		return nil
	}
	total := float64(len(records))
	var patterns []entity.FailurePattern

	var large, churn int
	byAuthor := map[string]int{}
	for _, r := range records {
		if r.FilesChanged > 20 {
			large++
		}
		if r.Additions+r.Deletions > 500 {
			churn++
		}
		byAuthor[r.Author]++
	}
	if large > 0 {
		patterns = append(patterns, entity.FailurePattern{
			Name:       "large PR size",
			Frequency:  large,
			Percentage: round1(float64(large) / total * 100),
			Severity:   entity.SeverityHigh,
		})
	}
	if churn > 0 {
		patterns = append(patterns, entity.FailurePattern{
			Name:       "high churn",
			Frequency:  churn,
			Percentage: round1(float64(churn) / total * 100),
			Severity:   entity.SeverityMedium,
		})
	}

	authors := make([]string, 0, len(byAuthor))
	for a := range byAuthor {
		authors = append(authors, a)
	}
	sort.Strings(authors)
	for _, a := range authors {
		count := byAuthor[a]
		pct := float64(count) / total * 100
		if pct > 30 {
			patterns = append(patterns, entity.FailurePattern{
				Name:       fmt.Sprintf("author concentration: %s", a),
				Frequency:  count,
				Percentage: round1(pct),
				Severity:   entity.SeverityMedium,
			})
		}
	}
	return patterns
}

func immediateActions(primaryCause string, severity entity.Severity) []string {
	var actions []string
	cause := strings.ToLower(primaryCause)
	switch {
	case strings.Contains(cause, "large pr"):
		actions = append(actions, "Ask authors to split oversized PRs before requesting review")
	case strings.Contains(cause, "single-author"):
		actions = append(actions, "Spread the affected work across more contributors")
	case strings.Contains(cause, "merge") || strings.Contains(cause, "ci"):
		actions = append(actions, "Enable auto-merge and check CI health on the main branch")
	case strings.Contains(cause, "reviewer"):
		actions = append(actions, "Add reviewers to the rotation for the affected area")
	case strings.Contains(cause, "approval"):
		actions = append(actions, "Review the approval policy for unnecessary required sign-offs")
	default:
		actions = append(actions, "Walk the stage's current queue with the team and unblock the oldest items")
	}
	if severity == entity.SeverityCritical {
		actions = append(actions, "Escalate to engineering leadership: the stage is critically constrained")
	}
	return actions
}
