package analysis

import (
	"sort"

	"github.com/flowradar/flowradar/internal/domain/entity"
)

// AnalyzeOwnership computes commit-concentration risk for a
// repository: the bus factor is the minimum number of contributors
// whose combined commits reach at least half the total volume.
func AnalyzeOwnership(contributors []entity.AuthorCommits) entity.OwnershipReport {
	ranked := make([]entity.AuthorCommits, 0, len(contributors))
	total := 0
	for _, c := range contributors {
		if c.Commits <= 0 {
			continue
		}
		ranked = append(ranked, c)
		total += c.Commits
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Commits > ranked[j].Commits })

	report := entity.OwnershipReport{
		TotalCommits: total,
		TotalAuthors: len(ranked),
		Contributors: ranked,
	}
	if total == 0 {
		report.Risk = entity.SeverityLow
		return report
	}

	cumulative := 0
	for i, c := range ranked {
		cumulative += c.Commits
		if float64(cumulative) >= float64(total)/2 {
			report.BusFactor = i + 1
			break
		}
	}
	report.ConcentrationFactor = float64(report.BusFactor)
	report.TopContributor = ranked[0].Author
	report.TopContributorShare = round1(float64(ranked[0].Commits) / float64(total) * 100)
	report.Risk = ownershipRisk(report.BusFactor)
	return report
}

func ownershipRisk(busFactor int) entity.Severity {
	switch {
	case busFactor <= 1:
		return entity.SeverityCritical
	case busFactor == 2:
		return entity.SeverityHigh
	case busFactor <= 4:
		return entity.SeverityMedium
	default:
		return entity.SeverityLow
	}
}
