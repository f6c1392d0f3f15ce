package analysis

import "github.com/flowradar/flowradar/internal/domain/entity"

// Stage-specific guidance shared by the detector (constraint
// recommendations), the root-cause analyzer (generic causes,
// long-term improvements) and the predictive analyzer (mitigation
// strategies).

var stageRecommendations = map[string][]string{
	entity.StageFirstReview: {
		"Set up review SLAs and surface PRs waiting longest for a first look",
		"Add reviewers to the rotation or rebalance review load across the team",
		"Enable automatic reviewer assignment so PRs never wait unowned",
	},
	entity.StageApproval: {
		"Reduce the number of required approvals where policy allows",
		"Clarify approval ownership so PRs are not waiting on the wrong person",
		"Batch approval passes at fixed times of day to cut idle waiting",
	},
	entity.StageMerge: {
		"Enable auto-merge once approvals and checks are green",
		"Speed up CI by splitting slow suites and caching dependencies",
		"Reduce merge queue contention by merging smaller batches more often",
	},
}

var degradingTrendRecommendations = []string{
	"Investigate what changed recently: team size, review policy, CI configuration",
	"Compare this period's PR mix against the previous one for size or scope shifts",
}

var criticalSeverityRecommendations = []string{
	"Treat this stage as the active constraint: pause non-urgent work entering it",
	"Assign an owner to drive the queue down until the stage leaves critical",
}

var stageGenericCauses = map[string]string{
	entity.StageFirstReview: "Insufficient reviewer capacity for the incoming PR volume",
	entity.StageApproval:    "Approval process complexity or unclear approval ownership",
	entity.StageMerge:       "Merge or CI pipeline delays after approval",
}

var longTermImprovementsBase = []string{
	"Track stage durations per team and review them in retrospectives",
	"Adopt working agreements on PR size and review turnaround",
	"Automate whatever the team repeatedly waits on",
}

var stageLongTermImprovements = map[string][]string{
	entity.StageFirstReview: {
		"Grow the reviewer pool through pairing and domain documentation",
	},
	entity.StageApproval: {
		"Revisit branch protection rules against the team's actual risk profile",
	},
	entity.StageMerge: {
		"Invest in CI reliability and speed as a first-class engineering project",
	},
}

// stageMitigations mirrors the root-cause action lists for the
// predictive side.
var stageMitigations = map[string][]string{
	entity.StageFirstReview: {
		"Rebalance review assignments before the queue grows",
		"Remind reviewers of pending PRs approaching the review SLA",
	},
	entity.StageApproval: {
		"Pre-approve low-risk changes via policy instead of manual sign-off",
		"Escalate PRs blocked on a single approver",
	},
	entity.StageMerge: {
		"Keep the merge queue short: merge as soon as checks pass",
		"Watch CI duration and flakiness on the main branch",
	},
}
