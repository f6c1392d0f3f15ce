package entity

import "time"

// PullRequestRecord is one collected pull request lifecycle record.
// Produced by the upstream PR collector; the core reads it and never
// mutates it. CreatedAt is mandatory, the other timestamps are set
// only when the corresponding lifecycle event happened.
type PullRequestRecord struct {
	ID            string     `json:"id"`
	Number        int        `json:"number"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	Status        PRStatus   `json:"status"`
	CreatedAt     *time.Time `json:"created_at"`
	FirstReviewAt *time.Time `json:"first_review_at,omitempty"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
	MergedAt      *time.Time `json:"merged_at,omitempty"`
	FilesChanged  int        `json:"files_changed"`
	Additions     int        `json:"additions"`
	Deletions     int        `json:"deletions"`
}

type PRStatus string

const (
	PROpen   PRStatus = "open"
	PRClosed PRStatus = "closed"
	PRMerged PRStatus = "merged"
)

// AnalysisKey identifies whose rolling history an analysis run belongs
// to. Org, team and repo are opaque labels to the core.
type AnalysisKey struct {
	Org  string `json:"org"`
	Team string `json:"team"`
	Repo string `json:"repo"`
}

func (k AnalysisKey) String() string {
	return k.Org + "/" + k.Team + "/" + k.Repo
}
