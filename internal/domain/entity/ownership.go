package entity

// AuthorCommits is one contributor's commit count within the analyzed
// window.
type AuthorCommits struct {
	Author  string `json:"author"`
	Commits int    `json:"commits"`
}

// OwnershipReport is a commit-concentration analysis: how few people
// carry the repository. BusFactor is the minimum number of authors
// whose combined commits reach at least half the volume.
type OwnershipReport struct {
	TotalCommits        int             `json:"total_commits"`
	TotalAuthors        int             `json:"total_authors"`
	BusFactor           int             `json:"bus_factor"`
	ConcentrationFactor float64         `json:"concentration_factor"`
	TopContributor      string          `json:"top_contributor,omitempty"`
	TopContributorShare float64         `json:"top_contributor_share"`
	Risk                Severity        `json:"risk"`
	Contributors        []AuthorCommits `json:"contributors,omitempty"`
}
