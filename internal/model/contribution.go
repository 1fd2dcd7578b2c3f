// Package model contains domain types for the contribution pipeline.
// These types are independent of any upstream API library; each source
// adapter maps its own wire format into them.
package model

// Source identifies the upstream system a contribution came from.
type Source string

const (
	SourceGitHub Source = "github"
	SourceGerrit Source = "gerrit"
)

// AllSources contains all valid contribution sources.
// This is the single source of truth for valid source values.
var AllSources = []Source{
	SourceGitHub,
	SourceGerrit,
}

// Kind represents the type of work a contribution captures.
type Kind string

const (
	KindPullRequest Kind = "pull-request"
	KindCommit      Kind = "commit"
	KindIssue       Kind = "issue"
)

// Status represents the review lifecycle state of a contribution.
// Commits have no review lifecycle and are always StatusMerged.
type Status string

const (
	StatusMerged Status = "merged"
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Contribution is one normalized unit of external open-source activity.
//
// ID is deterministic from the upstream item: re-fetching the same item
// always yields the same ID. CreatedDate and LastActivityDate are local
// calendar dates in YYYY-MM-DD form; see normalize.LocalDate for the rule.
type Contribution struct {
	ID           string `json:"id"`
	Repo         string `json:"repo"`
	DisplayGroup string `json:"displayGroup"`
	Kind         Kind   `json:"kind"`
	Title        string `json:"title"`
	Summary      string `json:"summary"`
	URL          string `json:"url"`
	CreatedDate  string `json:"createdDate"`

	// LastActivityDate is empty when the source has no separate update
	// timestamp; sorting falls back to CreatedDate.
	LastActivityDate string   `json:"lastActivityDate,omitempty"`
	Status           Status   `json:"status"`
	LinesAdded       int      `json:"linesAdded"`
	LinesRemoved     int      `json:"linesRemoved"`
	ChangedFiles     []string `json:"changedFiles"`
	Source           Source   `json:"source"`
}

// ActivityDate returns the date used for "recently updated" ordering.
func (c Contribution) ActivityDate() string {
	if c.LastActivityDate != "" {
		return c.LastActivityDate
	}
	return c.CreatedDate
}

// Project is a repository whose star count is displayed alongside the
// contribution timeline.
type Project struct {
	Repo  string `json:"repo"`
	Stars string `json:"stars"`
}
