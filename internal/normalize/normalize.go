// Package normalize maps raw upstream identifiers, timestamps, and states
// into the shared contribution vocabulary. Every date and identity key in
// the pipeline is produced here so list filtering and heatmap bucketing
// always agree.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/nathannewyen/contribfeed/internal/model"
)

// DateLayout is the calendar date format used across the pipeline.
const DateLayout = "2006-01-02"

// LocalDate converts an upstream timestamp to the viewer-local calendar
// date. The heatmap and the list view both key on this value; using one
// rule for every source is what makes cell-click filtering line up.
func LocalDate(t time.Time) string {
	return t.In(time.Local).Format(DateLayout)
}

// PullRequestID builds the deterministic identity key for a GitHub PR.
func PullRequestID(repo string, number int) string {
	return fmt.Sprintf("gh-%s-%d", repo, number)
}

// CommitID builds the deterministic identity key for a commit. The short
// hash keeps keys stable across re-fetches of the same commit.
func CommitID(repo, sha string) string {
	if len(sha) > 7 {
		sha = sha[:7]
	}
	return fmt.Sprintf("commit-%s-%s", repo, sha)
}

// GerritChangeID builds the deterministic identity key for a Gerrit change.
func GerritChangeID(project string, number int) string {
	return fmt.Sprintf("gerrit-%s-%d", project, number)
}

// GitHubStatus resolves a PR's state and merge timestamp into the shared
// status vocabulary. Precedence: a merge timestamp wins over everything,
// even a raw state of "closed".
func GitHubStatus(mergedAt *time.Time, state string) model.Status {
	switch {
	case mergedAt != nil && !mergedAt.IsZero():
		return model.StatusMerged
	case state == "closed":
		return model.StatusClosed
	default:
		return model.StatusOpen
	}
}

// GerritStatus maps a Gerrit change status to the shared vocabulary.
func GerritStatus(status string) model.Status {
	switch status {
	case "MERGED":
		return model.StatusMerged
	case "ABANDONED":
		return model.StatusClosed
	default:
		return model.StatusOpen
	}
}

// Grouping collapses raw repository paths into human-facing project labels.
// Exact repo overrides win, then organization-prefix grouping, then the
// repo's own name.
type Grouping struct {
	// Repos maps full repo paths ("owner/name") to display labels.
	Repos map[string]string
	// Orgs maps owner segments to display labels covering every repo
	// under that owner.
	Orgs map[string]string
}

// DisplayGroup returns the project label for a raw repository identifier.
// Identifiers without a path separator (Gerrit projects) fall through to
// the raw value when no override matches.
func (g Grouping) DisplayGroup(repo string) string {
	if name, ok := g.Repos[repo]; ok {
		return name
	}

	owner, rest, found := strings.Cut(repo, "/")
	if name, ok := g.Orgs[owner]; ok {
		return name
	}
	if !found {
		return repo
	}
	return rest
}
