package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/nathannewyen/contribfeed/internal/log"
	"github.com/nathannewyen/contribfeed/internal/model"
	"github.com/nathannewyen/contribfeed/internal/urlutil"
)

// EnrichPullRequest re-fetches a single already-normalized pull request to
// fill in line counts and a changed-file count. Enrichment is best-effort:
// any failure returns the original contribution unchanged, and the ID,
// repo, and created date are never touched.
func (c *Client) EnrichPullRequest(ctx context.Context, contribution model.Contribution) model.Contribution {
	owner, name, found := strings.Cut(contribution.Repo, "/")
	if !found {
		return contribution
	}

	number, err := urlutil.ExtractNumber(contribution.URL)
	if err != nil {
		log.Debug("cannot extract PR number for enrichment", "id", contribution.ID, "url", contribution.URL)
		return contribution
	}

	pr, _, err := c.client.PullRequests.Get(ctx, owner, name, number)
	if err != nil {
		log.Debug("PR detail fetch failed", "id", contribution.ID, "error", err)
		return contribution
	}

	enriched := contribution
	enriched.LinesAdded = pr.GetAdditions()
	enriched.LinesRemoved = pr.GetDeletions()
	if files := pr.GetChangedFiles(); files > 0 {
		enriched.ChangedFiles = []string{fmt.Sprintf("%d files", files)}
	}
	return enriched
}
