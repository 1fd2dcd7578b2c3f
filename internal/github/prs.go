package github

import (
	"context"
	"fmt"
	"strings"
	"time"

	gh "github.com/google/go-github/v61/github"

	"github.com/nathannewyen/contribfeed/internal/constants"
	"github.com/nathannewyen/contribfeed/internal/format"
	"github.com/nathannewyen/contribfeed/internal/log"
	"github.com/nathannewyen/contribfeed/internal/model"
	"github.com/nathannewyen/contribfeed/internal/normalize"
	"github.com/nathannewyen/contribfeed/internal/urlutil"
)

// SearchPullRequests fetches all pull requests authored by the client's
// user across every repository in one large search page. PRs against the
// user's own repositories are filtered out; only third-party contributions
// count. A rate-limited response degrades to an empty list instead of
// failing the whole pipeline.
func (c *Client) SearchPullRequests(ctx context.Context) ([]model.Contribution, error) {
	query := fmt.Sprintf("author:%s type:pr", c.username)

	opts := &gh.SearchOptions{
		Sort:  "created",
		Order: "desc",
		ListOptions: gh.ListOptions{
			PerPage: constants.SearchPageSize,
		},
	}

	result, resp, err := c.client.Search.Issues(ctx, query, opts)
	if err != nil {
		if isRateLimited(err, resp) {
			log.Warn("GitHub search rate limited, returning no pull requests")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to search for authored PRs: %w", err)
	}

	contributions := make([]model.Contribution, 0, len(result.Issues))
	for _, issue := range result.Issues {
		repo, err := urlutil.RepoFromAPIURL(issue.GetRepositoryURL())
		if err != nil {
			log.Debug("skipping PR with unparseable repository URL", "url", issue.GetRepositoryURL())
			continue
		}

		owner, _, _ := strings.Cut(repo, "/")
		if strings.EqualFold(owner, c.username) {
			continue
		}

		contributions = append(contributions, c.prToContribution(issue, repo))
	}

	return contributions, nil
}

// prToContribution maps one search result to the shared contribution shape.
func (c *Client) prToContribution(issue *gh.Issue, repo string) model.Contribution {
	var mergedAt *time.Time
	if links := issue.GetPullRequestLinks(); links != nil && links.MergedAt != nil {
		t := links.MergedAt.Time
		mergedAt = &t
	}

	summary := format.Truncate(issue.GetBody(), constants.SummaryMaxLength)
	if summary == "" {
		summary = "No description provided."
	}

	// Last activity is the merge time when merged, otherwise the most
	// recent update.
	activity := issue.GetUpdatedAt().Time
	if mergedAt != nil {
		activity = *mergedAt
	}

	return model.Contribution{
		ID:               normalize.PullRequestID(repo, issue.GetNumber()),
		Repo:             repo,
		DisplayGroup:     c.grouping.DisplayGroup(repo),
		Kind:             model.KindPullRequest,
		Title:            issue.GetTitle(),
		Summary:          summary,
		URL:              issue.GetHTMLURL(),
		CreatedDate:      normalize.LocalDate(issue.GetCreatedAt().Time),
		LastActivityDate: normalize.LocalDate(activity),
		Status:           normalize.GitHubStatus(mergedAt, issue.GetState()),
		ChangedFiles:     []string{},
		Source:           model.SourceGitHub,
	}
}
