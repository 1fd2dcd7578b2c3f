package github

import (
	"context"
	"strings"

	gh "github.com/google/go-github/v61/github"

	"github.com/nathannewyen/contribfeed/internal/constants"
	"github.com/nathannewyen/contribfeed/internal/format"
	"github.com/nathannewyen/contribfeed/internal/log"
	"github.com/nathannewyen/contribfeed/internal/model"
	"github.com/nathannewyen/contribfeed/internal/normalize"
)

// ListOwnRepoCommits lists recent commits from an explicit allow-list of
// the user's own repositories. The list is normally empty: the timeline
// shows third-party contributions by default, and own repos opt in one by
// one. A repository that fails to list is skipped, not fatal.
func (c *Client) ListOwnRepoCommits(ctx context.Context, repos []string) ([]model.Contribution, error) {
	var contributions []model.Contribution

	for _, repo := range repos {
		owner, name, found := strings.Cut(repo, "/")
		if !found {
			log.Warn("skipping own repo without owner segment", "repo", repo)
			continue
		}

		opts := &gh.CommitsListOptions{
			ListOptions: gh.ListOptions{PerPage: constants.CommitsPerPage},
		}
		commits, resp, err := c.client.Repositories.ListCommits(ctx, owner, name, opts)
		if err != nil {
			if isRateLimited(err, resp) {
				log.Warn("GitHub commit listing rate limited", "repo", repo)
				continue
			}
			log.Warn("failed to list commits", "repo", repo, "error", err)
			continue
		}

		for _, commit := range commits {
			contributions = append(contributions, c.commitToContribution(commit, repo))
		}
	}

	return contributions, nil
}

// commitToContribution maps one listed commit to the shared shape. Commits
// have no review lifecycle, so status is always merged and the activity
// date equals the created date.
func (c *Client) commitToContribution(commit *gh.RepositoryCommit, repo string) model.Contribution {
	message := commit.GetCommit().GetMessage()
	date := normalize.LocalDate(commit.GetCommit().GetAuthor().GetDate().Time)

	return model.Contribution{
		ID:               normalize.CommitID(repo, commit.GetSHA()),
		Repo:             repo,
		DisplayGroup:     c.grouping.DisplayGroup(repo),
		Kind:             model.KindCommit,
		Title:            format.FirstLine(message),
		Summary:          format.Truncate(format.Body(message), constants.SummaryMaxLength),
		URL:              commit.GetHTMLURL(),
		CreatedDate:      date,
		LastActivityDate: date,
		Status:           model.StatusMerged,
		LinesAdded:       commit.GetStats().GetAdditions(),
		LinesRemoved:     commit.GetStats().GetDeletions(),
		ChangedFiles:     []string{},
		Source:           model.SourceGitHub,
	}
}
