package github

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nathannewyen/contribfeed/internal/format"
	"github.com/nathannewyen/contribfeed/internal/log"
	"github.com/nathannewyen/contribfeed/internal/model"
)

// ProjectStars fetches stargazer counts for the configured project list
// concurrently. A repo that fails keeps an empty star string; callers
// render whatever came back.
func (c *Client) ProjectStars(ctx context.Context, repos []string) ([]model.Project, error) {
	projects := make([]model.Project, len(repos))
	for i, repo := range repos {
		projects[i] = model.Project{Repo: repo}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, repo := range repos {
		i, repo := i, repo
		owner, name, found := strings.Cut(repo, "/")
		if !found {
			log.Warn("skipping project without owner segment", "repo", repo)
			continue
		}

		g.Go(func() error {
			r, _, err := c.client.Repositories.Get(gctx, owner, name)
			if err != nil {
				log.Debug("star count fetch failed", "repo", repo, "error", err)
				return nil
			}
			projects[i].Stars = format.StarCount(r.GetStargazersCount())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return projects, err
	}
	return projects, nil
}
