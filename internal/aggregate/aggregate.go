// Package aggregate fans out to every contribution source concurrently,
// runs the bounded enrichment pass, and merges the results into one
// globally sorted timeline.
package aggregate

import (
	"context"
	"errors"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nathannewyen/contribfeed/internal/log"
	"github.com/nathannewyen/contribfeed/internal/model"
)

// ErrAllSourcesFailed is returned only when every launched source failed.
// A single failing source degrades to a smaller result set instead.
var ErrAllSourcesFailed = errors.New("all contribution sources failed")

// GitHubSource is the slice of the GitHub adapter the aggregator needs.
type GitHubSource interface {
	SearchPullRequests(ctx context.Context) ([]model.Contribution, error)
	ListOwnRepoCommits(ctx context.Context, repos []string) ([]model.Contribution, error)
	EnrichPullRequest(ctx context.Context, c model.Contribution) model.Contribution
}

// GerritSource is the slice of the Gerrit adapter the aggregator needs.
type GerritSource interface {
	FetchChanges(ctx context.Context) ([]model.Contribution, error)
}

// Aggregator merges all contribution sources into one timeline.
type Aggregator struct {
	github          GitHubSource
	gerrit          GerritSource
	ownRepos        []string
	enrichmentLimit int
}

// New creates an Aggregator. enrichmentLimit caps how many pull requests
// get a detail fetch per pass; ownRepos may be empty and gerrit may be
// nil when no Gerrit account is configured.
func New(github GitHubSource, gerrit GerritSource, ownRepos []string, enrichmentLimit int) *Aggregator {
	return &Aggregator{
		github:          github,
		gerrit:          gerrit,
		ownRepos:        ownRepos,
		enrichmentLimit: enrichmentLimit,
	}
}

// Aggregate fetches every source concurrently, tolerating per-source
// failure, enriches a bounded prefix of the GitHub pull requests, and
// returns the merged list sorted newest-first. Source completion order
// never leaks into the output order.
func (a *Aggregator) Aggregate(ctx context.Context) ([]model.Contribution, error) {
	var (
		mu       sync.Mutex
		prs      []model.Contribution
		changes  []model.Contribution
		commits  []model.Contribution
		launched int
		failed   int
	)

	fail := func(source string, err error) {
		log.Warn("contribution source failed", "source", source, "error", err)
		mu.Lock()
		failed++
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)

	launched++
	g.Go(func() error {
		items, err := a.github.SearchPullRequests(gctx)
		if err != nil {
			fail("github-prs", err)
			return nil
		}
		mu.Lock()
		prs = items
		mu.Unlock()
		return nil
	})

	if a.gerrit != nil {
		launched++
		g.Go(func() error {
			items, err := a.gerrit.FetchChanges(gctx)
			if err != nil {
				fail("gerrit", err)
				return nil
			}
			mu.Lock()
			changes = items
			mu.Unlock()
			return nil
		})
	}

	if len(a.ownRepos) > 0 {
		launched++
		g.Go(func() error {
			items, err := a.github.ListOwnRepoCommits(gctx, a.ownRepos)
			if err != nil {
				fail("github-commits", err)
				return nil
			}
			mu.Lock()
			commits = items
			mu.Unlock()
			return nil
		})
	}

	// Goroutines only return nil; Wait is for completion, not errors.
	_ = g.Wait()

	if failed == launched {
		return nil, ErrAllSourcesFailed
	}

	merged := make([]model.Contribution, 0, len(prs)+len(changes)+len(commits))
	merged = append(merged, prs...)
	merged = append(merged, changes...)
	merged = append(merged, commits...)

	merged = a.enrich(ctx, merged, prs)

	// Canonical default order: newest first, with the id as a stable
	// tiebreak so equal dates never reorder between runs.
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].CreatedDate != merged[j].CreatedDate {
			return merged[i].CreatedDate > merged[j].CreatedDate
		}
		return merged[i].ID < merged[j].ID
	})

	log.Info("aggregated contributions",
		"github_prs", len(prs),
		"gerrit", len(changes),
		"commits", len(commits),
		"failed_sources", failed)

	return merged, nil
}

// enrich runs the bounded detail pass over the first enrichmentLimit pull
// requests in search order and splices the enriched copies back in by id.
// Items past the cap keep their zero line-count defaults; that is the
// rate-limit trade-off, not an oversight.
func (a *Aggregator) enrich(ctx context.Context, merged, prs []model.Contribution) []model.Contribution {
	limit := a.enrichmentLimit
	if limit <= 0 || len(prs) == 0 {
		return merged
	}
	if limit > len(prs) {
		limit = len(prs)
	}

	enriched := make([]model.Contribution, limit)
	var wg sync.WaitGroup
	for i := 0; i < limit; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			// EnrichPullRequest is best-effort and never fails.
			enriched[i] = a.github.EnrichPullRequest(ctx, prs[i])
		}()
	}
	wg.Wait()

	byID := make(map[string]model.Contribution, limit)
	for _, c := range enriched {
		byID[c.ID] = c
	}

	for i := range merged {
		if c, ok := byID[merged[i].ID]; ok {
			merged[i] = c
		}
	}
	return merged
}
