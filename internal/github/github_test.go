package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/nathannewyen/contribfeed/internal/model"
	"github.com/nathannewyen/contribfeed/internal/normalize"
)

// newTestClient points a Client at a fake GitHub API server.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(context.Background(), "nathannewyen", "", normalize.Grouping{
		Repos: map[string]string{"kubernetes/kubernetes": "Kubernetes"},
		Orgs:  map[string]string{"langchain-ai": "LangChain"},
	})
	base, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	c.client.BaseURL = base
	return c, srv
}

const searchPayload = `{
  "total_count": 4,
  "items": [
    {
      "number": 7421,
      "title": "Fix selector parsing",
      "body": "Long description here.",
      "html_url": "https://github.com/stylelint/stylelint/pull/7421",
      "created_at": "2025-06-01T22:30:00Z",
      "updated_at": "2025-06-03T10:00:00Z",
      "state": "closed",
      "repository_url": "https://api.github.com/repos/stylelint/stylelint",
      "pull_request": {"merged_at": "2025-06-03T10:00:00Z"}
    },
    {
      "number": 55,
      "title": "Rejected change",
      "body": "",
      "html_url": "https://github.com/langchain-ai/langchain/pull/55",
      "created_at": "2025-05-10T08:00:00Z",
      "updated_at": "2025-05-11T08:00:00Z",
      "state": "closed",
      "repository_url": "https://api.github.com/repos/langchain-ai/langchain",
      "pull_request": {"merged_at": null}
    },
    {
      "number": 9,
      "title": "Still in review",
      "body": "WIP",
      "html_url": "https://github.com/kubernetes/kubernetes/pull/9",
      "created_at": "2025-07-20T01:00:00Z",
      "updated_at": "2025-07-20T02:00:00Z",
      "state": "open",
      "repository_url": "https://api.github.com/repos/kubernetes/kubernetes",
      "pull_request": {"merged_at": null}
    },
    {
      "number": 1,
      "title": "Self contribution",
      "body": "",
      "html_url": "https://github.com/nathannewyen/portfolio/pull/1",
      "created_at": "2025-07-01T00:00:00Z",
      "updated_at": "2025-07-01T00:00:00Z",
      "state": "open",
      "repository_url": "https://api.github.com/repos/nathannewyen/portfolio",
      "pull_request": {"merged_at": null}
    }
  ]
}`

func TestSearchPullRequests(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/issues" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if got := q.Get("q"); got != "author:nathannewyen type:pr" {
			t.Errorf("unexpected query %q", got)
		}
		if got := q.Get("per_page"); got != "100" {
			t.Errorf("unexpected per_page %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, searchPayload)
	}))

	got, err := c.SearchPullRequests(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The self-owned repo PR is filtered out.
	if len(got) != 3 {
		t.Fatalf("expected 3 contributions, got %d", len(got))
	}

	wantStatuses := []model.Status{model.StatusMerged, model.StatusClosed, model.StatusOpen}
	for i, want := range wantStatuses {
		if got[i].Status != want {
			t.Errorf("contribution %d: status = %q, want %q", i, got[i].Status, want)
		}
	}

	first := got[0]
	if first.ID != "gh-stylelint/stylelint-7421" {
		t.Errorf("id = %q", first.ID)
	}
	if first.Kind != model.KindPullRequest {
		t.Errorf("kind = %q", first.Kind)
	}
	if first.Source != model.SourceGitHub {
		t.Errorf("source = %q", first.Source)
	}
	if first.DisplayGroup != "stylelint" {
		t.Errorf("displayGroup = %q", first.DisplayGroup)
	}
	if got[1].DisplayGroup != "LangChain" {
		t.Errorf("org grouping not applied, got %q", got[1].DisplayGroup)
	}
	if got[1].Summary != "No description provided." {
		t.Errorf("empty body should fall back, got %q", got[1].Summary)
	}

	created, _ := time.Parse(time.RFC3339, "2025-06-01T22:30:00Z")
	if first.CreatedDate != normalize.LocalDate(created) {
		t.Errorf("createdDate = %q, want local date of %v", first.CreatedDate, created)
	}
	merged, _ := time.Parse(time.RFC3339, "2025-06-03T10:00:00Z")
	if first.LastActivityDate != normalize.LocalDate(merged) {
		t.Errorf("lastActivityDate = %q, want merge date", first.LastActivityDate)
	}
}

func TestSearchPullRequestsIdempotentIdentity(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, searchPayload)
	})
	c, _ := newTestClient(t, handler)

	first, err := c.SearchPullRequests(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.SearchPullRequests(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("id changed across fetches: %q vs %q", first[i].ID, second[i].ID)
		}
	}
}

func TestSearchPullRequestsRateLimitDegrades(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Reset", "1750000000")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "API rate limit exceeded"}`)
	}))

	got, err := c.SearchPullRequests(context.Background())
	if err != nil {
		t.Fatalf("rate limit should degrade, not fail: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d items", len(got))
	}
}

func TestSearchPullRequestsServerErrorFails(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	if _, err := c.SearchPullRequests(context.Background()); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestEnrichPullRequest(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/stylelint/stylelint/pulls/7421" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"number": 7421, "additions": 120, "deletions": 40, "changed_files": 6}`)
	}))

	original := model.Contribution{
		ID:           "gh-stylelint/stylelint-7421",
		Repo:         "stylelint/stylelint",
		URL:          "https://github.com/stylelint/stylelint/pull/7421",
		CreatedDate:  "2025-06-01",
		ChangedFiles: []string{},
	}

	got := c.EnrichPullRequest(context.Background(), original)

	if got.LinesAdded != 120 || got.LinesRemoved != 40 {
		t.Errorf("line counts = +%d/-%d, want +120/-40", got.LinesAdded, got.LinesRemoved)
	}
	if len(got.ChangedFiles) != 1 || got.ChangedFiles[0] != "6 files" {
		t.Errorf("changedFiles = %v, want [\"6 files\"]", got.ChangedFiles)
	}

	// Enrichment must never change identity fields.
	if got.ID != original.ID || got.Repo != original.Repo || got.CreatedDate != original.CreatedDate {
		t.Errorf("enrichment changed identity fields: %+v", got)
	}
}

func TestEnrichPullRequestFailureReturnsOriginal(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	original := model.Contribution{
		ID:   "gh-stylelint/stylelint-7421",
		Repo: "stylelint/stylelint",
		URL:  "https://github.com/stylelint/stylelint/pull/7421",
	}

	got := c.EnrichPullRequest(context.Background(), original)
	if got.LinesAdded != 0 || got.LinesRemoved != 0 {
		t.Errorf("failed enrichment should keep defaults, got %+v", got)
	}
	if got.ID != original.ID {
		t.Errorf("id changed on failure path")
	}
}

func TestListOwnRepoCommits(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/nathannewyen/gitcraft/commits":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `[
			  {
			    "sha": "abcdef1234567890",
			    "html_url": "https://github.com/nathannewyen/gitcraft/commit/abcdef1",
			    "commit": {
			      "message": "Add terrain generation\n\nUses simplex noise.",
			      "author": {"date": "2025-04-02T09:00:00Z"}
			    }
			  }
			]`)
		case "/repos/nathannewyen/broken/commits":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	got, err := c.ListOwnRepoCommits(context.Background(), []string{"nathannewyen/broken", "nathannewyen/gitcraft"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The broken repo is skipped, not fatal.
	if len(got) != 1 {
		t.Fatalf("expected 1 commit, got %d", len(got))
	}

	commit := got[0]
	if commit.ID != "commit-nathannewyen/gitcraft-abcdef1" {
		t.Errorf("id = %q", commit.ID)
	}
	if commit.Kind != model.KindCommit {
		t.Errorf("kind = %q", commit.Kind)
	}
	if commit.Status != model.StatusMerged {
		t.Errorf("commit status must always be merged, got %q", commit.Status)
	}
	if commit.Title != "Add terrain generation" {
		t.Errorf("title = %q", commit.Title)
	}
	if commit.Summary != "Uses simplex noise." {
		t.Errorf("summary = %q", commit.Summary)
	}
	if commit.LastActivityDate != commit.CreatedDate {
		t.Errorf("commit activity date should equal created date")
	}
}

func TestProjectStars(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/nathannewyen/gitcraft":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"stargazers_count": 1234}`)
		case "/repos/nathannewyen/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	got, err := c.ProjectStars(context.Background(), []string{"nathannewyen/gitcraft", "nathannewyen/missing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(got))
	}
	if got[0].Stars != "1.2k" {
		t.Errorf("stars = %q, want 1.2k", got[0].Stars)
	}
	if got[1].Stars != "" {
		t.Errorf("failed fetch should leave stars empty, got %q", got[1].Stars)
	}
}
