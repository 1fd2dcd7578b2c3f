// Package github adapts the GitHub REST/Search API into the shared
// contribution model. It is the only package that sees GitHub wire shapes.
package github

import (
	"context"
	"net/http"
	"strconv"
	"time"

	gh "github.com/google/go-github/v61/github"
	"golang.org/x/oauth2"

	"github.com/nathannewyen/contribfeed/internal/constants"
	"github.com/nathannewyen/contribfeed/internal/log"
	"github.com/nathannewyen/contribfeed/internal/normalize"
)

// quotaLogTransport wraps an http.RoundTripper to watch GitHub rate limit
// headers. It never blocks a request; the adapters decide how to degrade
// when the quota is actually exhausted.
type quotaLogTransport struct {
	base http.RoundTripper
}

func (t *quotaLogTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	remaining, resetAt := parseRateLimitHeaders(resp)
	if remaining >= 0 && remaining <= constants.RateLimitLowWatermark {
		log.Warn("GitHub rate limit low", "remaining", remaining, "resets_at", resetAt.Format(time.RFC3339))
	}

	return resp, nil
}

// parseRateLimitHeaders extracts rate limit info from response headers.
func parseRateLimitHeaders(resp *http.Response) (remaining int, resetAt time.Time) {
	remaining = -1

	if remainingStr := resp.Header.Get("X-RateLimit-Remaining"); remainingStr != "" {
		if rem, err := strconv.Atoi(remainingStr); err == nil {
			remaining = rem
		}
	}

	if resetStr := resp.Header.Get("X-RateLimit-Reset"); resetStr != "" {
		if resetTime, err := strconv.ParseInt(resetStr, 10, 64); err == nil {
			resetAt = time.Unix(resetTime, 0)
		}
	}

	return remaining, resetAt
}

// Client wraps the GitHub API client for one fixed identity.
type Client struct {
	client   *gh.Client
	username string
	grouping normalize.Grouping
}

// NewClient creates a GitHub client for the given user. The token is
// optional; without one the client runs against the unauthenticated quota.
func NewClient(ctx context.Context, username, token string, grouping normalize.Grouping) *Client {
	var hc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(ctx, ts)
		hc.Transport = &quotaLogTransport{base: hc.Transport}
	} else {
		hc = &http.Client{Transport: &quotaLogTransport{}}
	}

	return &Client{
		client:   gh.NewClient(hc),
		username: username,
		grouping: grouping,
	}
}

// isRateLimited reports whether an API error is a quota rejection.
// GitHub signals these as 403 (legacy) or as typed rate limit errors.
func isRateLimited(err error, resp *gh.Response) bool {
	if _, ok := err.(*gh.RateLimitError); ok {
		return true
	}
	if _, ok := err.(*gh.AbuseRateLimitError); ok {
		return true
	}
	if resp != nil && resp.StatusCode == http.StatusForbidden {
		return true
	}
	return false
}
