// Package gerrit adapts a Gerrit code-review instance's change-search API
// into the shared contribution model. Gerrit prefixes JSON responses with
// an XSSI guard that must be stripped before parsing.
package gerrit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/nathannewyen/contribfeed/internal/constants"
	"github.com/nathannewyen/contribfeed/internal/log"
	"github.com/nathannewyen/contribfeed/internal/model"
	"github.com/nathannewyen/contribfeed/internal/normalize"
)

// xssiPrefix is the guard Gerrit prepends to every JSON response body.
const xssiPrefix = ")]}'"

// gerritTimeLayout is Gerrit's wire timestamp format (UTC).
const gerritTimeLayout = "2006-01-02 15:04:05.000000000"

// change is the subset of Gerrit's ChangeInfo entity this adapter reads.
type change struct {
	ID         string `json:"id"`
	Number     int    `json:"_number"`
	Subject    string `json:"subject"`
	Status     string `json:"status"`
	Created    string `json:"created"`
	Updated    string `json:"updated"`
	Insertions int    `json:"insertions"`
	Deletions  int    `json:"deletions"`
}

// Client queries one Gerrit instance for one owner's changes.
type Client struct {
	baseURL  string
	email    string
	project  string
	grouping normalize.Grouping
	hc       *http.Client
}

// NewClient creates a Gerrit client. baseURL is the instance root, e.g.
// "https://go-review.googlesource.com"; project is the single-segment
// repo key changes are attributed to.
func NewClient(baseURL, email, project string, grouping normalize.Grouping) *Client {
	return &Client{
		baseURL:  baseURL,
		email:    email,
		project:  project,
		grouping: grouping,
		hc:       http.DefaultClient,
	}
}

// FetchChanges lists the owner's most recent changes and maps them to
// contributions. A malformed payload is treated the same as an
// unavailable source: the caller sees an error and degrades to an empty
// result for this source only.
func (c *Client) FetchChanges(ctx context.Context) ([]model.Contribution, error) {
	apiURL := fmt.Sprintf("%s/changes/?q=owner:%s&n=%d&o=DETAILED_ACCOUNTS",
		c.baseURL, url.QueryEscape(c.email), constants.GerritChangeLimit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gerrit request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gerrit API error: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading gerrit response: %w", err)
	}

	changes, err := parseChanges(body)
	if err != nil {
		return nil, err
	}

	contributions := make([]model.Contribution, 0, len(changes))
	for _, ch := range changes {
		contributions = append(contributions, c.toContribution(ch))
	}
	return contributions, nil
}

// parseChanges strips the XSSI guard and decodes the change list.
func parseChanges(body []byte) ([]change, error) {
	trimmed := body
	if len(trimmed) >= len(xssiPrefix) && string(trimmed[:len(xssiPrefix)]) == xssiPrefix {
		trimmed = trimmed[len(xssiPrefix):]
		if len(trimmed) > 0 && trimmed[0] == '\n' {
			trimmed = trimmed[1:]
		}
	}

	var changes []change
	if err := json.Unmarshal(trimmed, &changes); err != nil {
		return nil, fmt.Errorf("malformed gerrit payload: %w", err)
	}
	return changes, nil
}

func (c *Client) toContribution(ch change) model.Contribution {
	return model.Contribution{
		ID:               normalize.GerritChangeID(c.project, ch.Number),
		Repo:             c.project,
		DisplayGroup:     c.grouping.DisplayGroup(c.project),
		Kind:             model.KindPullRequest,
		Title:            ch.Subject,
		Summary:          ch.Subject,
		URL:              fmt.Sprintf("%s/c/%s/+/%d", c.baseURL, c.project, ch.Number),
		CreatedDate:      c.localDate(ch.Created),
		LastActivityDate: c.localDate(ch.Updated),
		Status:           normalize.GerritStatus(ch.Status),
		LinesAdded:       ch.Insertions,
		LinesRemoved:     ch.Deletions,
		ChangedFiles:     []string{},
		Source:           model.SourceGerrit,
	}
}

// localDate converts a Gerrit UTC timestamp to the pipeline's viewer-local
// date rule. Gerrit dates go through the same rule as GitHub dates so the
// heatmap cell-click filter matches list rows from every source.
func (c *Client) localDate(ts string) string {
	t, err := time.ParseInLocation(gerritTimeLayout, ts, time.UTC)
	if err != nil {
		// Fall back to the raw date segment rather than dropping the item.
		log.Debug("unparseable gerrit timestamp", "value", ts)
		if len(ts) >= len(normalize.DateLayout) {
			return ts[:len(normalize.DateLayout)]
		}
		return ts
	}
	return normalize.LocalDate(t)
}
