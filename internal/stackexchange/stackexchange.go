// Package stackexchange adapts the Stack Exchange API into the profile
// answer model. Answers and question metadata come from two endpoints and
// are joined client-side by question id.
package stackexchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/nathannewyen/contribfeed/internal/constants"
	"github.com/nathannewyen/contribfeed/internal/log"
	"github.com/nathannewyen/contribfeed/internal/model"
)

// response is the Stack Exchange API envelope.
type response[T any] struct {
	Items          []T  `json:"items"`
	HasMore        bool `json:"has_more"`
	QuotaRemaining int  `json:"quota_remaining"`
}

type answerItem struct {
	AnswerID     int64 `json:"answer_id"`
	QuestionID   int64 `json:"question_id"`
	IsAccepted   bool  `json:"is_accepted"`
	Score        int   `json:"score"`
	CreationDate int64 `json:"creation_date"`
}

type questionItem struct {
	QuestionID int64    `json:"question_id"`
	Title      string   `json:"title"`
	Tags       []string `json:"tags"`
}

type userItem struct {
	DisplayName string `json:"display_name"`
	Reputation  int    `json:"reputation"`
	BadgeCounts struct {
		Gold   int `json:"gold"`
		Silver int `json:"silver"`
		Bronze int `json:"bronze"`
	} `json:"badge_counts"`
	ProfileImage string `json:"profile_image"`
}

// Client queries one Stack Exchange site for one user.
type Client struct {
	baseURL  string
	linkBase string
	userID   string
	site     string
	key      string
	hc       *http.Client
}

// ownDomainSites are the network sites that live on their own domain
// instead of under stackexchange.com.
var ownDomainSites = map[string]string{
	"stackoverflow": "https://stackoverflow.com",
	"serverfault":   "https://serverfault.com",
	"superuser":     "https://superuser.com",
	"askubuntu":     "https://askubuntu.com",
	"mathoverflow":  "https://mathoverflow.net",
	"stackapps":     "https://stackapps.com",
}

// linkBaseForSite returns the public site root the API site parameter
// maps to, used to build answer permalinks.
func linkBaseForSite(site string) string {
	if base, ok := ownDomainSites[site]; ok {
		return base
	}
	return fmt.Sprintf("https://%s.stackexchange.com", site)
}

// NewClient creates a Stack Exchange client. The API key is optional and
// only raises the request quota.
func NewClient(userID, site, key string) *Client {
	return &Client{
		baseURL:  "https://api.stackexchange.com",
		linkBase: linkBaseForSite(site),
		userID:   userID,
		site:     site,
		key:      key,
		hc:       http.DefaultClient,
	}
}

// FetchAnswers returns the user's top answers by score, each joined with
// its question's title and tags. The question-detail call is best-effort:
// when it fails, titles fall back to "Question #{id}" and tags stay empty
// rather than failing the whole fetch.
func (c *Client) FetchAnswers(ctx context.Context) ([]model.ProfileAnswer, error) {
	var answersResp response[answerItem]
	params := url.Values{
		"order":    {"desc"},
		"sort":     {"votes"},
		"site":     {c.site},
		"pagesize": {strconv.Itoa(constants.AnswerPageSize)},
	}
	if err := c.get(ctx, fmt.Sprintf("/2.3/users/%s/answers", c.userID), params, &answersResp); err != nil {
		return nil, err
	}

	if len(answersResp.Items) == 0 {
		return []model.ProfileAnswer{}, nil
	}

	questions := c.fetchQuestions(ctx, answersResp.Items)

	answers := make([]model.ProfileAnswer, 0, len(answersResp.Items))
	for _, item := range answersResp.Items {
		answer := model.ProfileAnswer{
			ID:         item.AnswerID,
			QuestionID: item.QuestionID,
			IsAccepted: item.IsAccepted,
			Score:      item.Score,
			// The answers endpoint has no permalink field; the canonical
			// short URL is derived from the numeric answer id.
			URL:           fmt.Sprintf("%s/a/%d", c.linkBase, item.AnswerID),
			CreatedAt:     item.CreationDate,
			QuestionTitle: fmt.Sprintf("Question #%d", item.QuestionID),
			Tags:          []string{},
		}
		if q, ok := questions[item.QuestionID]; ok {
			answer.QuestionTitle = q.Title
			if q.Tags != nil {
				answer.Tags = q.Tags
			}
		}
		answers = append(answers, answer)
	}

	return answers, nil
}

// fetchQuestions batch-fetches question metadata for all answered question
// ids in one call. Failure returns an empty map; the caller falls back to
// placeholder titles.
func (c *Client) fetchQuestions(ctx context.Context, items []answerItem) map[int64]questionItem {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, strconv.FormatInt(item.QuestionID, 10))
	}

	var questionsResp response[questionItem]
	params := url.Values{"site": {c.site}}
	err := c.get(ctx, "/2.3/questions/"+strings.Join(ids, ";"), params, &questionsResp)
	if err != nil {
		log.Debug("question detail fetch failed, using placeholders", "error", err)
		return map[int64]questionItem{}
	}

	questions := make(map[int64]questionItem, len(questionsResp.Items))
	for _, q := range questionsResp.Items {
		questions[q.QuestionID] = q
	}
	return questions
}

// FetchUser returns the user's profile, or nil when the API has no record.
func (c *Client) FetchUser(ctx context.Context) (*model.ProfileUser, error) {
	var userResp response[userItem]
	params := url.Values{"site": {c.site}}
	if err := c.get(ctx, "/2.3/users/"+c.userID, params, &userResp); err != nil {
		return nil, err
	}

	if len(userResp.Items) == 0 {
		return nil, nil
	}

	item := userResp.Items[0]
	return &model.ProfileUser{
		DisplayName: item.DisplayName,
		Reputation:  item.Reputation,
		BadgeCounts: model.BadgeCounts{
			Gold:   item.BadgeCounts.Gold,
			Silver: item.BadgeCounts.Silver,
			Bronze: item.BadgeCounts.Bronze,
		},
		ProfileImage: item.ProfileImage,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if c.key != "" {
		params.Set("key", c.key)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("stack exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stack exchange API error: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("malformed stack exchange payload: %w", err)
	}
	return nil
}
