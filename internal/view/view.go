// Package view holds the pure filter/sort/paginate functions over the
// normalized contribution list. No I/O happens here; the presentation
// layer calls in with plain values and renders what comes back.
package view

import (
	"sort"

	"github.com/nathannewyen/contribfeed/internal/model"
)

// Wildcard matches any value in a filter field. An empty field behaves
// the same way.
const Wildcard = "all"

// Filter is a conjunction of per-field matches over the contribution list.
type Filter struct {
	// Project matches either the display group or the raw repo path.
	Project string `json:"project"`
	Source  string `json:"source"`
	Status  string `json:"status"`
	// Date is the heatmap-selection hook: an exact CreatedDate match.
	Date string `json:"date"`
}

func match(want, got string) bool {
	return want == "" || want == Wildcard || want == got
}

// Matches reports whether a contribution passes every set field.
func (f Filter) Matches(c model.Contribution) bool {
	projectOK := f.Project == "" || f.Project == Wildcard ||
		f.Project == c.DisplayGroup || f.Project == c.Repo
	return projectOK &&
		match(f.Source, string(c.Source)) &&
		match(f.Status, string(c.Status)) &&
		match(f.Date, c.CreatedDate)
}

// Apply returns the contributions passing the filter, in input order.
func Apply(list []model.Contribution, f Filter) []model.Contribution {
	filtered := make([]model.Contribution, 0, len(list))
	for _, c := range list {
		if f.Matches(c) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// SortKey selects the timeline ordering.
type SortKey string

const (
	// SortNewest orders by created date, newest first. This is the
	// pipeline's canonical default.
	SortNewest SortKey = "newest"
	// SortOldest orders by created date, oldest first.
	SortOldest SortKey = "oldest"
	// SortRecentlyUpdated orders by last activity, newest first, falling
	// back to the created date for items without one.
	SortRecentlyUpdated SortKey = "updated"
)

// Sorted returns a sorted copy; the input is never mutated.
func Sorted(list []model.Contribution, key SortKey) []model.Contribution {
	out := make([]model.Contribution, len(list))
	copy(out, list)

	less := func(i, j int) bool { return out[i].CreatedDate > out[j].CreatedDate }
	switch key {
	case SortOldest:
		less = func(i, j int) bool { return out[i].CreatedDate < out[j].CreatedDate }
	case SortRecentlyUpdated:
		less = func(i, j int) bool { return out[i].ActivityDate() > out[j].ActivityDate() }
	}

	sort.SliceStable(out, less)
	return out
}

// Paginate slices one fixed-size page out of the list. Pages are
// 1-based; a page past the end is empty.
func Paginate(list []model.Contribution, page, perPage int) []model.Contribution {
	if page < 1 || perPage < 1 {
		return []model.Contribution{}
	}
	start := (page - 1) * perPage
	if start >= len(list) {
		return []model.Contribution{}
	}
	end := start + perPage
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}

// TotalPages returns the number of pages the list fills.
func TotalPages(total, perPage int) int {
	if perPage < 1 || total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// UniqueProjects lists the distinct display groups in first-seen order,
// for the project filter dropdown.
func UniqueProjects(list []model.Contribution) []string {
	seen := make(map[string]bool, len(list))
	projects := make([]string, 0, len(list))
	for _, c := range list {
		if !seen[c.DisplayGroup] {
			seen[c.DisplayGroup] = true
			projects = append(projects, c.DisplayGroup)
		}
	}
	return projects
}

// Query couples filter, sort, and page state. Any filter or sort change
// resets the page to 1 so the view never lands on an out-of-range page.
type Query struct {
	Filter  Filter  `json:"filter"`
	Sort    SortKey `json:"sort"`
	Page    int     `json:"page"`
	PerPage int     `json:"perPage"`
}

// NewQuery returns the default query: no filters, newest first, page 1.
func NewQuery(perPage int) Query {
	return Query{Sort: SortNewest, Page: 1, PerPage: perPage}
}

// WithFilter replaces the filter and resets to the first page.
func (q Query) WithFilter(f Filter) Query {
	q.Filter = f
	q.Page = 1
	return q
}

// WithSort replaces the sort key and resets to the first page.
func (q Query) WithSort(key SortKey) Query {
	q.Sort = key
	q.Page = 1
	return q
}

// WithPage moves to the given page, leaving filter and sort alone.
func (q Query) WithPage(page int) Query {
	if page < 1 {
		page = 1
	}
	q.Page = page
	return q
}

// ToggleDate selects a heatmap cell's date. Selecting the date already
// active clears the date filter; either way the page resets.
func (q Query) ToggleDate(date string) Query {
	f := q.Filter
	if f.Date == date {
		f.Date = ""
	} else {
		f.Date = date
	}
	return q.WithFilter(f)
}

// Page is one rendered page of the filtered, sorted timeline.
type Page struct {
	Items      []model.Contribution `json:"items"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"totalPages"`
	TotalItems int                  `json:"totalItems"`
}

// Run evaluates the query against the full contribution list.
func (q Query) Run(list []model.Contribution) Page {
	filtered := Apply(list, q.Filter)
	sorted := Sorted(filtered, q.Sort)

	return Page{
		Items:      Paginate(sorted, q.Page, q.PerPage),
		Page:       q.Page,
		TotalPages: TotalPages(len(sorted), q.PerPage),
		TotalItems: len(sorted),
	}
}
