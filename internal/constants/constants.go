// Package constants provides a centralized location for all configuration
// defaults and magic numbers used throughout the contribution pipeline.
package constants

import "time"

// Upstream fetch constants
const (
	// SearchPageSize is the number of pull requests requested from the
	// GitHub search endpoint in the single base call.
	SearchPageSize = 100

	// CommitsPerPage is the number of commits listed per own repository.
	CommitsPerPage = 50

	// GerritChangeLimit is the maximum number of Gerrit changes requested.
	GerritChangeLimit = 20

	// AnswerPageSize is the number of Stack Exchange answers fetched,
	// ordered by score.
	AnswerPageSize = 10

	// EnrichmentLimit caps how many pull requests receive a detail fetch
	// per aggregation pass. Detail fetches cost one core API request each,
	// so the cap keeps a full pipeline run within unauthenticated quota.
	EnrichmentLimit = 15

	// SummaryMaxLength is the rune cap applied to contribution summaries.
	SummaryMaxLength = 200
)

// Rate limiting constants
const (
	// RateLimitLowWatermark is the threshold below which rate limit
	// warnings are logged.
	RateLimitLowWatermark = 100
)

// Cache profile constants
const (
	// StandardCacheTTL is the freshness window for frequently-changing
	// external metadata (star counts, Q&A profile).
	StandardCacheTTL = 5 * time.Minute

	// StandardRetryCount is the retry budget for standard fetches.
	StandardRetryCount = 3

	// AggregatedCacheTTL is the freshness window for the multi-source
	// contribution timeline. Longer than StandardCacheTTL because a full
	// pipeline re-run hits several rate-limited upstreams.
	AggregatedCacheTTL = 10 * time.Minute

	// AggregatedRetryCount is the retry budget for timeline fetches.
	AggregatedRetryCount = 2
)

// Heatmap constants
const (
	// HeatmapWindowDays is the trailing window projected onto the grid.
	HeatmapWindowDays = 112 // 16 weeks

	// HeatmapRows is the number of cells per rendered column.
	HeatmapRows = 7

	// HeatmapMaxLevel is the highest intensity tier. Counts at or above
	// it clamp to this tier so the visual scale stays fixed.
	HeatmapMaxLevel = 4
)

// View constants
const (
	// ItemsPerPage is the fixed page size for the paginated timeline.
	ItemsPerPage = 10
)
