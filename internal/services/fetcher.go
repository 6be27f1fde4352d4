package services

import (
	"devlens/internal/common"
	"devlens/internal/interfaces"

	"github.com/ternarybob/arbor"
)

// searchPageLimit caps the page size requested from the search endpoint.
const searchPageLimit = 50

// issueFetcher walks the search endpoint page by page, accumulating
// normalized records until the caller's limit or the server-reported
// total is reached. Requests are issued sequentially; each invocation
// owns its own cursor and accumulator, so concurrent fetches from
// independent callers need no coordination.
type issueFetcher struct {
	client     *jiraClient
	normalizer *normalizer
	logger     arbor.ILogger
}

func NewIssueFetcher(config *common.JiraConfig, logger arbor.ILogger) interfaces.IssueFetcher {
	return &issueFetcher{
		client:     newJiraClient(config),
		normalizer: newNormalizer(config.BaseURL),
		logger:     logger,
	}
}

// FetchAssignedIssues returns at most maxCount records, most recently
// updated first. The fetch is all-or-nothing: a failed page discards
// everything accumulated from earlier pages.
func (f *issueFetcher) FetchAssignedIssues(maxCount int) ([]*interfaces.IssueRecord, error) {
	if maxCount <= 0 {
		return nil, common.NewValidationError("invalid_max_count", "max count must be positive")
	}

	records := make([]*interfaces.IssueRecord, 0, maxCount)
	cursor := paginationCursor{}

	for {
		pageSize := searchPageLimit
		if remaining := maxCount - len(records); remaining < pageSize {
			pageSize = remaining
		}

		page, err := f.client.SearchAssignedIssues(cursor.consumed, pageSize)
		if err != nil {
			return nil, err
		}

		for i := range page.Issues {
			records = append(records, f.normalizer.Normalize(&page.Issues[i]))
			if len(records) >= maxCount {
				break
			}
		}

		cursor.advance(page, pageSize, len(records))

		f.logger.Debug().
			Int("page_issues", len(page.Issues)).
			Int("accumulated", len(records)).
			Int("consumed", cursor.consumed).
			Msg("Fetched search page")

		// An empty page means the server has nothing further regardless
		// of what the pagination metadata claims.
		if len(page.Issues) == 0 {
			break
		}

		if !shouldContinue(cursor.consumed, cursor.knownTotal, len(records), maxCount) {
			break
		}
	}

	return records, nil
}

// paginationCursor tracks the zero-based offset already consumed and the
// server-reported total. Created fresh per fetch, mutated once per page.
type paginationCursor struct {
	consumed   int
	knownTotal *int
}

// advance moves the cursor past the page just received. Server-reported
// startAt/maxResults take precedence; absent values fall back to the
// locally tracked offset and the requested page size. An absent total
// falls back to the accumulated count, a conservative fail-safe that
// stops the loop after the current page instead of paginating forever.
func (c *paginationCursor) advance(page *SearchPage, requestedSize, accumulated int) {
	startAt := c.consumed
	if page.StartAt != nil {
		startAt = *page.StartAt
	}

	pageSize := requestedSize
	if page.MaxResults != nil {
		pageSize = *page.MaxResults
	}

	c.consumed = startAt + pageSize

	total := accumulated
	if page.Total != nil {
		total = *page.Total
	}
	c.knownTotal = &total
}

// shouldContinue decides whether another page request is needed: stop
// once the accumulator holds maxCount records or the cursor has passed
// the known total.
func shouldContinue(consumed int, knownTotal *int, accumulated, maxCount int) bool {
	if accumulated >= maxCount {
		return false
	}
	if knownTotal != nil && consumed >= *knownTotal {
		return false
	}
	return true
}
