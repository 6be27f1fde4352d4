package interfaces

import (
	"context"
	"time"
)

// IssueRecord is the normalized, UI-ready representation of one remote
// issue. Every field is always populated: absent or malformed server
// data is coerced to a documented sentinel, never passed through empty.
type IssueRecord struct {
	Key         string `json:"key"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	IssueType   string `json:"issue_type"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	URL         string `json:"url"`
}

// IssueFetcher retrieves the calling identity's assigned issues from the
// remote tracker, most recently updated first. A fetch is all-or-nothing:
// any page failure discards results accumulated from earlier pages.
type IssueFetcher interface {
	FetchAssignedIssues(maxCount int) ([]*IssueRecord, error)
}

// Storage caches the latest successful issue snapshot for the dashboard.
type Storage interface {
	SaveIssues(issues []*IssueRecord) error
	LoadIssues() ([]*IssueRecord, error)
	ClearIssues() error
	LastFetch() (time.Time, error)
	Close() error
}

type WebService interface {
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool
}
