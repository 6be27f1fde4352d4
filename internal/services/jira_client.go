package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"devlens/internal/common"

	"github.com/go-resty/resty/v2"
)

const (
	// assignedIssuesJQL selects the calling identity's issues, most
	// recently updated first.
	assignedIssuesJQL = "assignee = currentUser() ORDER BY updated DESC"

	// searchFields limits the response payload to what normalization needs.
	searchFields = "summary,description,issuetype,status,priority"

	searchEndpoint = "/rest/api/3/search/jql"
)

// RawIssue is one issue object as returned by the search endpoint. The
// fields map is deliberately untyped; the normalizer owns all access.
type RawIssue struct {
	Key    string                 `json:"key"`
	Fields map[string]interface{} `json:"fields"`
}

// SearchPage is one page of the search response. Pagination metadata is
// optional on the wire, so the fields are pointers; the cursor falls
// back to locally tracked values when the server omits them.
type SearchPage struct {
	StartAt    *int       `json:"startAt"`
	MaxResults *int       `json:"maxResults"`
	Total      *int       `json:"total"`
	Issues     []RawIssue `json:"issues"`
}

type jiraClient struct {
	client   *resty.Client
	baseURL  string
	email    string
	apiToken string
}

func newJiraClient(config *common.JiraConfig) *jiraClient {
	baseURL := strings.TrimRight(config.BaseURL, "/")

	client := resty.New().
		SetBaseURL(baseURL).
		SetBasicAuth(config.Email, config.APIToken).
		SetTimeout(time.Duration(config.Timeout) * time.Second).
		SetHeader("Accept", "application/json")

	return &jiraClient{
		client:   client,
		baseURL:  baseURL,
		email:    config.Email,
		apiToken: config.APIToken,
	}
}

// SearchAssignedIssues requests one page of the fixed assigned-issues
// query. Transport failures propagate wrapped; any non-2xx status is
// converted into a descriptive error carrying the status, the response
// body and a targeted hint. No retries are attempted.
func (jc *jiraClient) SearchAssignedIssues(startAt, maxResults int) (*SearchPage, error) {
	var page SearchPage

	resp, err := jc.client.R().
		SetQueryParam("jql", assignedIssuesJQL).
		SetQueryParam("fields", searchFields).
		SetQueryParam("startAt", strconv.Itoa(startAt)).
		SetQueryParam("maxResults", strconv.Itoa(maxResults)).
		SetResult(&page).
		Get(searchEndpoint)

	if err != nil {
		return nil, fmt.Errorf("failed to search issues: %w", err)
	}

	if resp.IsError() {
		return nil, searchError(resp.StatusCode(), resp.Status(), resp.String())
	}

	return &page, nil
}

// searchError builds the failure for a non-success search status, with
// an authentication hint for 401/403 and a query hint for 400.
func searchError(statusCode int, status, body string) *common.ServiceError {
	var (
		errType = common.ErrorTypeJira
		hint    = "unexpected response from the Jira API"
	)

	switch statusCode {
	case 400:
		hint = "the JQL query may be malformed"
	case 401, 403:
		errType = common.ErrorTypeAuth
		hint = "check the configured email and API token"
	}

	message := fmt.Sprintf("Jira search returned %s", status)
	details := hint
	if trimmed := strings.TrimSpace(body); trimmed != "" {
		details = fmt.Sprintf("%s (%s)", trimmed, hint)
	}

	return common.NewError(errType, "search_failed", message).
		WithDetails(details).
		WithContext("status_code", statusCode)
}
