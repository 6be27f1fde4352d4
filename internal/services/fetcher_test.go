package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"devlens/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

// fakeJira serves the assigned-issues search endpoint from an in-memory
// dataset, capping every page at pageCap to force pagination.
type fakeJira struct {
	issues   []RawIssue
	pageCap  int
	requests atomic.Int32
}

func makeIssues(n int) []RawIssue {
	issues := make([]RawIssue, 0, n)
	for i := 1; i <= n; i++ {
		issues = append(issues, RawIssue{
			Key: fmt.Sprintf("DEV-%d", i),
			Fields: map[string]interface{}{
				"summary": fmt.Sprintf("Issue %d", i),
				"status":  map[string]interface{}{"name": "To Do"},
			},
		})
	}
	return issues
}

func (f *fakeJira) handler(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)

	startAt, _ := strconv.Atoi(r.URL.Query().Get("startAt"))
	maxResults, _ := strconv.Atoi(r.URL.Query().Get("maxResults"))
	if maxResults > f.pageCap {
		maxResults = f.pageCap
	}

	end := startAt + maxResults
	if end > len(f.issues) {
		end = len(f.issues)
	}
	page := f.issues[startAt:end]

	total := len(f.issues)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(SearchPage{
		StartAt:    &startAt,
		MaxResults: &maxResults,
		Total:      &total,
		Issues:     page,
	})
}

func newTestFetcher(t *testing.T, baseURL string) *issueFetcher {
	t.Helper()
	f := NewIssueFetcher(&common.JiraConfig{
		BaseURL:  baseURL,
		Email:    "dev@example.com",
		APIToken: "token",
		Timeout:  5,
	}, arbor.NewLogger())
	return f.(*issueFetcher)
}

func Test_FetchAssignedIssues_PaginatesToTotal(t *testing.T) {
	t.Parallel()

	fake := &fakeJira{issues: makeIssues(7), pageCap: 5}
	srv := httptest.NewServer(http.HandlerFunc(fake.handler))
	defer srv.Close()

	fetcher := newTestFetcher(t, srv.URL)
	records, err := fetcher.FetchAssignedIssues(100)

	require.NoError(t, err)
	assert.Len(t, records, 7)
	assert.Equal(t, int32(2), fake.requests.Load())
	assert.Equal(t, "DEV-1", records[0].Key)
	assert.Equal(t, "DEV-7", records[6].Key)
}

func Test_FetchAssignedIssues_StopsAtMaxCount(t *testing.T) {
	t.Parallel()

	fake := &fakeJira{issues: makeIssues(7), pageCap: 5}
	srv := httptest.NewServer(http.HandlerFunc(fake.handler))
	defer srv.Close()

	fetcher := newTestFetcher(t, srv.URL)
	records, err := fetcher.FetchAssignedIssues(3)

	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, int32(1), fake.requests.Load())
}

func Test_FetchAssignedIssues_BoundsResultLength(t *testing.T) {
	t.Parallel()

	fake := &fakeJira{issues: makeIssues(12), pageCap: 50}
	srv := httptest.NewServer(http.HandlerFunc(fake.handler))
	defer srv.Close()

	fetcher := newTestFetcher(t, srv.URL)

	for _, maxCount := range []int{1, 5, 12, 40} {
		records, err := fetcher.FetchAssignedIssues(maxCount)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(records), maxCount)
	}
}

func Test_FetchAssignedIssues_RejectsNonPositiveMaxCount(t *testing.T) {
	t.Parallel()

	fetcher := newTestFetcher(t, "https://unused.example.com")

	_, err := fetcher.FetchAssignedIssues(0)
	assert.Error(t, err)

	_, err = fetcher.FetchAssignedIssues(-4)
	assert.Error(t, err)
}

func Test_FetchAssignedIssues_FailsFastOnSecondPage(t *testing.T) {
	t.Parallel()

	fake := &fakeJira{issues: makeIssues(7), pageCap: 5}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startAt, _ := strconv.Atoi(r.URL.Query().Get("startAt"))
		if startAt > 0 {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"errorMessages":["Unauthorized"]}`)
			return
		}
		fake.handler(w, r)
	}))
	defer srv.Close()

	fetcher := newTestFetcher(t, srv.URL)
	records, err := fetcher.FetchAssignedIssues(100)

	require.Error(t, err)
	assert.Nil(t, records, "a failed page must discard earlier pages")
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "email and API token")
}

func Test_FetchAssignedIssues_BadRequestHint(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"errorMessages":["bad jql"]}`)
	}))
	defer srv.Close()

	fetcher := newTestFetcher(t, srv.URL)
	_, err := fetcher.FetchAssignedIssues(10)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "JQL")
}

func Test_FetchAssignedIssues_MissingPaginationMetadata(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		// No startAt, maxResults or total: the cursor must fall back to
		// local values and stop after this page.
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"issues":[{"key":"DEV-1","fields":{}},{"key":"DEV-2","fields":{}}]}`)
	}))
	defer srv.Close()

	fetcher := newTestFetcher(t, srv.URL)
	records, err := fetcher.FetchAssignedIssues(10)

	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, int32(1), requests.Load())
}

func Test_FetchAssignedIssues_OverfullPageCutMidPage(t *testing.T) {
	t.Parallel()

	// A misbehaving server that returns more issues than requested; the
	// accumulator must still stop exactly at maxCount.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		total := 5
		startAt := 0
		maxResults := 5
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SearchPage{
			StartAt:    &startAt,
			MaxResults: &maxResults,
			Total:      &total,
			Issues:     makeIssues(5),
		})
	}))
	defer srv.Close()

	fetcher := newTestFetcher(t, srv.URL)
	records, err := fetcher.FetchAssignedIssues(4)

	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "DEV-4", records[3].Key)
}

func Test_FetchAssignedIssues_EmptyPageStops(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		// Claims more results exist but delivers none.
		fmt.Fprint(w, `{"startAt":0,"maxResults":50,"total":100,"issues":[]}`)
	}))
	defer srv.Close()

	fetcher := newTestFetcher(t, srv.URL)
	records, err := fetcher.FetchAssignedIssues(10)

	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, int32(1), requests.Load())
}

func Test_FetchAssignedIssues_SendsFixedQuery(t *testing.T) {
	t.Parallel()

	var gotJQL, gotFields, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotJQL = r.URL.Query().Get("jql")
		gotFields = r.URL.Query().Get("fields")
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"startAt":0,"maxResults":50,"total":0,"issues":[]}`)
	}))
	defer srv.Close()

	fetcher := newTestFetcher(t, srv.URL)
	_, err := fetcher.FetchAssignedIssues(10)

	require.NoError(t, err)
	assert.Equal(t, "assignee = currentUser() ORDER BY updated DESC", gotJQL)
	assert.Equal(t, "summary,description,issuetype,status,priority", gotFields)
	assert.Contains(t, gotAuth, "Basic ")
}

func Test_shouldContinue(t *testing.T) {
	t.Parallel()

	total7 := 7

	tests := []struct {
		name        string
		consumed    int
		knownTotal  *int
		accumulated int
		maxCount    int
		want        bool
	}{
		{"limit reached", 5, &total7, 10, 10, false},
		{"total exhausted", 7, &total7, 7, 100, false},
		{"cursor past total", 10, &total7, 5, 100, false},
		{"more pages needed", 5, &total7, 5, 100, true},
		{"unknown total continues", 5, nil, 5, 100, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, shouldContinue(tc.consumed, tc.knownTotal, tc.accumulated, tc.maxCount))
		})
	}
}

func Test_paginationCursor_Advance(t *testing.T) {
	t.Parallel()

	startAt := 0
	maxResults := 5
	total := 7

	c := paginationCursor{}
	c.advance(&SearchPage{StartAt: &startAt, MaxResults: &maxResults, Total: &total}, 50, 5)

	assert.Equal(t, 5, c.consumed)
	require.NotNil(t, c.knownTotal)
	assert.Equal(t, 7, *c.knownTotal)

	// Absent metadata falls back to local offset + requested size, and
	// the total collapses to the accumulated count.
	c.advance(&SearchPage{}, 10, 6)
	assert.Equal(t, 15, c.consumed)
	require.NotNil(t, c.knownTotal)
	assert.Equal(t, 6, *c.knownTotal)
}
