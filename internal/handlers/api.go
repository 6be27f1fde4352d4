package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"devlens/internal/common"
	"devlens/internal/interfaces"

	"github.com/ternarybob/arbor"
)

// APIHandlers contains all API endpoint handlers
type APIHandlers struct {
	config    *common.Config
	fetcher   interfaces.IssueFetcher
	sampler   interfaces.Sampler
	storage   interfaces.Storage
	logger    arbor.ILogger
	startTime time.Time
	wsHub     *WebSocketHub
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Build     string    `json:"build"`
	Uptime    float64   `json:"uptime_seconds"`
	Services  struct {
		Database bool `json:"database"`
	} `json:"services"`
}

// VersionResponse represents version information
type VersionResponse struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
}

// IssuesResponse carries the cached issue snapshot
type IssuesResponse struct {
	Issues    []*interfaces.IssueRecord `json:"issues"`
	Count     int                       `json:"count"`
	LastFetch time.Time                 `json:"last_fetch,omitempty"`
}

// ConfigResponse represents the configuration display response. The API
// token is never echoed back.
type ConfigResponse struct {
	Service *common.ServiceConfig `json:"service"`
	Jira    struct {
		BaseURL   string `json:"base_url"`
		Email     string `json:"email"`
		MaxIssues int    `json:"max_issues"`
	} `json:"jira"`
	Sampler *common.SamplerConfig `json:"sampler"`
	Storage *common.StorageConfig `json:"storage"`
	Logging *common.LoggingConfig `json:"logging"`
}

// ErrorResponse is the uniform error body for failed API calls
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(config *common.Config, fetcher interfaces.IssueFetcher, sampler interfaces.Sampler, storage interfaces.Storage, logger arbor.ILogger, wsHub *WebSocketHub) *APIHandlers {
	return &APIHandlers{
		config:    config,
		fetcher:   fetcher,
		sampler:   sampler,
		storage:   storage,
		logger:    logger,
		startTime: time.Now(),
		wsHub:     wsHub,
	}
}

// HealthHandler returns system health status
func (h *APIHandlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   common.GetVersion(),
		Build:     common.GetBuild(),
		Uptime:    time.Since(h.startTime).Seconds(),
	}

	health.Services.Database = h.testDatabaseConnection()
	if !health.Services.Database {
		health.Status = "degraded"
	}

	h.writeJSON(w, health)
}

// VersionHandler returns version information
func (h *APIHandlers) VersionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	h.writeJSON(w, VersionResponse{
		Version: common.GetVersion(),
		Build:   common.GetBuild(),
		Commit:  common.GetGitCommit(),
	})
}

// IssuesHandler returns the cached issue snapshot
func (h *APIHandlers) IssuesHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	issues, err := h.storage.LoadIssues()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load cached issues")
		h.writeError(w, http.StatusInternalServerError, "failed to load cached issues")
		return
	}

	lastFetch, _ := h.storage.LastFetch()

	h.writeJSON(w, IssuesResponse{
		Issues:    issues,
		Count:     len(issues),
		LastFetch: lastFetch,
	})
}

// RefreshHandler fetches a fresh snapshot of assigned issues, stores it,
// and notifies connected dashboards. A failed fetch returns an error and
// leaves the previous snapshot untouched.
func (h *APIHandlers) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "use POST to refresh issues")
		return
	}

	issues, err := h.fetcher.FetchAssignedIssues(h.config.Jira.MaxIssues)
	if err != nil {
		h.logger.Error().Err(err).Msg("Issue refresh failed")
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	if err := h.storage.SaveIssues(issues); err != nil {
		h.logger.Error().Err(err).Msg("Failed to store issue snapshot")
		h.writeError(w, http.StatusInternalServerError, "failed to store issue snapshot")
		return
	}

	h.logger.Info().Int("count", len(issues)).Msg("Issue snapshot refreshed")
	h.wsHub.SendUpdate("issues_updated", map[string]interface{}{"count": len(issues)})

	h.writeJSON(w, IssuesResponse{
		Issues:    issues,
		Count:     len(issues),
		LastFetch: time.Now(),
	})
}

// SampleHandler runs a fresh workspace sampling pass
func (h *APIHandlers) SampleHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	set, err := h.sampler.Sample()
	if err != nil {
		h.logger.Error().Err(err).Msg("Workspace sampling failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, set)
}

// ConfigHandler returns the active configuration with secrets redacted
func (h *APIHandlers) ConfigHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	resp := ConfigResponse{
		Service: &h.config.Service,
		Sampler: &h.config.Sampler,
		Storage: &h.config.Storage,
		Logging: &h.config.Logging,
	}
	resp.Jira.BaseURL = h.config.Jira.BaseURL
	resp.Jira.Email = h.config.Jira.Email
	resp.Jira.MaxIssues = h.config.Jira.MaxIssues

	h.writeJSON(w, resp)
}

func (h *APIHandlers) testDatabaseConnection() bool {
	if h.storage == nil {
		return false
	}
	_, err := h.storage.LastFetch()
	return err == nil
}

func (h *APIHandlers) writeJSON(w http.ResponseWriter, payload interface{}) {
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *APIHandlers) writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Success: false, Error: message})
}
