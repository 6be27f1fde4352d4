package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"devlens/internal/common"
	"devlens/internal/handlers"
	"devlens/internal/interfaces"
	"devlens/internal/middleware"

	"github.com/ternarybob/arbor"
)

// webServer exposes the dashboard API: issue snapshot, refresh, sampling
// and the WebSocket push channel.
type webServer struct {
	config    *common.Config
	server    *http.Server
	logger    arbor.ILogger
	wsHub     *handlers.WebSocketHub
	running   bool
	startTime time.Time
}

// NewWebServer creates a new web server instance
func NewWebServer(cfg *common.Config, fetcher interfaces.IssueFetcher, sampler interfaces.Sampler, storage interfaces.Storage, logger arbor.ILogger) (interfaces.WebService, error) {
	mux := http.NewServeMux()

	wsHub := handlers.NewWebSocketHub(logger)

	apiHandlers := handlers.NewAPIHandlers(cfg, fetcher, sampler, storage, logger, wsHub)

	ws := &webServer{
		config: cfg,
		logger: logger,
		wsHub:  wsHub,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Service.Port),
			Handler: mux,
		},
	}

	logMiddleware := middleware.Logging(logger)
	corsMiddleware := middleware.CORS

	mux.HandleFunc("/health", logMiddleware(corsMiddleware(apiHandlers.HealthHandler)))
	mux.HandleFunc("/version", logMiddleware(corsMiddleware(apiHandlers.VersionHandler)))
	mux.HandleFunc("/issues", logMiddleware(corsMiddleware(apiHandlers.IssuesHandler)))
	mux.HandleFunc("/issues/refresh", logMiddleware(corsMiddleware(apiHandlers.RefreshHandler)))
	mux.HandleFunc("/sample", logMiddleware(corsMiddleware(apiHandlers.SampleHandler)))
	mux.HandleFunc("/config", logMiddleware(corsMiddleware(apiHandlers.ConfigHandler)))

	mux.HandleFunc("/ws", corsMiddleware(wsHub.WebSocketHandler))

	return ws, nil
}

// Start starts the web server
func (ws *webServer) Start(ctx context.Context) error {
	ws.running = true
	ws.startTime = time.Now()

	go func() {
		ws.logger.Info().Int("port", ws.config.Service.Port).Msg("Starting web server")
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ws.logger.Error().Err(err).Msg("Web server error")
		}
	}()
	return nil
}

// Stop stops the web server
func (ws *webServer) Stop() error {
	ws.running = false

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ws.logger.Info().Msg("Shutting down web server")
	return ws.server.Shutdown(ctx)
}

// IsRunning returns true if the web server is running
func (ws *webServer) IsRunning() bool {
	return ws.running
}
