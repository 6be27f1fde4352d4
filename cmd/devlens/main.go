package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"devlens/internal/common"
	"devlens/internal/interfaces"
	"devlens/internal/services"

	"github.com/ternarybob/arbor"
)

const serviceName = "devlens"

func main() {
	var (
		configPath     = flag.String("config", "", "Path to configuration file")
		mode           = flag.String("mode", "dev", "Environment mode: 'dev', 'development', 'prod', or 'production'")
		quiet          = flag.Bool("quiet", false, "Suppress banner output")
		version        = flag.Bool("version", false, "Show version information")
		help           = flag.Bool("help", false, "Show help message")
		validateConfig = flag.Bool("validate", false, "Validate configuration file and exit")
		once           = flag.Bool("once", false, "Fetch assigned issues and sample the workspace once, then exit")
	)
	flag.Parse()

	if *version {
		fmt.Printf("%s v%s (build: %s)\n", serviceName, common.GetVersion(), common.GetBuild())
		os.Exit(0)
	}

	if *help {
		showHelp()
		os.Exit(0)
	}

	environment := parseMode(*mode)

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	cfg.Service.Environment = environment

	if *validateConfig {
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Configuration is invalid: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Configuration is valid")
		os.Exit(0)
	}

	if err := common.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger := common.GetLogger()

	logger.Info().
		Str("version", common.GetVersion()).
		Str("build", common.GetBuild()).
		Str("environment", environment).
		Msg("Starting Devlens Service")

	if !*quiet {
		logFilePath := common.GetLogFilePath()
		common.PrintBanner(serviceName, environment, runMode(*once), logFilePath)
	}

	logger.Info().Msg("Initializing services...")

	storage, err := services.NewStorage(&cfg.Storage)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize storage")
		os.Exit(1)
	}
	defer storage.Close()

	fetcher := services.NewIssueFetcher(&cfg.Jira, logger)

	sampler, err := services.NewSampler(&cfg.Sampler, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize workspace sampler")
		os.Exit(1)
	}

	logger.Info().Msg("Services initialized successfully")

	if *once {
		if err := runOnce(cfg, fetcher, sampler, storage, logger); err != nil {
			os.Exit(1)
		}
		return
	}

	runServerMode(cfg, fetcher, sampler, storage, logger)

	logger.Info().Msg("Devlens Service shutdown complete")
}

// runOnce performs a single fetch-and-sample pass and prints a summary.
func runOnce(cfg *common.Config, fetcher interfaces.IssueFetcher, sampler interfaces.Sampler, storage interfaces.Storage, logger arbor.ILogger) error {
	issues, err := fetcher.FetchAssignedIssues(cfg.Jira.MaxIssues)
	if err != nil {
		logger.Error().Err(err).Msg("Issue fetch failed")
		common.PrintError(fmt.Sprintf("Issue fetch failed: %v", err))
		return err
	}

	if err := storage.SaveIssues(issues); err != nil {
		logger.Error().Err(err).Msg("Failed to store issue snapshot")
		return err
	}

	common.PrintSuccess(fmt.Sprintf("Fetched %d assigned issues", len(issues)))
	for _, issue := range issues {
		fmt.Printf("  %-12s [%s/%s] %s\n", issue.Key, issue.IssueType, issue.Status, issue.Summary)
	}

	set, err := sampler.Sample()
	if err != nil {
		logger.Error().Err(err).Msg("Workspace sampling failed")
		common.PrintError(fmt.Sprintf("Workspace sampling failed: %v", err))
		return err
	}

	common.PrintSuccess(fmt.Sprintf("Sampled workspace: %d code, %d test, %d doc files",
		len(set.Code), len(set.Tests), len(set.Docs)))

	return nil
}

func runServerMode(cfg *common.Config, fetcher interfaces.IssueFetcher, sampler interfaces.Sampler, storage interfaces.Storage, logger arbor.ILogger) {
	logger.Info().Msg("Starting in server mode")

	webServer, err := services.NewWebServer(cfg, fetcher, sampler, storage, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create web server")
		return
	}

	ctx := context.Background()
	if err := webServer.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to start web server")
		return
	}

	logger.Info().
		Int("port", cfg.Service.Port).
		Msg("Web server started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info().Msg("Server running - press Ctrl+C to stop")

	<-sigChan
	logger.Info().Msg("Shutdown signal received")

	if err := webServer.Stop(); err != nil {
		logger.Error().Err(err).Msg("Error stopping web server")
	}

	logger.Info().Msg("Server mode shutdown complete")
}

func parseMode(mode string) string {
	mode = strings.ToLower(mode)
	switch mode {
	case "prod", "production":
		return "production"
	case "dev", "development":
		return "development"
	default:
		return "development"
	}
}

func runMode(once bool) string {
	if once {
		return "Once"
	}
	return "Server"
}

func showHelp() {
	fmt.Printf("%s v%s - Workspace & Assigned-Issue Dashboard\n\n", serviceName, common.GetVersion())
	fmt.Println("Usage:")
	fmt.Printf("  %s [flags]\n\n", os.Args[0])
	fmt.Println("Flags:")
	fmt.Println("  -mode string        Environment mode: 'dev', 'development', 'prod', or 'production' (default \"dev\")")
	fmt.Println("  -config string      Configuration file path")
	fmt.Println("  -quiet              Suppress banner output")
	fmt.Println("  -version            Show version information")
	fmt.Println("  -help               Show help message")
	fmt.Println("  -validate           Validate configuration file and exit")
	fmt.Println("  -once               Fetch issues and sample the workspace once, then exit")
	fmt.Println("\nExamples:")
	fmt.Printf("  %s                                  # Run in server mode\n", os.Args[0])
	fmt.Printf("  %s -once                            # One-shot fetch and sample\n", os.Args[0])
	fmt.Printf("  %s -config /path/to/config.toml     # Use custom config file\n", os.Args[0])
}
