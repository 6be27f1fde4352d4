package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Service ServiceConfig `toml:"service"`
	Jira    JiraConfig    `toml:"jira"`
	Sampler SamplerConfig `toml:"sampler"`
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
}

type ServiceConfig struct {
	Name        string `toml:"name"`
	Environment string `toml:"environment"`
	Port        int    `toml:"port"`
}

type JiraConfig struct {
	BaseURL   string `toml:"base_url"`
	Email     string `toml:"email"`
	APIToken  string `toml:"api_token"`
	Timeout   int    `toml:"timeout_seconds"`
	MaxIssues int    `toml:"max_issues"`
}

type SamplerConfig struct {
	Root           string   `toml:"root"`
	MaxPerCategory int      `toml:"max_per_category"`
	CodePatterns   []string `toml:"code_patterns"`
	TestPatterns   []string `toml:"test_patterns"`
	DocPatterns    []string `toml:"doc_patterns"`
	ExcludeDirs    []string `toml:"exclude_dirs"`
}

type StorageConfig struct {
	DatabasePath string `toml:"database_path"`
}

type LoggingConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	Output     string `toml:"output"`
	MaxSize    int    `toml:"max_size"`
	MaxBackups int    `toml:"max_backups"`
}

func DefaultConfig() *Config {
	execPath, _ := os.Executable()
	execDir := filepath.Dir(execPath)
	execName := filepath.Base(execPath)
	execName = execName[:len(execName)-len(filepath.Ext(execName))]

	defaultDBPath := filepath.Join(execDir, "data", execName+".db")

	return &Config{
		Service: ServiceConfig{
			Name:        execName,
			Environment: "development",
			Port:        8080,
		},
		Jira: JiraConfig{
			Timeout:   30,
			MaxIssues: 25,
		},
		Sampler: SamplerConfig{
			Root:           ".",
			MaxPerCategory: 10,
			CodePatterns:   []string{"**.go", "**.ts", "**.js", "**.py"},
			TestPatterns:   []string{"**_test.go", "**.test.ts", "**.spec.js", "**_test.py"},
			DocPatterns:    []string{"**.md", "**.rst", "**.txt", "**.html"},
			ExcludeDirs:    []string{".git", "node_modules", "vendor", "dist"},
		},
		Storage: StorageConfig{
			DatabasePath: defaultDBPath,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "both",
			MaxSize:    100,
			MaxBackups: 3,
		},
	}
}

func LoadConfig(configFile string) (*Config, error) {
	config := DefaultConfig()

	if configFile == "" {
		// Auto-detect config file
		execPath, _ := os.Executable()
		execDir := filepath.Dir(execPath)
		execName := filepath.Base(execPath)
		execName = execName[:len(execName)-len(filepath.Ext(execName))]

		possiblePaths := []string{
			filepath.Join(execDir, execName+".toml"),
			filepath.Join(execDir, "config.toml"),
			"config.toml",
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			applyEnvOverrides(config)
			return config, nil
		}
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func applyEnvOverrides(config *Config) {
	if baseURL := os.Getenv("JIRA_BASE_URL"); baseURL != "" {
		config.Jira.BaseURL = baseURL
	}
	if email := os.Getenv("JIRA_EMAIL"); email != "" {
		config.Jira.Email = email
	}
	if token := os.Getenv("JIRA_API_TOKEN"); token != "" {
		config.Jira.APIToken = token
	}

	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		config.Storage.DatabasePath = dbPath
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.Logging.Level = logLevel
	}
	if logOutput := os.Getenv("LOG_OUTPUT"); logOutput != "" {
		config.Logging.Output = logOutput
	}

	if port := os.Getenv("SERVER_PORT"); port != "" {
		if portNum, err := strconv.Atoi(port); err == nil {
			config.Service.Port = portNum
		}
	}
}

func (c *Config) Validate() error {
	if c.Jira.BaseURL == "" {
		return fmt.Errorf("jira base_url is required")
	}
	if c.Jira.Email == "" {
		return fmt.Errorf("jira email is required")
	}
	if c.Jira.APIToken == "" {
		return fmt.Errorf("jira api_token is required")
	}
	if c.Jira.MaxIssues <= 0 {
		c.Jira.MaxIssues = 25
	}
	if c.Jira.Timeout <= 0 {
		c.Jira.Timeout = 30
	}

	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("storage database_path is required")
	}

	if c.Sampler.MaxPerCategory <= 0 {
		c.Sampler.MaxPerCategory = 10
	}

	if c.Service.Port <= 0 {
		c.Service.Port = 8080
	}

	validLogLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	validLevel := false
	for _, level := range validLogLevels {
		if c.Logging.Level == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validOutputs := []string{"console", "file", "both"}
	validOutput := false
	for _, output := range validOutputs {
		if c.Logging.Output == output {
			validOutput = true
			break
		}
	}
	if !validOutput {
		return fmt.Errorf("invalid log output: %s", c.Logging.Output)
	}

	return nil
}

// BrowseURL returns the Jira base URL with trailing slashes stripped,
// suitable for deriving per-issue browse links.
func (jc *JiraConfig) BrowseURL() string {
	return strings.TrimRight(jc.BaseURL, "/")
}

func (c *Config) IsProduction() bool {
	return c.Service.Environment == "production"
}
