package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/samber/do/v2"
	"github.com/urfave/cli/v2"

	"github.com/coastalprograms/notion-cli-go/pkg/cache"
	"github.com/coastalprograms/notion-cli-go/pkg/cachekey"
	"github.com/coastalprograms/notion-cli-go/pkg/core"
	"github.com/coastalprograms/notion-cli-go/pkg/retry"
	"github.com/coastalprograms/notion-cli-go/pkg/transport"
)

// Service interface for configuration
type Service interface {
	GetAPIURL() string
	GetToken() string
	GetTimeout() int
	GetRetryCount() int
	IsVerbose() bool
	GetOutput() string
	GetConfigDir() string
	IsAuthenticated() bool
	Validate() error
}

// Config implements the configuration service
type Config struct {
	apiURL     string
	token      string
	timeout    int
	retryCount int
	verbose    bool
	output     string
	configDir  string
}

// NewConfig creates a new configuration service by injecting the CLI context
// and extracting all resolved CLI flags and environment variables
func NewConfig(injector do.Injector) (Service, error) {
	// Inject the CLI context from urfav/cli
	cliContext := do.MustInvoke[*cli.Context](injector)

	// Extract values from CLI context (urfav/cli already resolved environment vars)
	apiURL := cliContext.String("api-url")
	token := cliContext.String("token")
	timeout := cliContext.Int("timeout")
	retryCount := cliContext.Int("retry-count")
	verbose := cliContext.Bool("verbose")
	output := cliContext.String("output")
	configDir := cliContext.String("config-dir")

	// Set defaults if not provided
	if apiURL == "" {
		apiURL = "https://api.notion.com/v1"
	}
	if timeout <= 0 {
		timeout = 300 // 5 minutes default
	}
	if retryCount <= 0 {
		retryCount = 3
	}
	if output == "" {
		output = "table"
	}
	if configDir == "" {
		configDir = getDefaultConfigDir()
	}

	config := &Config{
		apiURL:     apiURL,
		token:      token,
		timeout:    timeout,
		retryCount: retryCount,
		verbose:    verbose,
		output:     output,
		configDir:  configDir,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Interface implementation
func (c *Config) GetAPIURL() string     { return c.apiURL }
func (c *Config) GetToken() string      { return c.token }
func (c *Config) GetTimeout() int       { return c.timeout }
func (c *Config) GetRetryCount() int    { return c.retryCount }
func (c *Config) IsVerbose() bool       { return c.verbose }
func (c *Config) GetOutput() string     { return c.output }
func (c *Config) GetConfigDir() string  { return c.configDir }
func (c *Config) IsAuthenticated() bool { return c.token != "" }

func (c *Config) Validate() error {
	if c.apiURL == "" {
		return fmt.Errorf("API URL is required")
	}

	if c.timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if c.retryCount < 0 {
		return fmt.Errorf("retry count cannot be negative")
	}

	validOutputs := map[string]bool{
		"json":  true,
		"table": true,
		"yaml":  true,
	}
	if !validOutputs[c.output] {
		return fmt.Errorf("invalid output format: %s (must be json, table, or yaml)", c.output)
	}

	return nil
}

func getDefaultConfigDir() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		return homeDir + "/.config/notion-cli"
	}
	return "/tmp/notion-cli"
}

// LoadCoreConfig reads the NOTION_CLI_* environment variables directly (no
// CLI flags), so the core is constructible outside of a cli.Context — e.g.
// from tests or a long-running daemon mode.
func LoadCoreConfig() core.Config {
	retryCfg := retry.DefaultConfig()
	if v, ok := envInt("NOTION_CLI_MAX_RETRIES"); ok {
		retryCfg.MaxAttempts = v
	}
	if v, ok := envDurationMs("NOTION_CLI_BASE_DELAY"); ok {
		retryCfg.BaseDelay = v
	}
	if v, ok := envDurationMs("NOTION_CLI_MAX_DELAY"); ok {
		retryCfg.MaxDelay = v
	}
	if v, ok := envFloat("NOTION_CLI_EXP_BASE"); ok {
		retryCfg.ExponentialBase = v
	}
	if v, ok := envFloat("NOTION_CLI_JITTER_FACTOR"); ok {
		retryCfg.JitterFactor = v
	}

	cacheCfg := cache.DefaultConfig()
	if v, ok := envBool("NOTION_CLI_CACHE_ENABLED"); ok {
		cacheCfg.Enabled = v
	}
	if v, ok := envInt("NOTION_CLI_CACHE_MAX_SIZE"); ok {
		cacheCfg.MaxMemEntries = v
	}
	if v, ok := envDurationMs("NOTION_CLI_CACHE_TTL"); ok {
		cacheCfg.DefaultTTL = v
	}
	namespaceEnv := map[string]cachekey.Namespace{
		"NOTION_CLI_CACHE_DS_TTL":    cachekey.NamespaceDataSource,
		"NOTION_CLI_CACHE_DB_TTL":    cachekey.NamespaceDatabase,
		"NOTION_CLI_CACHE_USER_TTL":  cachekey.NamespaceUser,
		"NOTION_CLI_CACHE_PAGE_TTL":  cachekey.NamespacePage,
		"NOTION_CLI_CACHE_BLOCK_TTL": cachekey.NamespaceBlock,
	}
	for env, ns := range namespaceEnv {
		if v, ok := envDurationMs(env); ok {
			cacheCfg.TTLByNamespace[ns] = v
		}
	}
	if v, ok := envBool("NOTION_CLI_DISK_CACHE_ENABLED"); ok {
		cacheCfg.DiskEnabled = v
	}
	if v, ok := envInt64("NOTION_CLI_DISK_CACHE_MAX_SIZE"); ok {
		cacheCfg.DiskMaxBytes = v
	}
	if v, ok := envDurationMs("NOTION_CLI_DISK_CACHE_SYNC_INTERVAL"); ok {
		cacheCfg.DiskSyncInterval = v
	}

	transportCfg := transport.DefaultConfig()
	if v, ok := envBool("NOTION_CLI_HTTP_KEEP_ALIVE"); ok {
		transportCfg.KeepAlive = v
	}
	if v, ok := envDurationMs("NOTION_CLI_HTTP_KEEP_ALIVE_MS"); ok {
		transportCfg.IdleTimeout = v
	}
	if v, ok := envInt("NOTION_CLI_HTTP_MAX_SOCKETS"); ok {
		transportCfg.MaxConnsTotal = v
	}
	if v, ok := envInt("NOTION_CLI_HTTP_MAX_FREE_SOCKETS"); ok {
		transportCfg.MaxIdlePerHost = v
	}
	if v, ok := envDurationMs("NOTION_CLI_HTTP_TIMEOUT"); ok {
		transportCfg.RequestTimeout = v
	}

	deleteConcurrency := 5
	if v, ok := envInt("NOTION_CLI_DELETE_CONCURRENCY"); ok {
		deleteConcurrency = v
	}
	childrenConcurrency := 5
	if v, ok := envInt("NOTION_CLI_CHILDREN_CONCURRENCY"); ok {
		childrenConcurrency = v
	}

	dedupEnabled := true
	if v, ok := envBool("NOTION_CLI_DEDUP_ENABLED"); ok {
		dedupEnabled = v
	}

	verbose := false
	if v, ok := envBool("NOTION_CLI_VERBOSE"); ok {
		verbose = v
	}
	if v, ok := envBool("NOTION_CLI_DEBUG"); ok {
		verbose = verbose || v
	}

	return core.Config{
		Retry:               retryCfg,
		Breaker:             retry.DefaultBreakerConfig(),
		BreakerEnabled:       true,
		Cache:               cacheCfg,
		Transport:           transportCfg,
		DedupEnabled:        dedupEnabled,
		DeleteConcurrency:   deleteConcurrency,
		ChildrenConcurrency: childrenConcurrency,
		Verbose:             verbose,
	}
}

func envInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

func envInt64(name string) (int64, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	return n, err == nil
}

func envFloat(name string) (float64, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(v, 64)
	return n, err == nil
}

func envBool(name string) (bool, bool) {
	v := os.Getenv(name)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	return b, err == nil
}

func envDurationMs(name string) (time.Duration, bool) {
	n, ok := envInt(name)
	if !ok {
		return 0, false
	}
	return time.Duration(n) * time.Millisecond, true
}
