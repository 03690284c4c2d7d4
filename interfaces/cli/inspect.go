package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	domainconfig "github.com/felixgeelhaar/agent-memory/domain/config"
)

// redacted replaces secrets in inspect output.
const redacted = "********"

// inspectOptions holds options for the inspect command.
type inspectOptions struct {
	outputJSON bool
	section    string
}

// newInspectCmd creates the inspect command.
func (a *App) newInspectCmd() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect the effective configuration",
		Long: `Display the configuration after defaults are applied. Secrets are
redacted.

Sections:
  all         Show all configuration (default)
  store       Show vector client settings
  cache       Show result cache settings
  resilience  Show resilience configuration
  logging     Show logging configuration

Examples:
  # Inspect full configuration
  agent-memory inspect -c config.yaml

  # Inspect the cache section as JSON
  agent-memory inspect -c config.yaml --section cache --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.inspectConfig(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.outputJSON, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&opts.section, "section", "all", "Section to inspect (all, store, cache, resilience, logging, tracing)")

	return cmd
}

// inspectConfig inspects the configuration.
func (a *App) inspectConfig(opts *inspectOptions) error {
	cfg, err := a.loadConfig(false)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	redact(cfg)

	if opts.outputJSON {
		return a.inspectJSON(cfg, opts.section)
	}
	return a.inspectText(cfg, opts.section)
}

func redact(cfg *domainconfig.AdapterConfig) {
	for _, s := range []*string{
		&cfg.APIKey,
		&cfg.Cache.Redis.Password,
		&cfg.Cache.Postgres.Password,
		&cfg.Cache.DynamoDB.SecretAccessKey,
	} {
		if *s != "" {
			*s = redacted
		}
	}
}

// inspectJSON outputs configuration as JSON.
func (a *App) inspectJSON(cfg *domainconfig.AdapterConfig, section string) error {
	var output any

	switch section {
	case "all":
		output = cfg
	case "store":
		output = cfg.Store
	case "cache":
		output = cfg.Cache
	case "resilience":
		output = cfg.Resilience
	case "logging":
		output = cfg.Logging
	case "tracing":
		output = cfg.Tracing
	default:
		return fmt.Errorf("unknown section: %s", section)
	}

	return a.writeJSON(output)
}

// inspectText outputs configuration as formatted text.
func (a *App) inspectText(cfg *domainconfig.AdapterConfig, section string) error {
	switch section {
	case "all":
		a.printHeader(cfg)
		a.printStoreSection(cfg)
		a.printCacheSection(cfg)
		a.printResilienceSection(cfg)
		a.printLoggingSection(cfg)
		a.printTracingSection(cfg)
	case "store":
		a.printStoreSection(cfg)
	case "cache":
		a.printCacheSection(cfg)
	case "resilience":
		a.printResilienceSection(cfg)
	case "logging":
		a.printLoggingSection(cfg)
	case "tracing":
		a.printTracingSection(cfg)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}

	return nil
}

func (a *App) printHeader(cfg *domainconfig.AdapterConfig) {
	_, _ = fmt.Fprintf(a.stdout, "Adapter Configuration: %s\n", cfg.Collection)
	_, _ = fmt.Fprintf(a.stdout, "═══════════════════════════════════════\n")
	_, _ = fmt.Fprintf(a.stdout, "Endpoint: %s:%d\n", cfg.URL, cfg.Port)
	_, _ = fmt.Fprintf(a.stdout, "API key: %s\n", cfg.APIKey)
	_, _ = fmt.Fprintf(a.stdout, "Vector size: %d\n", cfg.VectorSize)
	_, _ = fmt.Fprintln(a.stdout)
}

func (a *App) printStoreSection(cfg *domainconfig.AdapterConfig) {
	_, _ = fmt.Fprintf(a.stdout, "Store\n")
	_, _ = fmt.Fprintf(a.stdout, "─────\n")
	_, _ = fmt.Fprintf(a.stdout, "  Backend: %s\n", cfg.Store.Backend)
	_, _ = fmt.Fprintf(a.stdout, "  Timeout: %s\n", cfg.Store.Timeout.Duration())
	_, _ = fmt.Fprintln(a.stdout)
}

func (a *App) printCacheSection(cfg *domainconfig.AdapterConfig) {
	c := cfg.Cache
	_, _ = fmt.Fprintf(a.stdout, "Cache\n")
	_, _ = fmt.Fprintf(a.stdout, "─────\n")
	_, _ = fmt.Fprintf(a.stdout, "  Backend: %s\n", c.Backend)
	_, _ = fmt.Fprintf(a.stdout, "  Key prefix: %s\n", c.KeyPrefix)
	if c.TTL > 0 {
		_, _ = fmt.Fprintf(a.stdout, "  TTL: %s\n", c.TTL.Duration())
	} else {
		_, _ = fmt.Fprintf(a.stdout, "  TTL: none\n")
	}

	switch c.Backend {
	case domainconfig.CacheMemory:
		_, _ = fmt.Fprintf(a.stdout, "  Max entries: %d\n", c.MaxEntries)
	case domainconfig.CacheRedis:
		_, _ = fmt.Fprintf(a.stdout, "  Address: %s (db %d)\n", c.Redis.Addr, c.Redis.DB)
	case domainconfig.CacheBadger:
		if c.Badger.InMemory {
			_, _ = fmt.Fprintf(a.stdout, "  Path: in-memory\n")
		} else {
			_, _ = fmt.Fprintf(a.stdout, "  Path: %s\n", c.Badger.Path)
		}
	case domainconfig.CacheSQLite:
		_, _ = fmt.Fprintf(a.stdout, "  Path: %s\n", c.SQLite.Path)
	case domainconfig.CachePostgres:
		_, _ = fmt.Fprintf(a.stdout, "  Host: %s:%d/%s\n", c.Postgres.Host, c.Postgres.Port, c.Postgres.Database)
	case domainconfig.CacheMongoDB:
		_, _ = fmt.Fprintf(a.stdout, "  Database: %s.%s\n", c.MongoDB.Database, c.MongoDB.Collection)
	case domainconfig.CacheDynamoDB:
		_, _ = fmt.Fprintf(a.stdout, "  Table: %s (%s)\n", c.DynamoDB.Table, c.DynamoDB.Region)
	}
	_, _ = fmt.Fprintln(a.stdout)
}

func (a *App) printResilienceSection(cfg *domainconfig.AdapterConfig) {
	r := cfg.Resilience
	_, _ = fmt.Fprintf(a.stdout, "Resilience\n")
	_, _ = fmt.Fprintf(a.stdout, "──────────\n")
	if !r.Enabled {
		_, _ = fmt.Fprintf(a.stdout, "  Disabled\n\n")
		return
	}
	_, _ = fmt.Fprintf(a.stdout, "  Max concurrent: %d\n", r.MaxConcurrent)
	_, _ = fmt.Fprintf(a.stdout, "  Circuit breaker: %d failures, open %s\n", r.FailureThreshold, r.OpenTimeout.Duration())
	_, _ = fmt.Fprintf(a.stdout, "  Retry: %d attempts, %s delay\n", r.RetryAttempts, r.RetryDelay.Duration())
	if r.RateLimit > 0 {
		_, _ = fmt.Fprintf(a.stdout, "  Rate limit: %d/s (burst %d)\n", r.RateLimit, r.RateBurst)
	}
	_, _ = fmt.Fprintln(a.stdout)
}

func (a *App) printLoggingSection(cfg *domainconfig.AdapterConfig) {
	_, _ = fmt.Fprintf(a.stdout, "Logging\n")
	_, _ = fmt.Fprintf(a.stdout, "───────\n")
	_, _ = fmt.Fprintf(a.stdout, "  Level: %s\n", cfg.Logging.Level)
	_, _ = fmt.Fprintf(a.stdout, "  Format: %s\n", cfg.Logging.Format)
	_, _ = fmt.Fprintln(a.stdout)
}

func (a *App) printTracingSection(cfg *domainconfig.AdapterConfig) {
	t := cfg.Tracing
	_, _ = fmt.Fprintf(a.stdout, "Tracing\n")
	_, _ = fmt.Fprintf(a.stdout, "───────\n")
	if !t.Enabled {
		_, _ = fmt.Fprintf(a.stdout, "  Disabled\n")
		return
	}
	_, _ = fmt.Fprintf(a.stdout, "  Exporter: %s\n", t.Exporter)
	if t.Endpoint != "" {
		_, _ = fmt.Fprintf(a.stdout, "  Endpoint: %s\n", t.Endpoint)
	}
	_, _ = fmt.Fprintf(a.stdout, "  Service: %s\n", t.ServiceName)
	_, _ = fmt.Fprintf(a.stdout, "  Sample rate: %.2f\n", t.SampleRate)
}
