package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/agent-memory/infrastructure/config"
)

// validateOptions holds options for the validate command.
type validateOptions struct {
	strict     bool
	showSchema bool
}

// newValidateCmd creates the validate command.
func (a *App) newValidateCmd() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Long: `Validate an adapter configuration file for correctness.

This command checks:
  - File format (YAML or JSON)
  - Required connection settings (url, api_key, port, vector_size)
  - Store and cache backend settings
  - Environment variable references (in strict mode)

Examples:
  # Validate a configuration file
  agent-memory validate -c config.yaml

  # Strict validation (fail on missing env vars)
  agent-memory validate -c config.yaml --strict

  # Show the JSON schema for configuration
  agent-memory validate --schema`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showSchema {
				return a.showConfigSchema()
			}
			return a.validateConfig(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Enable strict validation (fail on missing env vars)")
	cmd.Flags().BoolVar(&opts.showSchema, "schema", false, "Show JSON schema for configuration")

	return cmd
}

// validateConfig validates the configuration file.
func (a *App) validateConfig(opts *validateOptions) error {
	if a.configPath == "" {
		return fmt.Errorf("configuration file path is required (-c flag)")
	}

	cfg, err := a.loadConfig(opts.strict)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(a.stdout, "✓ Configuration is valid\n")
	fmt.Fprintf(a.stdout, "  Endpoint: %s:%d\n", cfg.URL, cfg.Port)
	fmt.Fprintf(a.stdout, "  Collection: %s\n", cfg.Collection)
	fmt.Fprintf(a.stdout, "  Vector size: %d\n", cfg.VectorSize)

	fmt.Fprintf(a.stdout, "\nConfiguration summary:\n")
	fmt.Fprintf(a.stdout, "  Store backend: %s\n", cfg.Store.Backend)
	fmt.Fprintf(a.stdout, "  Cache backend: %s\n", cfg.Cache.Backend)
	if cfg.Cache.TTL > 0 {
		fmt.Fprintf(a.stdout, "  Cache TTL: %s\n", cfg.Cache.TTL.Duration())
	}
	if cfg.Resilience.Enabled {
		fmt.Fprintf(a.stdout, "  Resilience: enabled (max_concurrent=%d, failure_threshold=%d)\n",
			cfg.Resilience.MaxConcurrent, cfg.Resilience.FailureThreshold)
		if cfg.Resilience.RateLimit > 0 {
			fmt.Fprintf(a.stdout, "  Rate limiting: enabled (rate=%d, burst=%d)\n",
				cfg.Resilience.RateLimit, cfg.Resilience.RateBurst)
		}
	}

	return nil
}

// showConfigSchema displays the JSON schema for configuration.
func (a *App) showConfigSchema() error {
	schemaJSON, err := config.SchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	fmt.Fprintln(a.stdout, schemaJSON)
	return nil
}
