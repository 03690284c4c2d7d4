// Package cli provides a command-line interface for the agent-memory adapter.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	agentmemory "github.com/felixgeelhaar/agent-memory"
	"github.com/felixgeelhaar/agent-memory/application"
	domainconfig "github.com/felixgeelhaar/agent-memory/domain/config"
	"github.com/felixgeelhaar/agent-memory/infrastructure/config"
	"github.com/felixgeelhaar/agent-memory/infrastructure/logging"
)

// App represents the CLI application.
type App struct {
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader

	configPath  string
	logLevel    string
	adapterOpts []application.Option
}

// New creates a new CLI application.
func New() *App {
	app := &App{
		stdout: os.Stdout,
		stderr: os.Stderr,
		stdin:  os.Stdin,
	}

	app.root = &cobra.Command{
		Use:   "agent-memory",
		Short: "Vector database memory adapter for agent runtimes",
		Long: `agent-memory stores agent memories and knowledge in a vector database.

Records are mapped to points with deterministic ids, listed with payload
filters and searched by embedding similarity. Knowledge searches are cached
per agent and embedding.

Without -c the connection settings are read from QDRANT_URL, QDRANT_API_KEY,
QDRANT_PORT, VECTOR_SIZE and QDRANT_COLLECTION.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	app.root.PersistentFlags().StringVarP(&app.configPath, "config", "c", "", "Path to configuration file")
	app.root.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "Log level (overrides config)")

	app.root.AddCommand(
		app.newVersionCmd(),
		app.newValidateCmd(),
		app.newInspectCmd(),
		app.newExportSchemaCmd(),
		app.newInitCmd(),
		app.newMemoryCmd(),
		app.newKnowledgeCmd(),
		app.newCacheCmd(),
		app.newNormalizeCmd(),
	)

	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// WithInput sets the reader used for stdin.
func (a *App) WithInput(stdin io.Reader) *App {
	a.stdin = stdin
	a.root.SetIn(stdin)
	return a
}

// WithAdapterOptions passes options to every adapter the commands build.
func (a *App) WithAdapterOptions(opts ...application.Option) *App {
	a.adapterOpts = append(a.adapterOpts, opts...)
	return a
}

// Execute runs the CLI application.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments (useful for testing).
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(a.stdout, agentmemory.BuildInfo())
		},
	}
}

// loadConfig reads the -c file, or the environment when no file is given.
func (a *App) loadConfig(strict bool) (*domainconfig.AdapterConfig, error) {
	loader := config.NewLoaderWithOptions(config.WithStrictEnv(strict))
	if a.configPath == "" {
		return loader.FromEnv()
	}
	return loader.LoadFile(a.configPath)
}

// openAdapter loads the configuration, sets up logging and builds the
// adapter. The caller closes it.
func (a *App) openAdapter() (*application.Adapter, error) {
	cfg, err := a.loadConfig(false)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.Logging.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	logging.Init(logging.Config{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: a.stderr,
	})

	adapter, err := application.New(cfg, a.adapterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create adapter: %w", err)
	}
	return adapter, nil
}

// withAdapter runs fn against a freshly opened adapter.
func (a *App) withAdapter(fn func(*application.Adapter) error) error {
	adapter, err := a.openAdapter()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := adapter.Close(); cerr != nil {
			logging.Warn().Add(logging.ErrorField(cerr)).Msg("failed to close adapter")
		}
	}()
	return fn(adapter)
}

// writeJSON prints v as indented JSON on stdout.
func (a *App) writeJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
