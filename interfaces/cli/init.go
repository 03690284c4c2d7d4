package cli

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/agent-memory/application"
)

func (a *App) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configured collection if it does not exist",
		Long: `Create the collection holding memories and knowledge. Running it
again against an existing collection changes nothing.

Examples:
  agent-memory init -c config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withAdapter(func(adapter *application.Adapter) error {
				if err := adapter.Init(cmd.Context()); err != nil {
					return err
				}
				cfg := adapter.Config()
				return a.writeJSON(map[string]any{
					"collection":  cfg.Collection,
					"vector_size": cfg.VectorSize,
					"status":      "ready",
				})
			})
		},
	}
}
