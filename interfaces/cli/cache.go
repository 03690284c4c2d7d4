package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/agent-memory/application"
)

func (a *App) newCacheCmd() *cobra.Command {
	var agent string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Read and write the per-agent result cache",
	}
	cmd.PersistentFlags().StringVar(&agent, "agent", "", "Agent id owning the key (required)")
	_ = cmd.MarkPersistentFlagRequired("agent")

	get := &cobra.Command{
		Use:   "get KEY",
		Short: "Print a cached value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withAdapter(func(adapter *application.Adapter) error {
				value, ok, err := adapter.GetCache(cmd.Context(), agent, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("key not found: %s", args[0])
				}
				_, err = fmt.Fprintln(a.stdout, value)
				return err
			})
		},
	}

	set := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store a value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withAdapter(func(adapter *application.Adapter) error {
				ok, err := adapter.SetCache(cmd.Context(), agent, args[0], args[1])
				if err != nil {
					return err
				}
				return a.writeJSON(map[string]any{"key": args[0], "stored": ok})
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete KEY",
		Short: "Remove a value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withAdapter(func(adapter *application.Adapter) error {
				existed, err := adapter.DeleteCache(cmd.Context(), agent, args[0])
				if err != nil {
					return err
				}
				return a.writeJSON(map[string]any{"key": args[0], "deleted": existed})
			})
		},
	}

	cmd.AddCommand(get, set, del)
	return cmd
}
