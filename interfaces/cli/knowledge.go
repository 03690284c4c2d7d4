package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/agent-memory/application"
	"github.com/felixgeelhaar/agent-memory/domain/memory"
)

func (a *App) newKnowledgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Write and search knowledge items",
	}
	cmd.AddCommand(
		a.newKnowledgeUpsertCmd(),
		a.newKnowledgeSearchCmd(),
	)
	return cmd
}

func (a *App) newKnowledgeUpsertCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "upsert",
		Short: "Write a knowledge item",
		Long: `Write a knowledge item read from a JSON file, or stdin with --file -.

Examples:
  agent-memory knowledge upsert -c config.yaml --file chunk.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var k memory.Knowledge
			if err := a.readJSON(file, &k); err != nil {
				return err
			}
			if k.ID == "" {
				return fmt.Errorf("knowledge id is required")
			}

			return a.withAdapter(func(adapter *application.Adapter) error {
				if err := adapter.UpsertKnowledge(cmd.Context(), k); err != nil {
					return fmt.Errorf("upsert failed: %w", err)
				}
				return a.writeJSON(map[string]any{"id": k.ID, "status": "stored"})
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON record file, - for stdin")

	return cmd
}

type knowledgeSearchOptions struct {
	agent     string
	embedding string
	ids       []string
}

func (a *App) newKnowledgeSearchCmd() *cobra.Command {
	opts := &knowledgeSearchOptions{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Fetch knowledge items through the result cache",
		Long: `Fetch the knowledge items with the given ids. Results are cached per
agent and embedding, so a repeated search is answered from the cache.

Examples:
  agent-memory knowledge search -c config.yaml --agent a1 \
    --embedding 0.1,0.2,0.3 --id doc-1 --id doc-2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			embedding, err := parseEmbedding(opts.embedding)
			if err != nil {
				return err
			}
			params := memory.KnowledgeSearchParams{
				AgentID:   opts.agent,
				Embedding: embedding,
				IDs:       opts.ids,
			}

			return a.withAdapter(func(adapter *application.Adapter) error {
				results, err := adapter.SearchKnowledge(cmd.Context(), params)
				if err != nil {
					return err
				}
				return a.writeJSON(nonNil(results))
			})
		},
	}

	cmd.Flags().StringVar(&opts.agent, "agent", "", "Agent id")
	cmd.Flags().StringVar(&opts.embedding, "embedding", "", "Comma separated query embedding")
	cmd.Flags().StringArrayVar(&opts.ids, "id", nil, "Knowledge id to fetch (repeatable)")

	return cmd
}
