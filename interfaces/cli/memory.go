package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/agent-memory/application"
	"github.com/felixgeelhaar/agent-memory/domain/memory"
)

func (a *App) newMemoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Write, list and search memories",
	}
	cmd.AddCommand(
		a.newMemoryUpsertCmd(),
		a.newMemoryGetCmd(),
		a.newMemoryListCmd(),
		a.newMemorySearchCmd(),
	)
	return cmd
}

type memoryUpsertOptions struct {
	table  string
	file   string
	unique bool
}

func (a *App) newMemoryUpsertCmd() *cobra.Command {
	opts := &memoryUpsertOptions{}

	cmd := &cobra.Command{
		Use:   "upsert",
		Short: "Write a memory record",
		Long: `Write a memory read from a JSON file, or stdin with --file -.

Without --unique the adapter decides uniqueness with a near-duplicate search
in the same room and table when the record carries an embedding.

Examples:
  agent-memory memory upsert -c config.yaml --table messages --file memory.json
  echo '{"id":"m1","roomId":"r1","content":{"text":"hi"}}' | \
    agent-memory memory upsert --table messages --file - --unique=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var m memory.Memory
			if err := a.readJSON(opts.file, &m); err != nil {
				return err
			}
			unique := optionalBool(cmd.Flags().Changed("unique"), opts.unique)

			return a.withAdapter(func(adapter *application.Adapter) error {
				if err := adapter.UpsertMemory(cmd.Context(), m, opts.table, unique); err != nil {
					return fmt.Errorf("upsert failed: %w", err)
				}
				return a.writeJSON(map[string]any{"id": m.ID, "table": opts.table, "status": "stored"})
			})
		},
	}

	cmd.Flags().StringVar(&opts.table, "table", "", "Table the memory belongs to (required)")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "-", "JSON record file, - for stdin")
	cmd.Flags().BoolVar(&opts.unique, "unique", true, "Uniqueness flag (skips the duplicate search)")
	_ = cmd.MarkFlagRequired("table")

	return cmd
}

func (a *App) newMemoryGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID...",
		Short: "Fetch memories by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withAdapter(func(adapter *application.Adapter) error {
				memories, err := adapter.GetMemoriesByIDs(cmd.Context(), args)
				if err != nil {
					return err
				}
				return a.writeJSON(nonNil(memories))
			})
		},
	}
}

type memoryListOptions struct {
	table  string
	room   string
	agent  string
	unique bool
	count  int
	start  int64
	end    int64
}

func (a *App) newMemoryListCmd() *cobra.Command {
	opts := &memoryListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memories of a room",
		Long: `List memories of a table and room, optionally narrowed by agent,
uniqueness and a createdAt range in epoch milliseconds.

Examples:
  agent-memory memory list -c config.yaml --table messages --room r1
  agent-memory memory list --table facts --room r1 --start 1700000000000 --count 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			params := memory.ListParams{
				TableName: opts.table,
				RoomID:    opts.room,
				AgentID:   opts.agent,
				Unique:    optionalBool(flags.Changed("unique"), opts.unique),
				Start:     optionalInt64(flags.Changed("start"), opts.start),
				End:       optionalInt64(flags.Changed("end"), opts.end),
				Count:     opts.count,
			}

			return a.withAdapter(func(adapter *application.Adapter) error {
				memories, err := adapter.ListMemories(cmd.Context(), params)
				if err != nil {
					return err
				}
				return a.writeJSON(nonNil(memories))
			})
		},
	}

	cmd.Flags().StringVar(&opts.table, "table", "", "Table to list (required)")
	cmd.Flags().StringVar(&opts.room, "room", "", "Room id (required)")
	cmd.Flags().StringVar(&opts.agent, "agent", "", "Agent id")
	cmd.Flags().BoolVar(&opts.unique, "unique", false, "Only unique (or, with =false, duplicate) memories")
	cmd.Flags().IntVar(&opts.count, "count", memory.DefaultListCount, "Maximum number of memories")
	cmd.Flags().Int64Var(&opts.start, "start", 0, "Earliest createdAt, epoch ms")
	cmd.Flags().Int64Var(&opts.end, "end", 0, "Latest createdAt, epoch ms")

	return cmd
}

type memorySearchOptions struct {
	table     string
	room      string
	agent     string
	unique    bool
	embedding string
	threshold float32
	count     int
}

func (a *App) newMemorySearchCmd() *cobra.Command {
	opts := &memorySearchOptions{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search memories by embedding similarity",
		Long: `Search memories by cosine similarity. The embedding is cleaned before
searching: non-finite values become 0 and values are rounded to six decimals.

Examples:
  agent-memory memory search -c config.yaml --table facts --room r1 \
    --embedding 0.1,0.2,0.3 --threshold 0.8 --count 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			embedding, err := parseEmbedding(opts.embedding)
			if err != nil {
				return err
			}
			params := memory.EmbeddingSearchParams{
				TableName: opts.table,
				RoomID:    opts.room,
				AgentID:   opts.agent,
				Unique:    optionalBool(cmd.Flags().Changed("unique"), opts.unique),
				Count:     opts.count,
			}
			if cmd.Flags().Changed("threshold") {
				params.MatchThreshold = &opts.threshold
			}

			return a.withAdapter(func(adapter *application.Adapter) error {
				memories, err := adapter.SearchMemoriesByEmbedding(cmd.Context(), embedding, params)
				if err != nil {
					return err
				}
				return a.writeJSON(nonNil(memories))
			})
		},
	}

	cmd.Flags().StringVar(&opts.table, "table", "", "Table to search")
	cmd.Flags().StringVar(&opts.room, "room", "", "Room id")
	cmd.Flags().StringVar(&opts.agent, "agent", "", "Agent id")
	cmd.Flags().BoolVar(&opts.unique, "unique", false, "Filter on the uniqueness flag")
	cmd.Flags().StringVar(&opts.embedding, "embedding", "", "Comma separated query embedding (required)")
	cmd.Flags().Float32Var(&opts.threshold, "threshold", 0, "Minimum similarity score")
	cmd.Flags().IntVar(&opts.count, "count", memory.DefaultSearchCount, "Maximum number of results")
	_ = cmd.MarkFlagRequired("embedding")

	return cmd
}

// nonNil keeps empty results encoded as [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
