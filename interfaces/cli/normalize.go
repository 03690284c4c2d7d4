package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/agent-memory/infrastructure/textnorm"
)

func (a *App) newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize [text...]",
		Short: "Strip markup from text the way stored content is compared",
		Long: `Run the content normalizer over the arguments, or over stdin when
no argument is given.

Examples:
  agent-memory normalize "# Title with [a link](https://example.com)"
  cat notes.md | agent-memory normalize`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(a.stdin)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				text = string(data)
			}
			_, err := fmt.Fprintln(a.stdout, textnorm.Normalize(text))
			return err
		},
	}
}
