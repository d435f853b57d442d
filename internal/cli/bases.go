package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"confmerge/internal/app"
	"confmerge/internal/types"
)

func newBasesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bases FILE",
		Short: "Print the __base__ tree of a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBases(cmd.Context(), cmd, args[0])
		},
	}
}

func runBases(ctx context.Context, cmd *cobra.Command, path string) error {
	service := newAppService()
	result, err := service.Bases(ctx, app.BasesRequest{
		Path:     path,
		MaxDepth: resolveInt(cmd, 0, "max_depth", "max-depth"),
	})
	if err != nil {
		return err
	}
	printBases(cmd.OutOrStdout(), result.Documents)
	return nil
}

func printBases(out io.Writer, events []types.DocumentEvent) {
	for _, event := range events {
		name := string(event.Ref)
		if event.Ref.IsInline() {
			name = "<stdin>"
		}
		line := strings.Repeat("  ", event.Depth) + name
		if event.KeyPath != "" {
			line += " [" + event.KeyPath + "]"
		}
		if event.Cached {
			line += " (cached)"
		}
		fmt.Fprintln(out, line)
	}
}
