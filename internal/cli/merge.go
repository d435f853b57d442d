package cli

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"confmerge/internal/app"
	"confmerge/internal/types"
)

type mergeOptions struct {
	Output string
	Format string
}

func newMergeCommand() *cobra.Command {
	opts := mergeOptions{}
	cmd := &cobra.Command{
		Use:   "merge BASE OVERRIDE...",
		Short: "Merge documents left to right without expanding __base__",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd.Context(), cmd, args, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "-", "Output file (- for stdout)")
	cmd.Flags().StringVar(&opts.Format, "format", string(types.OutputFormatYAML), "Output format (yaml or json)")
	return cmd
}

func runMerge(ctx context.Context, cmd *cobra.Command, paths []string, opts mergeOptions) error {
	service := newAppService()
	result, err := service.Merge(ctx, app.MergeRequest{
		Paths:  paths,
		Output: resolveString(cmd, opts.Output, "output", "output"),
		Format: types.OutputFormat(resolveString(cmd, opts.Format, "format", "format")),
	})
	if err != nil {
		return err
	}
	log.Ctx(ctx).Info().Int("documents", result.Merged).Msg("merged")
	return nil
}
