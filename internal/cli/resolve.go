package cli

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"confmerge/internal/app"
	"confmerge/internal/types"
)

type resolveOptions struct {
	Output string
	Format string
	Vars   []string
	Set    []string
}

func newResolveCommand() *cobra.Command {
	opts := resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve FILE",
		Short: "Resolve a config file with all of its bases inlined",
		Long:  "Resolve a config file, expanding __base__ inheritance and merge directives. Use - to read the document from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context(), cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "-", "Output file (- for stdout)")
	cmd.Flags().StringVar(&opts.Format, "format", string(types.OutputFormatYAML), "Output format (yaml or json)")
	cmd.Flags().StringSliceVar(&opts.Vars, "vars", nil, "Override documents merged on top of the result")
	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "Override a single value (key.path=value)")

	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("format", cmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("vars", cmd.Flags().Lookup("vars"))

	return cmd
}

func runResolve(ctx context.Context, cmd *cobra.Command, path string, opts resolveOptions) error {
	service := newAppService()
	result, err := service.Resolve(ctx, app.ResolveRequest{
		Path:      path,
		Output:    resolveString(cmd, opts.Output, "output", "output"),
		Format:    types.OutputFormat(resolveString(cmd, opts.Format, "format", "format")),
		VarsFiles: resolveStrings(cmd, opts.Vars, "vars", "vars"),
		Set:       opts.Set,
		MaxDepth:  resolveInt(cmd, 0, "max_depth", "max-depth"),
	})
	if err != nil {
		return err
	}
	log.Ctx(ctx).Info().
		Str("path", result.Path).
		Int("documents", result.Documents).
		Msg("resolved")
	return nil
}
