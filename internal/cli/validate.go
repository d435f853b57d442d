package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"confmerge/internal/app"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check that config files resolve cleanly",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), cmd, args)
		},
	}
}

func runValidate(ctx context.Context, cmd *cobra.Command, paths []string) error {
	service := newAppService()
	result, err := service.Validate(ctx, app.ValidateRequest{
		Paths:    paths,
		MaxDepth: resolveInt(cmd, 0, "max_depth", "max-depth"),
	})
	if err != nil {
		return err
	}
	for _, doc := range result.Documents {
		fmt.Fprintf(cmd.OutOrStdout(), "valid: %s (%d bases)\n", doc.Path, doc.Bases)
	}
	return nil
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return value
}

func resolveStrings(cmd *cobra.Command, values []string, key string, flagName string) []string {
	if cmd == nil {
		if len(values) > 0 {
			return values
		}
		return viper.GetStringSlice(key)
	}
	if flagChanged(cmd, flagName) {
		return values
	}
	return viper.GetStringSlice(key)
}

func resolveInt(cmd *cobra.Command, value int, key string, flagName string) int {
	if cmd == nil {
		return value
	}
	if value != 0 && flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetInt(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
