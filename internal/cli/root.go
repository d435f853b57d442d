package cli

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"confmerge/internal/app"
	"confmerge/internal/core"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "CONFMERGE"

// newAppService is swapped in tests.
var newAppService = app.NewService

type RootConfig struct {
	ConfigFile string
	LogLevel   string
}

func Execute() {
	root := newRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:          "confmerge",
		Short:        "Resolve layered YAML configs with __base__ inheritance and list patches",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			cmd.SetContext(log.Logger.WithContext(cmd.Context()))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	cmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	cmd.PersistentFlags().Int("max-depth", core.DefaultMaxDepth, "Maximum __base__ nesting depth")
	_ = viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("max_depth", cmd.PersistentFlags().Lookup("max-depth"))

	cmd.AddCommand(newResolveCommand())
	cmd.AddCommand(newMergeCommand())
	cmd.AddCommand(newBasesCommand())
	cmd.AddCommand(newValidateCommand())
	return cmd
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("confmerge")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/confmerge")
	// A missing default config file is fine.
	_ = viper.ReadInConfig()
	return nil
}

// setupLogging sends logs to stderr; stdout is reserved for documents.
func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func exitCodeForError(err error) int {
	var circular *core.CircularReferenceError
	var keyPath *core.KeyPathError
	var indexRange *core.IndexRangeError
	switch {
	case errors.As(err, &circular):
		return 3
	case errors.As(err, &keyPath):
		return 5
	case errors.As(err, &indexRange):
		return 2
	}

	code := errbuilder.CodeOf(err)
	switch code {
	case errbuilder.CodeInvalidArgument, errbuilder.CodeAlreadyExists:
		return 2
	case errbuilder.CodeFailedPrecondition, errbuilder.CodePermissionDenied:
		return 3
	case errbuilder.CodeNotFound:
		if strings.HasPrefix(errorMessage(err), "config file not found") {
			return 4
		}
		return 5
	case errbuilder.CodeInternal:
		return 5
	default:
		return 1
	}
}

func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
