// Package commands implements the CLI commands for snapback.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/snapback/internal/config"
	snaperrors "github.com/thoreinstein/snapback/internal/errors"
	"github.com/thoreinstein/snapback/internal/logging"
)

// version is set at build time via ldflags.
// Default to a development version for local builds.
const version = "0.1.0"

// cfgFile holds the value of the --config flag.
var cfgFile string

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// loadedConfig and configLoadErr hold the result of config loading.
var (
	loadedConfig  *config.Config
	configLoadErr error
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./config.yaml, then $XDG_CONFIG_HOME/snapback/config.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("snapback version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	loadedConfig, configLoadErr = config.Load(cfgFile)
}

var rootCmd = &cobra.Command{
	Use:   "snapback",
	Short: "Point-in-time backups on btrfs with calendar-aware retention",
	Long: `snapback takes point-in-time snapshots of a directory tree onto a
btrfs filesystem. Each backup syncs only the changes since the last run
into a staging area, then commits it as an immutable read-only
snapshot named after its creation time.

Retention is calendar-aware: recent snapshots are all kept, older ones
thin out to one per day and then one per week. An optional decay window
puts a hard age limit on everything except the most recent backup.`,
	Example: `  # Create a config file
  snapback init

  # Prepare the backup root for a target
  snapback setup home

  # Take a backup
  snapback backup home

  # See what retention would keep
  snapback list home

  See Also: snapback prune, snapback decay`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd)
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return snaperrors.NewUserError(nil, "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("SNAPBACK_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var primaryHandler slog.Handler
	switch logging.Format(logFormat) {
	case logging.FormatJSON:
		primaryHandler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	default:
		primaryHandler = logging.NewHandler(cmd.ErrOrStderr(), opts)
	}

	handlers := []slog.Handler{primaryHandler}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return snaperrors.NewUserError(err, "failed to open log file")
		}
		// File output uses JSON format
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
		}))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// getConfig returns the loaded configuration, surfacing any load error as
// a config error with a suggestion.
func getConfig() (*config.Config, error) {
	if configLoadErr != nil {
		return nil, snaperrors.NewConfigError(configLoadErr)
	}
	if errs := config.Validate(loadedConfig); len(errs) > 0 {
		combined := errs[0]
		for _, e := range errs[1:] {
			combined = errors.CombineErrors(combined, e)
		}
		return nil, snaperrors.NewConfigError(combined)
	}
	return loadedConfig, nil
}

// Execute runs the root command and reports any failure on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}

	err = classify(err)
	color.New(color.FgRed, color.Bold).Fprint(os.Stderr, "Error: ")
	fmt.Fprintln(os.Stderr, err.Error())

	var exitErr *snaperrors.ExitError
	if errors.As(err, &exitErr) && exitErr.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "Suggestion: %s\n", exitErr.Suggestion)
	}
	return err
}

// classify assigns exit codes to domain errors that commands return bare.
func classify(err error) error {
	var exitErr *snaperrors.ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	switch {
	case errors.Is(err, snaperrors.ErrUnknownTarget):
		return snaperrors.NewUserError(err, "Run 'snapback list' without arguments to pick from configured targets")
	case errors.Is(err, snaperrors.ErrInvalidConfig):
		return snaperrors.NewConfigError(err)
	case errors.Is(err, snaperrors.ErrTargetBusy):
		return snaperrors.NewExitError(err, snaperrors.ExitSystem)
	case errors.Is(err, snaperrors.ErrSourceNotReachable),
		errors.Is(err, snaperrors.ErrSyncFailed),
		errors.Is(err, snaperrors.ErrCommitFailed):
		return snaperrors.NewExitError(err, snaperrors.ExitSystem)
	default:
		return snaperrors.NewExitError(err, snaperrors.ExitUser)
	}
}
