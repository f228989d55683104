package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/snapback/internal/editor"
	snaperrors "github.com/thoreinstein/snapback/internal/errors"
)

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or edit the configuration",
	Long: `Show the resolved configuration in YAML form.

Without a subcommand, prints the loaded configuration with defaults
applied.`,
	Example: `  # Show the resolved configuration
  snapback config

  # Print the config file location
  snapback config path

  # Open the config file in $EDITOR
  snapback config edit

  See Also: snapback init, snapback doctor`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := viper.ConfigFileUsed()
		if path == "" {
			return snaperrors.NewUserError(
				snaperrors.ErrInvalidConfig,
				"No config file found; run: snapback init")
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in your editor",
	Long:  `Open the config file with $EDITOR (falling back to $VISUAL, nano, vi).`,
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		path := viper.ConfigFileUsed()
		if path == "" {
			return snaperrors.NewUserError(
				snaperrors.ErrInvalidConfig,
				"No config file found; run: snapback init")
		}
		return editor.Open(path)
	},
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}

	if path := viper.ConfigFileUsed(); path != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", path)
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	defer enc.Close()
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return nil
}
