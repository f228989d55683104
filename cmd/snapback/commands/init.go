package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/snapback/internal/config"
	"github.com/thoreinstein/snapback/pkg/fileutil"
)

var (
	initForce bool
	initPath  string
)

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing configuration")
	initCmd.Flags().StringVar(&initPath, "path", "", "Write the config file to this path instead of the default location")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter configuration file",
	Long: `Create a commented starter config at $XDG_CONFIG_HOME/snapback/config.yaml.

Edit the generated file to declare your backup targets, then run
'snapback setup <target>' to prepare each backup root.`,
	Example: `  # Create the default config file
  snapback init

  # Overwrite an existing config
  snapback init --force

  See Also: snapback setup`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

// exampleConfig is the starter file. Kept as a literal so the comments
// survive into the generated file.
const exampleConfig = `version: 1

targets:
  home:
    # Tree to back up. Remote rsync syntax works too: user@host:/path
    source: /home
    # Backup root; must live on a btrfs filesystem.
    backups: /mnt/backups/home
    # rsync exclude patterns.
    ignore:
      - .cache
    # Keep every snapshot younger than this.
    retain_all: 1 day
    # Keep the last snapshot of each day within this window; beyond it
    # the last snapshot of each week is kept until decay removes it.
    retain_daily: 1 month
    # Hard age limit, enforced by 'snapback decay'. Omit to keep weekly
    # snapshots forever.
    # decay: 1 year
    # Run prune/decay automatically after each successful backup.
    # autoprune: true
    # autodecay: true
    # Send desktop notifications to this ssh host instead of locally.
    # notify_remote: desktop
`

func runInit(cmd *cobra.Command, _ []string) error {
	configPath := initPath
	if configPath == "" {
		configPath = filepath.Join(xdg.ConfigHome, config.AppName, "config.yaml")
	}

	if _, err := os.Stat(configPath); err == nil && !initForce {
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration already exists at %s\n", configPath)
		fmt.Fprintln(cmd.OutOrStdout(), "Use --force to overwrite")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	if err := fileutil.AtomicWriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return errors.Wrap(err, "writing config file")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", configPath)
	return nil
}
