package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(setupCmd)
}

var setupCmd = &cobra.Command{
	Use:   "setup [target]",
	Short: "Prepare the backup root for a target",
	Long: `Create the target's backup root and verify it lives on a btrfs
filesystem. Safe to run repeatedly; the first backup establishes the
baseline.`,
	Example: `  # Prepare the backup root for the 'home' target
  snapback setup home

  See Also: snapback backup`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSetup,
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}
	target, err := resolveTarget(cfg, args)
	if err != nil {
		return err
	}

	if err := newEngine(cmd, target).Setup(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Backup root ready at %s\n", target.Backups)
	return nil
}
