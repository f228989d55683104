package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cleanCmd)
}

var cleanCmd = &cobra.Command{
	Use:   "clean [target]",
	Short: "Remove the staging area",
	Long: `Delete the target's staging subvolume. Snapshots are untouched; the
next backup reseeds the staging area from the most recent snapshot and
retransfers whatever changed since.

Useful after an aborted transfer that left the staging area in a state
you do not trust.`,
	Example: `  # Discard the staging area
  snapback clean home

  See Also: snapback backup`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}
	target, err := resolveTarget(cfg, args)
	if err != nil {
		return err
	}

	if err := newEngine(cmd, target).Clean(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Staging area for %q removed\n", target.Name)
	return nil
}
