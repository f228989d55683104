package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var destroyYes bool

func init() {
	destroyCmd.Flags().BoolVarP(&destroyYes, "yes", "y", false, "Destroy without confirmation")
	rootCmd.AddCommand(destroyCmd)
}

var destroyCmd = &cobra.Command{
	Use:   "destroy [target]",
	Short: "Delete all snapshots and the backup root",
	Long: `Delete every snapshot of the target, its staging area and finally the
backup root directory itself. This is irreversible.

Each snapshot deletion is confirmed individually unless --yes is given;
declining any confirmation leaves the backup root in place.`,
	Example: `  # Destroy a target interactively
  snapback destroy old-laptop

  # No questions asked
  snapback destroy old-laptop --yes

  See Also: snapback clean`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDestroy,
}

func runDestroy(cmd *cobra.Command, args []string) error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}
	target, err := resolveTarget(cfg, args)
	if err != nil {
		return err
	}

	result, err := newEngine(cmd, target).Destroy(cmd.Context(), confirmFunc(cmd, destroyYes, "Destroy"))
	reportResult(cmd.OutOrStdout(), result)
	if err != nil {
		return err
	}
	if len(result.Skipped) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Backup root %s removed\n", target.Backups)
	}
	return nil
}
