package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var decayYes bool

func init() {
	decayCmd.Flags().BoolVarP(&decayYes, "yes", "y", false, "Delete without confirmation")
	rootCmd.AddCommand(decayCmd)
}

var decayCmd = &cobra.Command{
	Use:   "decay [target]",
	Short: "Delete snapshots older than the decay window",
	Long: `Delete every snapshot older than the target's decay window, including
weekly snapshots prune keeps forever. The most recent snapshot survives
even when it is past the cutoff, so decay can never empty a target.

Targets without a decay window configured keep everything.`,
	Example: `  # Apply the decay cutoff with per-snapshot confirmation
  snapback decay home

  # Unattended (cron)
  snapback decay home --yes

  See Also: snapback prune`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecay,
}

func runDecay(cmd *cobra.Command, args []string) error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}
	target, err := resolveTarget(cfg, args)
	if err != nil {
		return err
	}

	if target.Decay.IsZero() {
		fmt.Fprintf(cmd.OutOrStdout(), "Target %q has no decay window configured; nothing to do\n", target.Name)
		return nil
	}

	result, err := newEngine(cmd, target).Decay(cmd.Context(), confirmFunc(cmd, decayYes, "Delete"))
	reportResult(cmd.OutOrStdout(), result)
	return err
}
