package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/snapback/internal/engine"
)

var pruneYes bool

func init() {
	pruneCmd.Flags().BoolVarP(&pruneYes, "yes", "y", false, "Delete without confirmation")
	rootCmd.AddCommand(pruneCmd)
}

var pruneCmd = &cobra.Command{
	Use:   "prune [target]",
	Short: "Delete snapshots the retention policy no longer keeps",
	Long: `Apply the tiered retention policy and delete everything it does not
keep. Kept are: the most recent snapshot, everything inside retain_all,
the last snapshot of each day inside retain_daily, and the last snapshot
of each week beyond that.

Each deletion is confirmed individually unless --yes is given. The pass
is safe to re-run; a second prune right after a first deletes nothing.`,
	Example: `  # Prune with per-snapshot confirmation
  snapback prune home

  # Prune unattended (cron)
  snapback prune home --yes

  See Also: snapback list, snapback decay`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPrune,
}

func runPrune(cmd *cobra.Command, args []string) error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}
	target, err := resolveTarget(cfg, args)
	if err != nil {
		return err
	}

	result, err := newEngine(cmd, target).Prune(cmd.Context(), confirmFunc(cmd, pruneYes, "Delete"))
	reportResult(cmd.OutOrStdout(), result)
	return err
}

// reportResult summarizes a prune/decay/destroy pass.
func reportResult(w io.Writer, result engine.Result) {
	for _, n := range result.Deleted {
		fmt.Fprintf(w, "Deleted %s\n", n.String())
	}
	for _, n := range result.Skipped {
		fmt.Fprintf(w, "Skipped %s\n", n.String())
	}
	fmt.Fprintf(w, "%d deleted, %d skipped, %d kept\n",
		len(result.Deleted), len(result.Skipped), result.Kept)
}
