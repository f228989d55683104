package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list [target]",
	Short: "List snapshots with their retention verdicts",
	Long: `List a target's snapshots oldest first, annotated with the reason the
retention policy keeps each one. Snapshots without a reason would be
deleted by the next prune; the DECAY marker flags snapshots past the
decay cutoff.`,
	Example: `  # List snapshots for the 'home' target
  snapback list home

  # Machine-readable output
  snapback list home --json

  See Also: snapback prune, snapback decay`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

// listEntry is the JSON shape for one snapshot.
type listEntry struct {
	Name           string    `json:"name"`
	Time           time.Time `json:"time"`
	AgeSeconds     float64   `json:"age_seconds"`
	KeepReason     string    `json:"keep_reason,omitempty"`
	PruneCandidate bool      `json:"prune_candidate"`
	DecayCandidate bool      `json:"decay_candidate"`

	age time.Duration
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}
	target, err := resolveTarget(cfg, args)
	if err != nil {
		return err
	}

	entries, err := newEngine(cmd, target).List(cmd.Context())
	if err != nil {
		return err
	}

	out := make([]listEntry, len(entries))
	for i, e := range entries {
		out[i] = listEntry{
			Name:           e.Name.String(),
			Time:           e.Name.Time(),
			AgeSeconds:     e.Age.Seconds(),
			KeepReason:     string(e.Reason),
			PruneCandidate: e.Reason == "",
			DecayCandidate: e.DecayCandidate,
			age:            e.Age,
		}
	}

	if listJSON {
		return outputListJSON(cmd.OutOrStdout(), out)
	}
	return outputListTabular(cmd.OutOrStdout(), target.Name, out)
}

func outputListJSON(w io.Writer, entries []listEntry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func outputListTabular(w io.Writer, targetName string, entries []listEntry) error {
	if len(entries) == 0 {
		fmt.Fprintf(w, "No snapshots for target %q yet\n", targetName)
		return nil
	}

	prune := color.New(color.FgYellow).SprintFunc()
	decay := color.New(color.FgRed).SprintFunc()

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SNAPSHOT\tAGE\tKEEP\tFLAGS")
	for _, e := range entries {
		keep := e.KeepReason
		if keep == "" {
			keep = prune("prune")
		}
		flags := ""
		if e.DecayCandidate {
			flags = decay("DECAY")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, formatAge(e.age), keep, flags)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d snapshot(s)\n", len(entries))
	return nil
}
