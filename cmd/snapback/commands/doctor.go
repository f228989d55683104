package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/snapback/internal/doctor"
	snaperrors "github.com/thoreinstein/snapback/internal/errors"
)

var (
	doctorJSON    bool
	doctorVerbose bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorVerbose, "verbose-checks", false,
		"show all checks including passed ones")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose environment and configuration issues",
	Long: `Run diagnostic checks on the snapback environment.

Verifies the external binaries snapback shells out to, validates the
configuration file, and inspects each target's backup root, source and
lock state.

Exit codes:
  0 - All checks passed (no errors or warnings)
  1 - Warnings present, no errors
  2 - Errors present`,
	Example: `  # Check the environment
  snapback doctor

  # Machine-readable output
  snapback doctor --json

  See Also: snapback init, snapback setup`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	runner := doctor.NewRunner()

	for _, bin := range []string{"rsync", "btrfs", "sudo"} {
		runner.AddCheck(&doctor.BinaryCheck{Binary: bin, Required: true})
	}
	for _, bin := range []string{"ssh", "notify-send"} {
		runner.AddCheck(&doctor.BinaryCheck{Binary: bin})
	}

	runner.AddCheck(&doctor.ConfigCheck{Config: loadedConfig, LoadErr: configLoadErr})
	if configLoadErr == nil && loadedConfig != nil {
		for _, name := range loadedConfig.TargetNames() {
			target, err := loadedConfig.Target(name)
			if err != nil {
				continue
			}
			runner.AddCheck(&doctor.TargetCheck{Target: target})
		}
	}

	report := runner.Run()

	if err := outputDoctorReport(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	if report.HasErrors() {
		return snaperrors.NewExitError(errors.New("doctor found errors"), snaperrors.ExitSystem)
	}
	if report.HasWarnings() {
		return snaperrors.NewExitError(errors.New("doctor found warnings"), snaperrors.ExitUser)
	}
	return nil
}

func outputDoctorReport(w io.Writer, report *doctor.Report) error {
	if doctorJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return outputDoctorText(w, report)
}

func outputDoctorText(w io.Writer, report *doctor.Report) error {
	// In normal mode, show only errors and warnings.
	showAll := doctorVerbose

	hasOutput := false
	for _, result := range report.Results {
		if !showAll && result.Status != doctor.SeverityError && result.Status != doctor.SeverityWarning {
			continue
		}

		hasOutput = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)

		if result.FixHint != "" && (result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning) {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
	}

	if hasOutput || showAll {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)

	return nil
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return "✓"
	case doctor.SeverityInfo:
		return "ℹ"
	case doctor.SeverityWarning:
		return "⚠"
	case doctor.SeverityError:
		return "✗"
	default:
		return "?"
	}
}
