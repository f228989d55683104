package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/thoreinstein/snapback/internal/engine"
	"github.com/thoreinstein/snapback/internal/timestamp"
)

func mustName(t *testing.T, s string) timestamp.Name {
	t.Helper()
	n, err := timestamp.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return n
}

func TestReportResult(t *testing.T) {
	result := engine.Result{
		Deleted: []timestamp.Name{mustName(t, "20260701T060000")},
		Skipped: []timestamp.Name{mustName(t, "20260702T060000")},
		Kept:    3,
	}

	var buf bytes.Buffer
	reportResult(&buf, result)

	output := buf.String()
	for _, want := range []string{
		"Deleted 20260701T060000",
		"Skipped 20260702T060000",
		"1 deleted, 1 skipped, 3 kept",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestPruneCommand_Metadata(t *testing.T) {
	if pruneCmd.Use != "prune [target]" {
		t.Errorf("Use = %q, want %q", pruneCmd.Use, "prune [target]")
	}
	if pruneCmd.Flags().Lookup("yes") == nil {
		t.Error("--yes flag should be defined")
	}
}

func TestConfirmFuncYesSkipsPrompt(t *testing.T) {
	confirm := confirmFunc(nil, true, "Delete")
	if !confirm(mustName(t, "20260101T000000")) {
		t.Error("--yes should authorize every deletion")
	}
}
