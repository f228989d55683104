package commands

import (
	"errors"
	"testing"

	snaperrors "github.com/thoreinstein/snapback/internal/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "unknown target", err: snaperrors.ErrUnknownTarget, wantCode: snaperrors.ExitUser},
		{name: "invalid config", err: snaperrors.ErrInvalidConfig, wantCode: snaperrors.ExitUser},
		{name: "target busy", err: snaperrors.ErrTargetBusy, wantCode: snaperrors.ExitSystem},
		{name: "sync failed", err: snaperrors.ErrSyncFailed, wantCode: snaperrors.ExitSystem},
		{name: "commit failed", err: snaperrors.ErrCommitFailed, wantCode: snaperrors.ExitSystem},
		{name: "source unreachable", err: snaperrors.ErrSourceNotReachable, wantCode: snaperrors.ExitSystem},
		{name: "plain error", err: errors.New("boom"), wantCode: snaperrors.ExitUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := classify(tt.err)

			var exitErr *snaperrors.ExitError
			if !errors.As(classified, &exitErr) {
				t.Fatalf("classify(%v) did not return an ExitError", tt.err)
			}
			if exitErr.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", exitErr.Code, tt.wantCode)
			}
		})
	}
}

func TestClassifyPreservesExitError(t *testing.T) {
	orig := snaperrors.NewUserError(errors.New("bad flag"), "try --help")

	classified := classify(orig)

	var exitErr *snaperrors.ExitError
	if !errors.As(classified, &exitErr) {
		t.Fatal("classify() did not return an ExitError")
	}
	if exitErr != orig {
		t.Error("classify() should pass an existing ExitError through unchanged")
	}
	if exitErr.Suggestion != "try --help" {
		t.Errorf("Suggestion = %q", exitErr.Suggestion)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	if rootCmd.Use != "snapback" {
		t.Errorf("Use = %q, want %q", rootCmd.Use, "snapback")
	}
	if !rootCmd.SilenceErrors || !rootCmd.SilenceUsage {
		t.Error("root command should silence cobra's own error and usage output")
	}

	for _, flag := range []string{"config", "verbose", "quiet", "log-format", "log-file"} {
		if rootCmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("persistent flag --%s should be defined", flag)
		}
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	want := map[string]bool{
		"init":    false,
		"setup":   false,
		"backup":  false,
		"list":    false,
		"prune":   false,
		"decay":   false,
		"destroy": false,
		"clean":   false,
		"gen-doc": false,
		"version": false,
		"doctor":  false,
		"config":  false,
	}

	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q is not registered", name)
		}
	}
}
