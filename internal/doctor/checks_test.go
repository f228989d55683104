package doctor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/thoreinstein/snapback/internal/config"
	"github.com/thoreinstein/snapback/internal/lock"
)

func TestBinaryCheck(t *testing.T) {
	// Present on every system this test runs on.
	check := &BinaryCheck{Binary: "ls", Required: true}
	result := check.Run()

	if result.Status != SeverityPass {
		t.Errorf("Status = %v, want pass", result.Status)
	}
	if result.Details["path"] == "" {
		t.Error("Details should carry the resolved path")
	}
}

func TestBinaryCheckMissing(t *testing.T) {
	tests := []struct {
		name     string
		required bool
		want     Severity
	}{
		{name: "required", required: true, want: SeverityError},
		{name: "optional", required: false, want: SeverityWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := &BinaryCheck{Binary: "definitely-not-a-real-binary", Required: tt.required}
			result := check.Run()

			if result.Status != tt.want {
				t.Errorf("Status = %v, want %v", result.Status, tt.want)
			}
			if result.FixHint == "" {
				t.Error("missing binary should carry a fix hint")
			}
		})
	}
}

func TestConfigCheckLoadError(t *testing.T) {
	check := &ConfigCheck{LoadErr: errors.New("yaml: bad")}
	result := check.Run()

	if result.Status != SeverityError {
		t.Errorf("Status = %v, want error", result.Status)
	}
}

func TestConfigCheckInvalid(t *testing.T) {
	cfg := &config.Config{
		Version: 1,
		Targets: map[string]config.Target{
			"broken": {Name: "broken", Source: "/src"}, // no backups path
		},
	}

	result := (&ConfigCheck{Config: cfg}).Run()

	if result.Status != SeverityError {
		t.Errorf("Status = %v, want error", result.Status)
	}
}

func TestConfigCheckNoTargets(t *testing.T) {
	result := (&ConfigCheck{Config: &config.Config{Version: 1}}).Run()

	if result.Status != SeverityWarning {
		t.Errorf("Status = %v, want warning", result.Status)
	}
}

func TestConfigCheckValid(t *testing.T) {
	cfg := &config.Config{
		Version: 1,
		Targets: map[string]config.Target{
			"home": {Name: "home", Source: "/home", Backups: "/mnt/backups/home"},
		},
	}

	result := (&ConfigCheck{Config: cfg}).Run()

	if result.Status != SeverityPass {
		t.Errorf("Status = %v, want pass: %s", result.Status, result.Message)
	}
}

func TestTargetCheckMissingRoot(t *testing.T) {
	target := config.Target{
		Name:    "home",
		Source:  t.TempDir(),
		Backups: filepath.Join(t.TempDir(), "missing"),
	}

	result := (&TargetCheck{Target: target}).Run()

	if result.Status != SeverityWarning {
		t.Errorf("Status = %v, want warning", result.Status)
	}
	if result.FixHint == "" {
		t.Error("missing root should suggest setup")
	}
}

func TestTargetCheckReady(t *testing.T) {
	target := config.Target{
		Name:    "home",
		Source:  t.TempDir(),
		Backups: t.TempDir(),
	}

	result := (&TargetCheck{Target: target}).Run()

	if result.Status != SeverityPass {
		t.Errorf("Status = %v, want pass: %s", result.Status, result.Message)
	}
}

func TestTargetCheckMissingSource(t *testing.T) {
	target := config.Target{
		Name:    "home",
		Source:  filepath.Join(t.TempDir(), "gone"),
		Backups: t.TempDir(),
	}

	result := (&TargetCheck{Target: target}).Run()

	if result.Status != SeverityError {
		t.Errorf("Status = %v, want error", result.Status)
	}
}

func TestTargetCheckRemoteSource(t *testing.T) {
	target := config.Target{
		Name:    "home",
		Source:  "user@host:/home",
		Backups: t.TempDir(),
	}

	result := (&TargetCheck{Target: target}).Run()

	if result.Status != SeverityInfo {
		t.Errorf("Status = %v, want info", result.Status)
	}
}

func TestTargetCheckLocked(t *testing.T) {
	target := config.Target{
		Name:    "home",
		Source:  t.TempDir(),
		Backups: t.TempDir(),
	}

	held, err := lock.NewManager(target.Backups).Acquire()
	if err != nil {
		t.Fatal(err)
	}
	defer held.Release()

	result := (&TargetCheck{Target: target}).Run()

	if result.Status != SeverityWarning {
		t.Errorf("Status = %v, want warning", result.Status)
	}
	if result.Details["pid"] != os.Getpid() {
		t.Errorf("pid = %v, want %d", result.Details["pid"], os.Getpid())
	}
}
