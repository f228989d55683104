package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thoreinstein/snapback/internal/config"
)

func runInitAt(t *testing.T, path string, force bool) string {
	t.Helper()

	initPath = path
	initForce = force
	defer func() {
		initPath = ""
		initForce = false
	}()

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	if err := runInit(cmd, nil); err != nil {
		t.Fatalf("runInit() error = %v", err)
	}
	return buf.String()
}

func TestInitWritesStarterConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapback", "config.yaml")

	out := runInitAt(t, path, false)
	if !strings.Contains(out, "Created "+path) {
		t.Errorf("unexpected output: %q", out)
	}

	// The starter file must itself be a loadable, valid config.
	viper.Reset()
	config.Init()
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		t.Errorf("generated config does not validate: %v", errs)
	}
	if len(cfg.Targets) == 0 {
		t.Error("starter config should declare an example target")
	}
}

func TestInitRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := runInitAt(t, path, false)
	if !strings.Contains(out, "already exists") {
		t.Errorf("unexpected output: %q", out)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "version: 1\n" {
		t.Error("existing config was modified without --force")
	}
}

func TestInitForceOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	runInitAt(t, path, true)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "targets:") {
		t.Error("config was not overwritten with the starter file")
	}
}
