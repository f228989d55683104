package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	snaperrors "github.com/thoreinstein/snapback/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadConfig(t *testing.T, content string) *Config {
	t.Helper()
	viper.Reset()
	Init()
	cfg, err := Load(writeConfig(t, content))
	require.NoError(t, err)
	return cfg
}

func TestLoadFullTarget(t *testing.T) {
	cfg := loadConfig(t, `
version: 1
targets:
  home:
    source: /home
    backups: /backup/home
    ignore: [".cache", "*.tmp"]
    retain_all: 2 days
    retain_daily: 2 weeks
    decay: 1 year
    autoprune: true
    autodecay: true
    notify_remote: user@desktop
`)

	target, err := cfg.Target("home")
	require.NoError(t, err)

	const day = 24 * time.Hour
	assert.Equal(t, "home", target.Name)
	assert.Equal(t, "/home", target.Source)
	assert.Equal(t, "/backup/home", target.Backups)
	assert.Equal(t, []string{".cache", "*.tmp"}, target.Ignore)
	assert.Equal(t, 2*day, target.RetainAll.Std())
	assert.Equal(t, 14*day, target.RetainDaily.Std())
	assert.Equal(t, 365*day, target.Decay.Std())
	assert.True(t, target.AutoPrune)
	assert.True(t, target.AutoDecay)
	assert.Equal(t, "user@desktop", target.NotifyRemote)

	assert.Empty(t, Validate(cfg))
}

func TestLoadDefaults(t *testing.T) {
	cfg := loadConfig(t, `
targets:
  data:
    source: server:/srv/data
    backups: /backup/data
`)

	target, err := cfg.Target("data")
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, target.RetainAll.Std(), "retain_all defaults to 1 day")
	assert.Equal(t, 30*24*time.Hour, target.RetainDaily.Std(), "retain_daily defaults to 1 month")
	assert.True(t, target.Decay.IsZero(), "decay defaults to unset")
	assert.Equal(t, 1, cfg.Version)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	viper.Reset()
	Init()
	_, err := Load(writeConfig(t, `
targets:
  home:
    source: /home
    backups: /backup/home
    retain_all: whenever
`))
	require.Error(t, err)
}

func TestTargetLookup(t *testing.T) {
	cfg := loadConfig(t, `
targets:
  b: {source: /b, backups: /backup/b}
  a: {source: /a, backups: /backup/a}
`)

	_, err := cfg.Target("nope")
	assert.ErrorIs(t, err, snaperrors.ErrUnknownTarget)

	assert.Equal(t, []string{"a", "b"}, cfg.TargetNames())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{
			name:    "missing source",
			yaml:    "targets:\n  x: {backups: /backup/x}\n",
			wantErr: true,
		},
		{
			name:    "missing backups",
			yaml:    "targets:\n  x: {source: /x}\n",
			wantErr: true,
		},
		{
			name:    "relative backups",
			yaml:    "targets:\n  x: {source: /x, backups: backup/x}\n",
			wantErr: true,
		},
		{
			name: "overlapping windows are legal",
			yaml: "targets:\n  x: {source: /x, backups: /backup/x, retain_all: 2 months, retain_daily: 1 week}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadConfig(t, tt.yaml)
			errs := Validate(cfg)
			if tt.wantErr {
				require.NotEmpty(t, errs)
				assert.ErrorIs(t, errs[0], snaperrors.ErrInvalidConfig)
			} else {
				assert.Empty(t, errs)
			}
		})
	}
}
