// Package config provides configuration management for snapback using Viper.
package config

import (
	"path/filepath"
	"sort"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	snaperrors "github.com/thoreinstein/snapback/internal/errors"
)

// AppName is the application name used for config file naming.
const AppName = "snapback"

// Defaults for retention windows, mirroring the original tool's defaults.
const (
	DefaultRetainAll   = "1 day"
	DefaultRetainDaily = "1 month"
)

// Config represents the top-level configuration structure.
type Config struct {
	Version int               `mapstructure:"version" yaml:"version"`
	Targets map[string]Target `mapstructure:"targets" yaml:"targets"`
}

// Target is one configured (source, backup-root) pair with its retention
// parameters. The core treats these values as validated inputs.
type Target struct {
	// Name is the key under which the target appears in the config file.
	// Populated when loading, not read from the file.
	Name string `mapstructure:"-" yaml:"-"`

	// Source is the tree to back up. Remote rsync syntax (host:path,
	// user@host:path) is allowed.
	Source string `mapstructure:"source" yaml:"source"`

	// Backups is the backup root on a btrfs filesystem; it will hold the
	// snapshot directories and the staging subvolume.
	Backups string `mapstructure:"backups" yaml:"backups"`

	// Ignore lists rsync exclude patterns.
	Ignore []string `mapstructure:"ignore" yaml:"ignore,omitempty"`

	// RetainAll keeps every snapshot younger than this window.
	RetainAll Duration `mapstructure:"retain_all" yaml:"retain_all"`

	// RetainDaily keeps one snapshot per calendar day within this window.
	RetainDaily Duration `mapstructure:"retain_daily" yaml:"retain_daily"`

	// Decay is the hard age cutoff applied by the decay action. Unset
	// means decay keeps everything.
	Decay Duration `mapstructure:"decay" yaml:"decay,omitempty"`

	// AutoPrune runs prune after each successful backup.
	AutoPrune bool `mapstructure:"autoprune" yaml:"autoprune,omitempty"`

	// AutoDecay runs decay after each successful backup.
	AutoDecay bool `mapstructure:"autodecay" yaml:"autodecay,omitempty"`

	// NotifyRemote, when set, sends desktop notifications to this ssh
	// host instead of the local machine.
	NotifyRemote string `mapstructure:"notify_remote" yaml:"notify_remote,omitempty"`
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	// Config file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".") // Current directory
	viper.AddConfigPath(filepath.Join(xdg.ConfigHome, AppName))

	// Environment variable support
	viper.SetEnvPrefix("SNAPBACK")
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("version", 1)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// If user specified a path, this is an error
			if path != "" {
				return nil, errors.Wrapf(err, "config file not found at %s", path)
			}
			// Otherwise (implicit load), it's fine to use defaults
		} else {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := viper.Unmarshal(&cfg, hook); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// applyDefaults fills target names and default retention windows.
func applyDefaults(cfg *Config) {
	for name, t := range cfg.Targets {
		t.Name = name
		if t.RetainAll.IsZero() {
			t.RetainAll, _ = ParseDuration(DefaultRetainAll)
		}
		if t.RetainDaily.IsZero() {
			t.RetainDaily, _ = ParseDuration(DefaultRetainDaily)
		}
		cfg.Targets[name] = t
	}
}

// Target returns the named target or ErrUnknownTarget.
func (c *Config) Target(name string) (Target, error) {
	t, ok := c.Targets[name]
	if !ok {
		return Target{}, errors.Wrapf(snaperrors.ErrUnknownTarget, "%q", name)
	}
	return t, nil
}

// TargetNames returns the configured target names, sorted.
func (c *Config) TargetNames() []string {
	names := make([]string, 0, len(c.Targets))
	for name := range c.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
