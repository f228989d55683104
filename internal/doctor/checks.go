package doctor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/thoreinstein/snapback/internal/config"
	"github.com/thoreinstein/snapback/internal/lock"
	"github.com/thoreinstein/snapback/internal/rsync"
)

// BinaryCheck verifies an external command snapback shells out to is on
// the PATH.
type BinaryCheck struct {
	// Binary is the command name to look up.
	Binary string

	// Required marks binaries snapback cannot work without. Optional
	// ones (ssh, notify-send) only warn.
	Required bool
}

var _ Check = (*BinaryCheck)(nil)

// Name returns the unique identifier for this check.
func (c *BinaryCheck) Name() string {
	return "binary-" + c.Binary
}

// Category returns the grouping for this check.
func (c *BinaryCheck) Category() string {
	return "environment"
}

// Run looks up the binary on the PATH.
func (c *BinaryCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	path, err := exec.LookPath(c.Binary)
	if err != nil {
		result.Status = SeverityWarning
		if c.Required {
			result.Status = SeverityError
		}
		result.Message = fmt.Sprintf("%s not found on PATH", c.Binary)
		result.FixHint = fmt.Sprintf("Install %s with your package manager", c.Binary)
		return result
	}

	result.Status = SeverityPass
	result.Message = fmt.Sprintf("%s found", c.Binary)
	result.Details = map[string]any{"path": path}
	return result
}

// ConfigCheck verifies the configuration file loads and validates.
type ConfigCheck struct {
	Config  *config.Config
	LoadErr error
}

var _ Check = (*ConfigCheck)(nil)

// Name returns the unique identifier for this check.
func (c *ConfigCheck) Name() string {
	return "config"
}

// Category returns the grouping for this check.
func (c *ConfigCheck) Category() string {
	return "config"
}

// Run reports configuration load and validation problems.
func (c *ConfigCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	if c.LoadErr != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("config does not load: %v", c.LoadErr)
		result.FixHint = "Check the config file, or run: snapback init"
		return result
	}

	if errs := config.Validate(c.Config); len(errs) > 0 {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("config has %d validation error(s)", len(errs))
		details := make([]string, len(errs))
		for i, e := range errs {
			details[i] = e.Error()
		}
		result.Details = map[string]any{"errors": details}
		return result
	}

	if len(c.Config.Targets) == 0 {
		result.Status = SeverityWarning
		result.Message = "no targets configured"
		result.FixHint = "Declare targets in the config file; run: snapback init"
		return result
	}

	result.Status = SeverityPass
	result.Message = fmt.Sprintf("config valid, %d target(s)", len(c.Config.Targets))
	return result
}

// TargetCheck inspects one target's backup root and source.
type TargetCheck struct {
	Target config.Target
}

var _ Check = (*TargetCheck)(nil)

// Name returns the unique identifier for this check.
func (c *TargetCheck) Name() string {
	return "target-" + c.Target.Name
}

// Category returns the grouping for this check.
func (c *TargetCheck) Category() string {
	return "target"
}

// Run checks the backup root exists, the source is reachable when it is
// local, and surfaces a leftover lockfile with its holder.
func (c *TargetCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Message:  "target ready",
	}

	if info, err := os.Stat(c.Target.Backups); err != nil || !info.IsDir() {
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("backup root %s does not exist", c.Target.Backups)
		result.FixHint = fmt.Sprintf("Run: snapback setup %s", c.Target.Name)
		return result
	}

	if rsync.IsRemote(c.Target.Source) {
		result.Status = SeverityInfo
		result.Message = "remote source, reachability not checked"
	} else if _, err := os.Stat(c.Target.Source); err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("source %s is not accessible", c.Target.Source)
		return result
	}

	if holder, held := lockHolder(c.Target.Backups); held {
		result.Status = SeverityWarning
		result.Message = "target is locked"
		result.Details = map[string]any{
			"pid":      holder.PID,
			"hostname": holder.Hostname,
		}
		result.FixHint = "If no snapback process is running, remove the " + lock.Filename + " file"
	}

	return result
}

// lockHolder reads the holder of a leftover lockfile, if any.
func lockHolder(root string) (lock.Info, bool) {
	var info lock.Info
	data, err := os.ReadFile(filepath.Join(root, lock.Filename))
	if err != nil {
		return info, false
	}
	_ = toml.Unmarshal(data, &info)
	return info, true
}
