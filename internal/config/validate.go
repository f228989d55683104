package config

import (
	"strings"

	"github.com/cockroachdb/errors"

	snaperrors "github.com/thoreinstein/snapback/internal/errors"
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version < 1 {
		errs = append(errs, errors.Wrap(snaperrors.ErrInvalidConfig, "version must be >= 1"))
	}

	for name, t := range cfg.Targets {
		if err := validateTarget(name, t); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

func validateTarget(name string, t Target) error {
	switch {
	case t.Source == "":
		return errors.Wrapf(snaperrors.ErrInvalidConfig, "target %q: source is required", name)
	case t.Backups == "":
		return errors.Wrapf(snaperrors.ErrInvalidConfig, "target %q: backups is required", name)
	case !strings.HasPrefix(t.Backups, "/"):
		return errors.Wrapf(snaperrors.ErrInvalidConfig, "target %q: backups must be an absolute local path", name)
	}
	// Overlapping windows (retain_all > retain_daily) are legal: the
	// keep-set is a union, so the overlap is idempotent.
	return nil
}
