package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrInvalidDuration indicates a retention window value that could not be
// parsed. Durations are validated at load time so a bad value is a
// configuration error, never a surprise at retention time.
var ErrInvalidDuration = errors.New("invalid duration")

// Duration is a retention window. It accepts Go duration syntax ("36h"),
// compact day/week suffixes ("14d", "8w") and the human-readable forms the
// config file documents ("1 day", "2 weeks", "1 month"). Months count as
// 30 days and years as 365; retention buckets use real calendar boundaries,
// these units only size the windows.
type Duration time.Duration

// wordUnits maps spelled-out units to their length. Singular and plural
// are both accepted.
var wordUnits = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
	"week":   7 * 24 * time.Hour,
	"month":  30 * 24 * time.Hour,
	"year":   365 * 24 * time.Hour,
}

// UnmarshalText implements encoding.TextUnmarshaler so Duration works with
// the viper/mapstructure decode hook and with yaml.v3.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the window as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// IsZero reports whether the window is unset.
func (d Duration) IsZero() bool {
	return d == 0
}

// ParseDuration parses all accepted duration forms. The empty string is
// the zero Duration, meaning "unset".
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, nil
	}

	// Spaced form: "1 day", "2 weeks".
	if fields := strings.Fields(s); len(fields) == 2 {
		n, err := strconv.Atoi(fields[0])
		if err != nil || n < 0 {
			return 0, errors.Wrapf(ErrInvalidDuration, "%q", s)
		}
		unit, ok := wordUnits[strings.TrimSuffix(fields[1], "s")]
		if !ok {
			return 0, errors.Wrapf(ErrInvalidDuration, "%q: unknown unit %q", s, fields[1])
		}
		return Duration(time.Duration(n) * unit), nil
	}

	// Compact day/week suffix: "14d", "8w".
	if n := len(s); n > 1 && (s[n-1] == 'd' || s[n-1] == 'w') && isDigits(s[:n-1]) {
		count, err := strconv.Atoi(s[:n-1])
		if err != nil {
			return 0, errors.Wrapf(ErrInvalidDuration, "%q", s)
		}
		unit := 24 * time.Hour
		if s[n-1] == 'w' {
			unit = 7 * 24 * time.Hour
		}
		return Duration(time.Duration(count) * unit), nil
	}

	// Everything else must be a Go duration.
	parsed, err := time.ParseDuration(s)
	if err != nil || parsed < 0 {
		return 0, errors.Wrapf(ErrInvalidDuration, "%q", s)
	}
	return Duration(parsed), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
