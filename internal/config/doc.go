// Package config loads and validates the snapback configuration file.
//
// Configuration is YAML, searched in the current directory and in
// $XDG_CONFIG_HOME/snapback, with SNAPBACK_* environment overrides. Each
// target names a (source, backup-root) pair and its retention windows.
// Retention windows accept human-readable durations ("1 day", "2 weeks")
// which are parsed and rejected at load time, so a typo surfaces as a
// configuration error instead of a wrong retention decision later.
//
//	version: 1
//	targets:
//	  home:
//	    source: /home
//	    backups: /backup/home
//	    ignore: [".cache"]
//	    retain_all: 2 days
//	    retain_daily: 1 month
//	    decay: 1 year
//	    autoprune: true
package config
