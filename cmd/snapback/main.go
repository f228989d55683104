// Package main is the entry point for the snapback CLI.
package main

import (
	"os"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/snapback/cmd/snapback/commands"
	snaperrors "github.com/thoreinstein/snapback/internal/errors"
)

func main() {
	if err := commands.Execute(); err != nil {
		var exitErr *snaperrors.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(snaperrors.ExitSystem)
	}
}
