// Package notify sends best-effort desktop notifications about backup
// results, locally via notify-send or on a remote host via ssh.
package notify

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
)

const (
	notifySend = "notify-send"
	okIcon     = "ok"
	errorIcon  = "error"
)

// Send shows a desktop notification. When remote is non-empty the command
// runs on that host through ssh. Notifications never fail an operation: a
// missing binary or unreachable host only logs a warning.
func Send(ctx context.Context, log *slog.Logger, title, message string, isError bool, remote string) {
	icon := okIcon
	if isError {
		icon = errorIcon
	}
	args := []string{notifySend, title, message, "-i", icon}
	if remote != "" {
		quoted := make([]string, len(args))
		for i, a := range args {
			quoted[i] = shellQuote(a)
		}
		args = []string{"ssh", remote, strings.Join(quoted, " ")}
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	if err := cmd.Run(); err != nil {
		log.Warn("could not send notification", "title", title, "error", err)
	}
}

// shellQuote wraps s in single quotes for the remote shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
