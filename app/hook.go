package app

import (
	"log/slog"
	"os"
	"os/exec"

	"github.com/kballard/go-shellquote"
)

// runRecordCmd executes the configured post-record command with the standard
// streams attached. Failures never undo the record that triggered them.
func runRecordCmd(cmdStr string) {
	if cmdStr == "" {
		return
	}

	cmdSlice, err := shellquote.Split(cmdStr)
	if err != nil {
		slog.Warn(
			"unable to parse record command",
			slog.String("command", cmdStr),
			slog.Any("error", err),
		)

		return
	}

	name := cmdSlice[0]
	args := cmdSlice[1:]

	cmd := exec.Command(name, args...)

	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		slog.Warn(
			"record command failed",
			slog.String("command", cmdStr),
			slog.Any("error", err),
		)
	}
}
