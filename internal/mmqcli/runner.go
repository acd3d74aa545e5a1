// Package mmqcli shells out to the mmq document-indexing CLI and turns its
// human-readable text output into structured records.
package mmqcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrNotFound is returned when the tool reports a missing document or
// collection.
var ErrNotFound = errors.New("not found")

// ExecError carries the exit status and stderr of a failed invocation.
type ExecError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ExecError) Error() string {
	msg := lastLine(e.Stderr)
	if msg == "" {
		msg = fmt.Sprintf("exit status %d", e.ExitCode)
	}
	return fmt.Sprintf("mmq %s: %s", strings.Join(e.Args, " "), msg)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}

// Runner executes one tool invocation and returns its stdout. input, when
// non-empty, is written to the process's stdin (the tool reads interactive
// confirmations there).
type Runner interface {
	Run(ctx context.Context, input string, args ...string) (string, error)
}

// ExecRunner runs the configured mmq binary as a subprocess.
type ExecRunner struct {
	Executable string
	// DBPath, when set, is forwarded as --db to every invocation.
	DBPath  string
	Timeout time.Duration
	Logger  *slog.Logger
}

// Run invokes the tool with the given arguments. A non-zero exit returns
// *ExecError; the context (bounded by Timeout when set) cancels the process.
func (r *ExecRunner) Run(ctx context.Context, input string, args ...string) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	argv := args
	if r.DBPath != "" {
		argv = append([]string{"--db", r.DBPath}, args...)
	}

	cmd := exec.CommandContext(ctx, r.Executable, argv...)
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	start := time.Now()
	err := cmd.Run()
	if r.Logger != nil {
		r.Logger.Debug("mmq invoked",
			slog.String("args", strings.Join(argv, " ")),
			slog.Duration("took", time.Since(start)),
			slog.Bool("ok", err == nil))
	}

	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("mmq %s: %w", strings.Join(args, " "), ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &ExecError{
				Args:     args,
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			}
		}
		return "", fmt.Errorf("run mmq: %w", err)
	}

	return stdout.String(), nil
}
