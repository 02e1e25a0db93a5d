package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Command describes one external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string // working directory; empty inherits the caller's
}

// String renders the command line, quoting arguments that contain spaces.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quote(c.Name))
	for _, a := range c.Args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\"") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

// Runner runs an external command to completion.
type Runner interface {
	// Run blocks until the process exits. On exit code 0 it returns the
	// captured stdout; otherwise it returns an *ExternalToolError.
	Run(ctx context.Context, cmd Command) (string, error)
}

// ExternalToolError reports a process that could not be started or exited
// non-zero. ExitCode is -1 when the process never ran to completion.
type ExternalToolError struct {
	Command  string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *ExternalToolError) Error() string {
	line := Command{Name: e.Command, Args: e.Args}.String()

	var b strings.Builder
	if e.ExitCode < 0 && e.Err != nil {
		fmt.Fprintf(&b, "command `%s` could not be run: %v", line, e.Err)
	} else {
		fmt.Fprintf(&b, "command `%s` failed with exit code %d", line, e.ExitCode)
	}
	if out := strings.TrimSpace(e.Stdout); out != "" {
		b.WriteString("\nOutput: " + out)
	}
	if errOut := strings.TrimSpace(e.Stderr); errOut != "" {
		b.WriteString("\nError: " + errOut)
	}
	return b.String()
}

func (e *ExternalToolError) Unwrap() error {
	return e.Err
}

// ExecRunner is the os/exec implementation of Runner.
type ExecRunner struct {
	// Progress receives the stdout of successful commands; defaults to os.Stdout.
	Progress io.Writer
	// Log, when set, receives each command line at debug level.
	Log *zerolog.Logger
}

// NewExecRunner returns an ExecRunner forwarding progress output to w.
func NewExecRunner(w io.Writer) *ExecRunner {
	return &ExecRunner{Progress: w}
}

// Run starts the command with stdout and stderr captured and waits for it.
// No timeout is applied; ctx only serves to interrupt the process.
func (r *ExecRunner) Run(ctx context.Context, c Command) (string, error) {
	if r.Log != nil {
		r.Log.Debug().Str("dir", c.Dir).Msgf("running %s", c)
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		toolErr := &ExternalToolError{
			Command:  c.Name,
			Args:     append([]string(nil), c.Args...),
			ExitCode: -1,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			toolErr.ExitCode = exitErr.ExitCode()
		}
		return stdout.String(), toolErr
	}

	progress := r.Progress
	if progress == nil {
		progress = os.Stdout
	}
	// Progress output is best-effort.
	_, _ = io.WriteString(progress, stdout.String())

	return stdout.String(), nil
}
