package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Output is what a finished process produced.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner runs one process synchronously. A non-zero exit code is not an
// error; the error is reserved for processes that could not be run.
type Runner interface {
	Run(ctx context.Context, dir string, argv, env []string) (Output, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, dir string, argv, env []string) (Output, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, dir string, argv, env []string) (Output, error) {
	return f(ctx, dir, argv, env)
}

// ExecRunner runs processes with os/exec. env is appended to the current
// process environment.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, dir string, argv, env []string) (Output, error) {
	if len(argv) == 0 {
		return Output{ExitCode: -1}, fmt.Errorf("empty command")
	}
	var stdout, stderr bytes.Buffer
	c := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec // argv comes from the manifest and the command line
	c.Dir = dir
	c.Env = append(os.Environ(), env...)
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		out.ExitCode = exitErr.ExitCode()
	default:
		out.ExitCode = -1
		return out, fmt.Errorf("running %s: %w", argv[0], err)
	}
	return out, nil
}
