package aggregator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Runner executes the external automation engine. It blocks until the
// engine exits; a non-zero exit is reported as an error implementing
// ExitCode() int.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs the engine as a child process with its output passed
// through to the given writers.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns an ExecRunner attached to the process stdio.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("%s not found: %w", name, err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	return cmd.Run()
}

type exitCoder interface {
	ExitCode() int
}

// exitCode extracts the engine's exit status, or -1 when it never ran.
func exitCode(err error) int {
	var ec exitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return -1
}
