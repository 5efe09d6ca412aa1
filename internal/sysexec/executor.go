// Package sysexec runs external commands with timeouts and logging.
// Several syskit commands are thin wrappers over system utilities
// (xdotool, apt-get, dnf); they all shell out through this package.
package sysexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"syskit/internal/logging"
)

// DefaultTimeout bounds commands that do not specify their own.
const DefaultTimeout = 30 * time.Second

// ErrNotFound reports that the binary is not on PATH.
var ErrNotFound = errors.New("binary not found")

// Command describes one external invocation.
type Command struct {
	Binary  string
	Args    []string
	Dir     string
	Env     []string // nil means inherit
	Timeout time.Duration
}

// Result captures the outcome of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner executes commands. The zero value is usable.
type Runner struct {
	// DryRun logs commands instead of executing them.
	DryRun bool
}

// Available reports whether the binary can be found on PATH.
func Available(binary string) bool {
	_, err := exec.LookPath(binary)
	return err == nil
}

// Run executes the command and returns its result. A non-zero exit status is
// returned as an error alongside the captured output.
func (r *Runner) Run(ctx context.Context, cmd Command) (*Result, error) {
	log := logging.Get(logging.CategoryExec)

	if _, err := exec.LookPath(cmd.Binary); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, cmd.Binary)
	}

	if r.DryRun {
		log.Infof("dry-run: %s %s", cmd.Binary, strings.Join(cmd.Args, " "))
		return &Result{}, nil
	}

	timeout := cmd.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...)
	c.Dir = cmd.Dir
	if cmd.Env != nil {
		c.Env = cmd.Env
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	log.Debugf("exec: %s %s", cmd.Binary, strings.Join(cmd.Args, " "))
	start := time.Now()
	err := c.Run()
	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
		}
		if ctx.Err() == context.DeadlineExceeded {
			return res, fmt.Errorf("%s timed out after %v", cmd.Binary, timeout)
		}
		return res, fmt.Errorf("%s failed (exit %d): %s", cmd.Binary, res.ExitCode,
			strings.TrimSpace(res.Stderr))
	}

	log.Debugf("exec: %s finished in %v", cmd.Binary, res.Duration)
	return res, nil
}
