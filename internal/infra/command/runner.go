// Package command runs the external media tools (TTS engines, ffmpeg, ffprobe)
// used by the audio and video stages.
package command

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Runner executes a program and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs programs with os/exec.
type ExecRunner struct{}

// Run executes name with args. On failure the returned error carries the tail
// of the program's standard error.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	slog.Debug("external command finished",
		slog.String("command", name),
		slog.Duration("duration", time.Since(start)),
		slog.Bool("success", err == nil))
	if err != nil {
		return stdout.Bytes(), &Error{Name: name, Err: err, Stderr: tail(stderr.String(), 2000)}
	}
	return stdout.Bytes(), nil
}

// Error describes a failed external command.
type Error struct {
	Name   string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Name, e.Err, e.Stderr)
}

// Unwrap returns the underlying exec error.
func (e *Error) Unwrap() error {
	return e.Err
}

// LookPath reports whether name can be executed.
func LookPath(name string) error {
	_, err := exec.LookPath(name)
	return err
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
