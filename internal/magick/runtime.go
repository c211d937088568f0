// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package magick implements ImageMagick binary detection and execution.
// ImageMagick 7 ships a single "magick" binary; ImageMagick 6 installs the
// same functionality as "convert". Both accept the same merge arguments.
package magick

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	binMagick  = "magick"
	binConvert = "convert"
)

// maxStderrTail bounds the diagnostic text carried in an ExitError.
const maxStderrTail = 240

// Runtime provides ImageMagick operations: checking availability and merging
// images into a single output document.
type Runtime interface {
	// Name returns the binary name ("magick", "convert", or a configured path).
	Name() string

	// Available reports whether the binary exists on PATH and answers -version.
	Available(ctx context.Context) bool

	// Merge writes inputs, in order, as the pages of output. The binary's
	// diagnostic stream is captured rather than shown. A non-zero exit is
	// returned as an *ExitError.
	Merge(ctx context.Context, inputs []string, output string) error
}

// ExitError reports an ImageMagick process that did not exit cleanly.
type ExitError struct {
	Bin string
	// Code is the process exit code, or -1 when the process did not start
	// or was killed by a signal.
	Code int
	// Stderr is the last line of the captured diagnostic stream.
	Stderr string
	Err    error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Bin, e.Code)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ExitError) Unwrap() error { return e.Err }

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(ctx context.Context, name string, args ...string) error
	RunCaptured(ctx context.Context, name string, args []string, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

func (o *osExecutor) RunCaptured(ctx context.Context, name string, args []string, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = stderr
	return cmd.Run()
}

// runtime implements Runtime for one ImageMagick binary. ImageMagick 6 and 7
// differ only in binary name.
type runtime struct {
	bin  string
	exec executor
}

func (r *runtime) Name() string { return r.bin }

func (r *runtime) Available(ctx context.Context) bool {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return false
	}
	return r.exec.RunSilent(ctx, r.bin, "-version") == nil
}

func (r *runtime) Merge(ctx context.Context, inputs []string, output string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("merging into %s: no input images", output)
	}
	args := make([]string, 0, len(inputs)+1)
	args = append(args, inputs...)
	args = append(args, output)

	var stderr bytes.Buffer
	err := r.exec.RunCaptured(ctx, r.bin, args, &stderr)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("running %s: %w", r.bin, ctxErr)
	}

	code := -1
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		code = coder.ExitCode()
	}
	return &ExitError{Bin: r.bin, Code: code, Stderr: lastLine(stderr.String()), Err: err}
}

// lastLine returns the final non-blank line of s, truncated to maxStderrTail.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if len(last) > maxStderrTail {
		last = last[:maxStderrTail-3] + "..."
	}
	return last
}

func newRuntime(bin string, exec executor) *runtime {
	return &runtime{bin: bin, exec: exec}
}

var defaultExec = &osExecutor{}

// Detect returns a Runtime for bin when it is non-empty. Otherwise it tries
// "magick" first and falls back to "convert". It returns an error if the
// chosen binary is not operational.
func Detect(ctx context.Context, bin string) (Runtime, error) {
	return detect(ctx, bin, defaultExec)
}

func detect(ctx context.Context, bin string, exec executor) (Runtime, error) {
	if bin != "" {
		rt := newRuntime(bin, exec)
		if !rt.Available(ctx) {
			return nil, fmt.Errorf("configured ImageMagick binary %s not found or not operational", filepath.Base(bin))
		}
		return rt, nil
	}

	for _, name := range []string{binMagick, binConvert} {
		rt := newRuntime(name, exec)
		if rt.Available(ctx) {
			return rt, nil
		}
	}

	return nil, fmt.Errorf(
		"no ImageMagick available: neither %s nor %s found or operational",
		binMagick, binConvert,
	)
}
