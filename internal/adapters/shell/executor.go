// Package shell runs the external toolchain as subprocesses.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"

	"go.trai.ch/wasmbed/internal/core/domain"
	"go.trai.ch/wasmbed/internal/core/ports"
	"go.trai.ch/zerr"
)

// Executor implements ports.Executor using os/exec.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Execute runs the command in cmd.Dir and waits for it to complete.
// Output is captured and streamed to the logger line by line: stdout at info
// level, stderr at warn level.
func (e *Executor) Execute(ctx context.Context, cmd domain.Command) (*domain.BuildResult, error) {
	if len(cmd.Args) == 0 {
		return nil, zerr.Wrap(domain.ErrToolchainInvocation, "empty command")
	}

	name := cmd.Args[0]
	c := exec.CommandContext(ctx, name, cmd.Args[1:]...) //nolint:gosec // toolchain command from configuration
	c.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer
	stdoutLog := &logWriter{logger: e.logger, level: levelInfo}
	stderrLog := &logWriter{logger: e.logger, level: levelWarn}
	c.Stdout = io.MultiWriter(&stdout, stdoutLog)
	c.Stderr = io.MultiWriter(&stderr, stderrLog)

	e.logger.Debug("running " + cmd.String())
	err := c.Run()

	// Flush partial lines
	_ = stdoutLog.Close()
	_ = stderrLog.Close()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &domain.BuildResult{
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.Bytes(),
				Stderr:   stderr.Bytes(),
			}, nil
		}
		return nil, errors.Join(domain.ErrToolchainInvocation,
			zerr.With(zerr.With(zerr.Wrap(err, "failed to start command"), "command", name), "dir", cmd.Dir))
	}

	return &domain.BuildResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, nil
}

type logLevel uint8

const (
	levelInfo logLevel = iota
	levelWarn
)

type logWriter struct {
	logger ports.Logger
	level  logLevel
	buf    []byte
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	// Scan for newlines
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}

		w.logLine(w.buf[:i])

		// Advance buffer
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	// Progress output rewrites lines with \r; keep the last state.
	msg := string(line)
	msg = strings.TrimSuffix(msg, "\r")
	if i := strings.LastIndexByte(msg, '\r'); i >= 0 {
		msg = msg[i+1:]
	}
	if strings.TrimSpace(msg) == "" {
		return
	}

	if w.level == levelInfo {
		w.logger.Info(msg)
	} else {
		w.logger.Warn(msg)
	}
}
