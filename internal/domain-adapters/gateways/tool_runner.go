// Package gateways provides adapter implementations for external services and tools.
package gateways

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/shipcask/shipcask/internal/domain/interfaces"
)

// CommandRunner executes external tools. Gateways depend on this interface
// so tests can substitute a fake without the macOS toolchain installed.
type CommandRunner interface {
	Run(ctx context.Context, inv ToolInvocation) *ToolResult
}

// ToolInvocation describes a single external tool invocation. Arguments are
// passed as an argv vector; nothing goes through a shell.
type ToolInvocation struct {
	Tool        string
	Args        []string
	WorkingDir  string
	Env         map[string]string
	Timeout     time.Duration
	Description string
}

// ToolResult contains the outcome of a tool invocation.
type ToolResult struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	Error    error
}

// ToolError formats a failed result as an error, keeping the underlying
// cause in the chain and the stderr tail in the message.
func (r *ToolResult) ToolError(what string) error {
	stderr := strings.TrimSpace(r.Stderr)
	if stderr == "" {
		return fmt.Errorf("%s failed (exit %d): %w", what, r.ExitCode, r.Error)
	}
	return fmt.Errorf("%s failed (exit %d): %w\nStderr: %s", what, r.ExitCode, r.Error, stderr)
}

// ToolRunner runs external tools with per-invocation timeouts and captured
// output. When streaming is enabled, each tool's combined output is echoed
// live with a colored per-tool prefix.
type ToolRunner struct {
	defaultTimeout time.Duration
	stream         bool
	log            interfaces.Logger
}

// NewToolRunner creates a runner. With stream enabled, tool output is
// echoed to stdout as it is produced.
func NewToolRunner(log interfaces.Logger, stream bool) *ToolRunner {
	if log == nil {
		log = &interfaces.NoOpLogger{}
	}
	return &ToolRunner{
		defaultTimeout: 30 * time.Minute,
		stream:         stream,
		log:            log,
	}
}

// Run executes a single tool invocation.
func (t *ToolRunner) Run(ctx context.Context, inv ToolInvocation) *ToolResult {
	startTime := time.Now()
	result := &ToolResult{}

	timeout := inv.Timeout
	if timeout == 0 {
		timeout = t.defaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // G204: Tool and arguments come from release configuration
	cmd := exec.CommandContext(execCtx, inv.Tool, inv.Args...)

	if inv.WorkingDir != "" {
		cmd.Dir = inv.WorkingDir
	}

	env := os.Environ()
	for key, value := range inv.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	var outSink io.Writer = &stdout
	var errSink io.Writer = &stderr
	if t.stream {
		echo := NewPrefixWriter(inv.Tool, os.Stdout)
		outSink = io.MultiWriter(&stdout, echo)
		errSink = io.MultiWriter(&stderr, echo)
	}
	cmd.Stdout = outSink
	cmd.Stderr = errSink

	if inv.Description != "" {
		t.log.Debug("running tool",
			interfaces.F("tool", inv.Tool),
			interfaces.F("step", inv.Description))
	}

	err := cmd.Run()
	result.Duration = time.Since(startTime)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		result.Error = err
		var exitErr *exec.ExitError
		// A deadline kill surfaces as "signal: killed", so the context check
		// must come before the exit-code check.
		//nolint:gocritic // ifElseChain: checking different error types, not suitable for switch
		if execCtx.Err() == context.DeadlineExceeded {
			result.Error = fmt.Errorf("%s timed out after %v", inv.Tool, timeout)
			result.ExitCode = -1
		} else if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
		return result
	}

	result.Success = true
	result.ExitCode = 0
	return result
}
