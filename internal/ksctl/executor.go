package ksctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// Result is the envelope returned by one ksctl invocation. Data holds the
// parsed JSON payload when stdout is valid JSON; Stdout always holds the
// raw output. Callers treat Data as authoritative and fall back to Stdout.
type Result struct {
	Data     any    `json:"data,omitempty"`
	Stdout   string `json:"stdout,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
	ExitCode int    `json:"exit_status"`
}

// Executor runs a composed ksctl argument list and returns the result
// envelope. A non-nil error means the invocation failed; callers never
// inspect ExitCode directly.
type Executor interface {
	Execute(ctx context.Context, args []string) (Result, error)
}

// MetricsRecorder receives subprocess telemetry. A nil recorder is valid
// and records nothing.
type MetricsRecorder interface {
	RecordKsctlInvocation(exitCode int, duration time.Duration)
	RecordKsctlOverride()
}

// CLI is the subprocess-backed Executor. One synchronous invocation per
// call; no retries, no timeout beyond the configured command timeout.
type CLI struct {
	settings *Settings
	logger   *zap.Logger
	metrics  MetricsRecorder
}

// NewCLI creates a CLI executor bound to the given connection settings.
func NewCLI(settings *Settings, logger *zap.Logger, metrics MetricsRecorder) *CLI {
	return &CLI{settings: settings, logger: logger, metrics: metrics}
}

// Execute runs ksctl with the connection flags from settings followed by
// the given arguments.
func (c *CLI) Execute(ctx context.Context, args []string) (Result, error) {
	if c.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.settings.Timeout)
		defer cancel()
	}

	argv := append(c.settings.connectionArgs(), args...)
	cmd := exec.CommandContext(ctx, c.settings.Binary, argv...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	res.Data = parseJSON(res.Stdout)

	if c.metrics != nil {
		c.metrics.RecordKsctlInvocation(res.ExitCode, duration)
	}

	c.logger.Debug("ksctl invocation",
		zap.Strings("args", args),
		zap.Int("exit_status", res.ExitCode),
		zap.Duration("duration", duration),
		zap.Error(err),
	)

	if err != nil {
		msg := res.Stderr
		if msg == "" {
			msg = err.Error()
		}
		return res, fmt.Errorf("ksctl: %s", msg)
	}
	return res, nil
}

// HealthCheck verifies the configured ksctl binary is locatable.
func (c *CLI) HealthCheck(_ context.Context) error {
	_, err := exec.LookPath(c.settings.Binary)
	return err
}

// Payload returns the content of a result: the parsed Data when present,
// otherwise the raw stdout. Structured Data is returned as-is so it
// serializes back to JSON for the caller.
func Payload(res Result) any {
	if res.Data != nil {
		return res.Data
	}
	return res.Stdout
}

// parseJSON attempts to decode s as a JSON object or array. Plain-text
// output returns nil.
func parseJSON(s string) any {
	trimmed := bytes.TrimSpace([]byte(s))
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return nil
	}
	return v
}
