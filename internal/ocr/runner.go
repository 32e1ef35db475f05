package ocr

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"time"
)

// maxStderrLog caps how much captured stderr lands in a log record.
const maxStderrLog = 8 << 10

// Runner abstracts the external OCR binaries so tests can stub them out.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// execRunner shells out through os/exec, capturing both streams and logging
// every invocation with its duration.
type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()

	if err != nil {
		r.logger.Error("ocr.exec.fail",
			"cmd", name,
			"args", args,
			"elapsed_ms", time.Since(start).Milliseconds(),
			"error", err,
			"stderr", clip(errb.String(), maxStderrLog),
		)
		return out.Bytes(), errb.Bytes(), err
	}

	r.logger.Debug("ocr.exec.ok",
		"cmd", name,
		"args", args,
		"elapsed_ms", time.Since(start).Milliseconds(),
		"stdout_bytes", out.Len(),
		"stderr_bytes", errb.Len(),
	)
	return out.Bytes(), errb.Bytes(), nil
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
