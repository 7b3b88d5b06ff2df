// Package testadapters implements the TestAdapters (spec.md §4.6): a fixed
// set of functions that run objective checks against a workspace and
// return TestRecords. Adapters never raise to the caller — every internal
// failure, including a subprocess timeout, is folded into a record.
package testadapters

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/codeready-toolchain/aav3/pkg/session"
)

// maxExcerptLen bounds how much subprocess output is retained per
// TestRecord, so a chatty test runner doesn't bloat conversation.jsonl.
const maxExcerptLen = 4000

func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxExcerptLen {
		return s[:maxExcerptLen] + "...(truncated)"
	}
	return s
}

// runRecord runs name/args with cwd=workspaceDir under timeout and folds
// the outcome into a TestRecord. Paths in args must already be relative to
// workspaceDir (spec.md §4.6: absolute paths are forbidden here).
func runRecord(ctx context.Context, workspaceDir, testName, suite string, timeout time.Duration, name string, args ...string) session.TestRecord {
	start := time.Now()
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, name, args...)
	cmd.Dir = workspaceDir
	out, err := cmd.CombinedOutput()
	duration := time.Since(start).Milliseconds()

	rec := session.TestRecord{
		TestName:      testName,
		Suite:         suite,
		DurationMs:    duration,
		StdoutExcerpt: excerpt(string(out)),
	}

	switch {
	case errors.Is(cctx.Err(), context.DeadlineExceeded):
		rec.Result = session.TestFail
		rec.Reason = "timeout"
		rec.ExitCode = -1
	case err != nil:
		rec.Result = session.TestFail
		rec.ExitCode = exitCode(err)
	default:
		rec.Result = session.TestPass
		rec.ExitCode = 0
	}
	return rec
}

func skipRecord(testName, suite, reason string) session.TestRecord {
	return session.TestRecord{TestName: testName, Suite: suite, Result: session.TestSkip, Reason: reason}
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
