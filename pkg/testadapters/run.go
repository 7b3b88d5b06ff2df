package testadapters

import (
	"context"
	"time"

	"github.com/codeready-toolchain/aav3/pkg/envprobe"
	"github.com/codeready-toolchain/aav3/pkg/session"
)

// Options bundles the per-round, per-session configuration every adapter
// needs (spec.md §4.9 timeouts plus the SPEC_FULL security-severity
// supplement).
type Options struct {
	SessionID            string
	PythonSyntaxTimeout  time.Duration
	UnitTestTimeout      time.Duration
	DockerBuildTimeout   time.Duration
	SecurityFailSeverity string
}

// RunAll invokes every adapter against the given workspace and returns the
// flat list of TestRecords the Orchestrator aggregates into a TestResult
// (spec.md §4.6, §4.7). Adapters are selected by file type and by
// environment availability; missing prerequisites yield "skip" records,
// never failures.
func RunAll(ctx context.Context, workspaceDir string, filesCreated []string, caps envprobe.Capabilities, opts Options) []session.TestRecord {
	var records []session.TestRecord
	records = append(records, PythonSyntax(ctx, workspaceDir, filesCreated, opts.PythonSyntaxTimeout)...)
	records = append(records, PythonUnitTests(ctx, workspaceDir, filesCreated, opts.UnitTestTimeout)...)
	records = append(records, RustCheck(ctx, workspaceDir, caps.Languages["rust"].Available)...)
	records = append(records, DockerBuild(ctx, workspaceDir, opts.SessionID, filesCreated, caps.Docker.Available, opts.DockerBuildTimeout)...)
	records = append(records, GPUSmoke(ctx, workspaceDir, caps)...)
	records = append(records, SecurityScan(ctx, workspaceDir, caps, opts.SecurityFailSeverity)...)
	return records
}
