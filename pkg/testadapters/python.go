package testadapters

import (
	"context"
	"strings"
	"time"

	"github.com/codeready-toolchain/aav3/pkg/session"
)

const defaultPythonSyntaxTimeout = 30 * time.Second
const defaultUnitTestTimeout = 120 * time.Second

// PythonSyntax compiles every *.py in filesCreated without executing it
// (spec.md §4.6 adapter 1). One TestRecord per file.
func PythonSyntax(ctx context.Context, workspaceDir string, filesCreated []string, timeout time.Duration) []session.TestRecord {
	if timeout <= 0 {
		timeout = defaultPythonSyntaxTimeout
	}
	var records []session.TestRecord
	for _, rel := range filesCreated {
		if !strings.HasSuffix(rel, ".py") {
			continue
		}
		records = append(records, runRecord(ctx, workspaceDir, rel, "python_syntax", timeout, "python3", "-m", "py_compile", rel))
	}
	return records
}

// looksLikeTestFile matches common file-name conventions for
// Python test discovery (spec.md §4.6 adapter 2).
func looksLikeTestFile(rel string) bool {
	base := rel
	if i := strings.LastIndex(rel, "/"); i >= 0 {
		base = rel[i+1:]
	}
	return strings.HasPrefix(base, "test_") && strings.HasSuffix(base, ".py") ||
		strings.HasSuffix(base, "_test.py")
}

// PythonUnitTests runs the unittest discovery runner in workspaceDir if any
// test-looking file exists among filesCreated (spec.md §4.6 adapter 2). No
// record is produced when there is nothing to discover.
func PythonUnitTests(ctx context.Context, workspaceDir string, filesCreated []string, timeout time.Duration) []session.TestRecord {
	hasTests := false
	for _, rel := range filesCreated {
		if looksLikeTestFile(rel) {
			hasTests = true
			break
		}
	}
	if !hasTests {
		return nil
	}
	if timeout <= 0 {
		timeout = defaultUnitTestTimeout
	}
	rec := runRecord(ctx, workspaceDir, "unittest discover", "python_unit_tests", timeout, "python3", "-m", "unittest", "discover", "-v")
	return []session.TestRecord{rec}
}
