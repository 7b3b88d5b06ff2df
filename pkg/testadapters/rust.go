package testadapters

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/codeready-toolchain/aav3/pkg/session"
)

// rustCheckTimeout is fixed per spec.md §4.6 adapter 3 (not configurable).
const rustCheckTimeout = 300 * time.Second

// RustCheck runs "cargo check" if Cargo.toml is present in the workspace
// root and Rust is available (spec.md §4.6 adapter 3).
func RustCheck(ctx context.Context, workspaceDir string, rustAvailable bool) []session.TestRecord {
	if _, err := os.Stat(filepath.Join(workspaceDir, "Cargo.toml")); err != nil {
		return nil
	}
	if !rustAvailable {
		return []session.TestRecord{skipRecord("cargo check", "rust_check", "rust toolchain not available")}
	}
	return []session.TestRecord{runRecord(ctx, workspaceDir, "cargo check", "rust_check", rustCheckTimeout, "cargo", "check")}
}
