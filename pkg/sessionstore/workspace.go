package sessionstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codeready-toolchain/aav3/pkg/aaverr"
	"github.com/codeready-toolchain/aav3/pkg/session"
)

// resolveWorkspacePath validates that rel is a relative path with no ".."
// traversal and no absolute component, then returns its absolute location
// under the workspace directory (spec.md §8 "Workspace isolation").
func (s *Store) resolveWorkspacePath(rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", aaverr.New(aaverr.KindFilesystemError, "IMPLEMENT", fmt.Sprintf("absolute path not allowed: %q", rel), nil)
	}
	clean := filepath.Clean(rel)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", aaverr.New(aaverr.KindFilesystemError, "IMPLEMENT", fmt.Sprintf("path escapes workspace: %q", rel), nil)
	}
	return filepath.Join(s.WorkspaceDir(), clean), nil
}

// WriteWorkspaceFiles materializes each FileSpec under workspace/, rejecting
// (and writing nothing for) any path that fails resolveWorkspacePath. It
// returns the relative paths actually written, in order, for test adapters
// that need a file list (spec.md §4.6).
func (s *Store) WriteWorkspaceFiles(files []session.FileSpec) ([]string, error) {
	written := make([]string, 0, len(files))
	for _, f := range files {
		abs, err := s.resolveWorkspacePath(f.Path)
		if err != nil {
			return written, err
		}
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return written, aaverr.New(aaverr.KindFilesystemError, "IMPLEMENT", "create parent dir for "+f.Path, err)
		}
		if err := writeFileAtomic(abs, []byte(f.Content)); err != nil {
			return written, err
		}
		written = append(written, filepath.Clean(f.Path))
	}
	return written, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return aaverr.New(aaverr.KindFilesystemError, "IMPLEMENT", "create temp file for "+filepath.Base(path), err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return aaverr.New(aaverr.KindFilesystemError, "IMPLEMENT", "write "+filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return aaverr.New(aaverr.KindFilesystemError, "IMPLEMENT", "close temp file for "+filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return aaverr.New(aaverr.KindFilesystemError, "IMPLEMENT", "rename into "+filepath.Base(path), err)
	}
	return nil
}
