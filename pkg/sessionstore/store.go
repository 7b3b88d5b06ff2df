// Package sessionstore implements the on-disk artifact layout for one
// session (spec.md §4.8): aav3_<id>/{environment,plan,research,
// implementation,review,test_result,consensus,verdict}.json,
// implementation_history/, test_history/, conversation.jsonl, workspace/.
//
// Every write goes through Store so the Orchestrator never has to reason
// about partial writes: JSON documents are written to a temp file and
// renamed into place, and round-history entries are append-only.
package sessionstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/codeready-toolchain/aav3/pkg/aaverr"
)

// Store owns the artifact directory for one session and exposes typed
// accessors for each document spec.md §4.8 names. It does not itself hold
// any in-memory state; every call reads or writes the filesystem directly,
// mirroring a thin client wrapping a single connection handle.
type Store struct {
	root string // aav3_<id>/
}

// Open creates (if needed) the session's artifact directory tree rooted at
// artifactsRoot/aav3_<id>/ and returns a Store bound to it.
func Open(artifactsRoot, sessionID string) (*Store, error) {
	root := filepath.Join(artifactsRoot, "aav3_"+sessionID)
	s := &Store{root: root}
	for _, dir := range []string{s.root, s.WorkspaceDir(), s.implementationHistoryDir(), s.testHistoryDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, aaverr.New(aaverr.KindFilesystemError, "INIT", fmt.Sprintf("create directory %s", dir), err)
		}
	}
	return s, nil
}

// Root returns the session's artifact root directory (aav3_<id>/).
func (s *Store) Root() string { return s.root }

// WorkspaceDir returns the directory the Coder's files are materialized
// into (spec.md §4.8).
func (s *Store) WorkspaceDir() string { return filepath.Join(s.root, "workspace") }

func (s *Store) implementationHistoryDir() string { return filepath.Join(s.root, "implementation_history") }
func (s *Store) testHistoryDir() string            { return filepath.Join(s.root, "test_history") }

func (s *Store) path(name string) string { return filepath.Join(s.root, name) }
