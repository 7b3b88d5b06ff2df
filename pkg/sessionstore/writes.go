package sessionstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codeready-toolchain/aav3/pkg/aaverr"
)

// writeJSONAtomic marshals v as indented JSON and writes it to path via a
// temp-file-then-rename, so a reader never observes a partially written
// document (spec.md §4.8: artifacts are written atomically).
func writeJSONAtomic(phase, path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return aaverr.New(aaverr.KindFilesystemError, phase, "marshal "+filepath.Base(path), err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return aaverr.New(aaverr.KindFilesystemError, phase, "create temp file for "+filepath.Base(path), err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return aaverr.New(aaverr.KindFilesystemError, phase, "write "+filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return aaverr.New(aaverr.KindFilesystemError, phase, "close temp file for "+filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return aaverr.New(aaverr.KindFilesystemError, phase, "rename into "+filepath.Base(path), err)
	}
	return nil
}

func readJSON(phase, path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return aaverr.New(aaverr.KindFilesystemError, phase, "read "+filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return aaverr.New(aaverr.KindFilesystemError, phase, "parse "+filepath.Base(path), err)
	}
	return nil
}

// appendJSONLine appends one compact JSON line to path, creating it if
// absent. Used for conversation.jsonl (spec.md §4.8).
func appendJSONLine(phase, path string, line []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return aaverr.New(aaverr.KindFilesystemError, phase, "open "+filepath.Base(path), err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return aaverr.New(aaverr.KindFilesystemError, phase, "append to "+filepath.Base(path), err)
	}
	return nil
}

func nextHistoryPath(dir, prefix string, round int) string {
	return filepath.Join(dir, fmt.Sprintf("%s_round_%03d.json", prefix, round))
}
