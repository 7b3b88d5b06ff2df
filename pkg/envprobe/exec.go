package envprobe

import (
	"context"
	"net"
	"os/exec"
	"strings"
	"time"
)

// probeTimeout bounds every individual detection command (spec.md §4.5:
// "≤ 5s per probe").
const probeTimeout = 5 * time.Second

// available reports whether name is resolvable on PATH. Never blocks.
func available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// output runs name with args under a bounded timeout and returns combined
// stdout+stderr, trimmed. A timeout, missing binary, or non-zero exit all
// just yield ok=false — probe failure never aborts the session (spec.md
// §4.5).
func output(parent context.Context, name string, args ...string) (text string, ok bool) {
	ctx, cancel := context.WithTimeout(parent, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	raw, err := cmd.CombinedOutput()
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(raw)), true
}

// reachable reports whether a TCP connection to addr succeeds within the
// probe timeout. Used for the network capability block; a failure here is
// recorded as "not available", never treated as fatal.
func reachable(addr string) bool {
	conn, err := net.DialTimeout("tcp", addr, probeTimeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
