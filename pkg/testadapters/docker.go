package testadapters

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codeready-toolchain/aav3/pkg/session"
)

const defaultDockerBuildTimeout = 600 * time.Second

// DockerBuild builds each *Dockerfile* in filesCreated, tagged
// "aav3-session-<id>-<index>" (spec.md §4.6 adapter 4). If Docker is
// unavailable, every matching Dockerfile yields a skip record, never a
// build attempt.
func DockerBuild(ctx context.Context, workspaceDir, sessionID string, filesCreated []string, dockerAvailable bool, timeout time.Duration) []session.TestRecord {
	if timeout <= 0 {
		timeout = defaultDockerBuildTimeout
	}

	var records []session.TestRecord
	index := 0
	for _, rel := range filesCreated {
		if !strings.Contains(rel, "Dockerfile") {
			continue
		}
		testName := fmt.Sprintf("docker build %s", rel)
		if !dockerAvailable {
			records = append(records, skipRecord(testName, "docker", "docker not available"))
			index++
			continue
		}
		tag := fmt.Sprintf("aav3-session-%s-%d", sessionID, index)
		records = append(records, runRecord(ctx, workspaceDir, testName, "docker", timeout,
			"docker", "build", "-f", rel, "-t", tag, "."))
		index++
	}
	return records
}
