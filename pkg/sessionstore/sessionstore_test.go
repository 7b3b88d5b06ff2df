package sessionstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/aav3/pkg/aaverr"
	"github.com/codeready-toolchain/aav3/pkg/session"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), "abc123")
	require.NoError(t, err)
	return s
}

func TestOpen_CreatesDirectoryTree(t *testing.T) {
	s := newTestStore(t)
	for _, dir := range []string{s.Root(), s.WorkspaceDir(), s.implementationHistoryDir(), s.testHistoryDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestWritePlan_PersistsAndIsReadable(t *testing.T) {
	s := newTestStore(t)
	plan := session.Plan{Strategy: "write hello.py", Steps: []string{"create file"}}
	require.NoError(t, s.WritePlan(plan))

	data, err := os.ReadFile(filepath.Join(s.Root(), "plan.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "write hello.py")
}

func TestWriteImplementation_WritesLatestAndHistory(t *testing.T) {
	s := newTestStore(t)
	impl := session.Implementation{Status: "complete"}
	require.NoError(t, s.WriteImplementation(0, impl))

	_, err := os.Stat(filepath.Join(s.Root(), "implementation.json"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(s.implementationHistoryDir(), "implementation_round_000.json"))
	require.NoError(t, err)
}

func TestWriteTestResult_WritesLatestAndHistory(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.WriteTestResult(2, session.TestResult{Verdict: session.VerdictPass}))

	_, err := os.Stat(filepath.Join(s.Root(), "test_result.json"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(s.testHistoryDir(), "test_result_round_002.json"))
	require.NoError(t, err)
}

func TestAppendConversation_AppendsLines(t *testing.T) {
	s := newTestStore(t)
	msg1 := session.Message{FromAgent: session.AgentPlanner, Role: session.RolePlan, Content: "a"}
	msg2 := session.Message{FromAgent: session.AgentCoder, Role: session.RoleImplementation, Content: "b"}
	require.NoError(t, s.AppendConversation(msg1))
	require.NoError(t, s.AppendConversation(msg2))

	data, err := os.ReadFile(filepath.Join(s.Root(), "conversation.jsonl"))
	require.NoError(t, err)
	lines := splitLines(string(data))
	require.Len(t, lines, 2)
}

func TestWriteVerdict_RoundTrips(t *testing.T) {
	s := newTestStore(t)
	v := Verdict{SessionID: "abc123", Status: "done", Approved: true, ApprovalRate: 1.0}
	require.NoError(t, s.WriteVerdict(v))

	got, err := s.ReadVerdict()
	require.NoError(t, err)
	assert.Equal(t, v.SessionID, got.SessionID)
	assert.True(t, got.Approved)
}

func TestWriteWorkspaceFiles_WritesRelativePaths(t *testing.T) {
	s := newTestStore(t)
	written, err := s.WriteWorkspaceFiles([]session.FileSpec{
		{Path: "hello.py", Content: "print('hi')\n"},
		{Path: "pkg/util.py", Content: "x = 1\n"},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"hello.py", "pkg/util.py"}, written)

	data, err := os.ReadFile(filepath.Join(s.WorkspaceDir(), "hello.py"))
	require.NoError(t, err)
	assert.Equal(t, "print('hi')\n", string(data))
}

func TestWriteWorkspaceFiles_RejectsAbsolutePath(t *testing.T) {
	s := newTestStore(t)
	_, err := s.WriteWorkspaceFiles([]session.FileSpec{{Path: "/etc/passwd", Content: "x"}})
	require.Error(t, err)
	kind, ok := aaverr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, aaverr.KindFilesystemError, kind)
}

func TestWriteWorkspaceFiles_RejectsParentTraversal(t *testing.T) {
	s := newTestStore(t)
	_, err := s.WriteWorkspaceFiles([]session.FileSpec{{Path: "../escape.py", Content: "x"}})
	require.Error(t, err)
}

func TestWriteWorkspaceFiles_StopsOnFirstInvalidPathAndWritesNothingAfter(t *testing.T) {
	s := newTestStore(t)
	written, err := s.WriteWorkspaceFiles([]session.FileSpec{
		{Path: "good.py", Content: "ok"},
		{Path: "../escape.py", Content: "bad"},
		{Path: "never.py", Content: "unreached"},
	})
	require.Error(t, err)
	assert.Equal(t, []string{"good.py"}, written)
	_, statErr := os.Stat(filepath.Join(s.WorkspaceDir(), "never.py"))
	assert.Error(t, statErr)
}

func splitLines(s string) []string {
	var lines []string
	cur := ""
	for _, r := range s {
		if r == '\n' {
			if cur != "" {
				lines = append(lines, cur)
			}
			cur = ""
			continue
		}
		cur += string(r)
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}
