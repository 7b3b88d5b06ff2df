package orchestrator

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/aav3/pkg/aaverr"
	"github.com/codeready-toolchain/aav3/pkg/envprobe"
	"github.com/codeready-toolchain/aav3/pkg/llmtransport"
	"github.com/codeready-toolchain/aav3/pkg/session"
	"github.com/codeready-toolchain/aav3/pkg/sessionstore"
)

func aaverrLLMAuth() error {
	return aaverr.New(aaverr.KindLLMAuth, "PLAN", "missing credentials", nil)
}

func aaverrLLMTimeout() error {
	return aaverr.New(aaverr.KindLLMTimeout, "PLAN", "deadline exceeded", nil)
}

func requirePython3(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available on this host")
	}
}

const planJSON = `{"strategy": "implement greet() in hello.py with a unit test", "steps": ["write hello.py", "write test_hello.py"], "unknowns": []}`
const researchJSON = `{"findings": ["string concatenation is sufficient"], "recommendation": "use a single plain function", "confidence": "high"}`
const reviewApprovedJSON = `{"verdict": "approved", "strengths": ["simple, testable"], "issues": [], "suggestions": []}`
const testerFocusJSON = `{"focus_areas": ["greet with empty string"], "risks": []}`

const goodHelloPy = "def greet(name):\n    return 'Hello, ' + name\n"
const testHelloPy = "import unittest\nfrom hello import greet\n\n\nclass TestGreet(unittest.TestCase):\n    def test_greet(self):\n        self.assertEqual(greet('World'), 'Hello, World')\n\n\nif __name__ == '__main__':\n    unittest.main()\n"
const brokenHelloPy = "def greet(name)\n    return 'Hello, ' + name\n"

func codeJSON(helloPy string, withTest bool) string {
	files := `{"path": "hello.py", "content": ` + quote(helloPy) + `}`
	if withTest {
		files += `, {"path": "test_hello.py", "content": ` + quote(testHelloPy) + `}`
	}
	return `{"files_to_create": [` + files + `], "key_decisions": ["plain function, no classes needed"], "status": "complete"}`
}

func quote(s string) string {
	out := "\""
	for _, r := range s {
		switch r {
		case '\n':
			out += `\n`
		case '"':
			out += `\"`
		default:
			out += string(r)
		}
	}
	return out + "\""
}

func newTestOrchestrator() *Orchestrator {
	return New(nil, envprobe.NewProber(), 10*time.Second, 20*time.Second, 30*time.Second, "high")
}

func newTestSession(t *testing.T, taskText string, threshold float64, maxRounds int) (*session.Session, *sessionstore.Store) {
	t.Helper()
	sess, err := session.New(t.TempDir(), "", taskText, threshold, maxRounds)
	require.NoError(t, err)
	store, err := sessionstore.Open(t.TempDir(), sess.ID)
	require.NoError(t, err)
	// Session.New and sessionstore.Open both derive aav3_<id>/ under their
	// own root; tests give the Store its own tempdir so workspace writes and
	// Session.WorkspaceDir (unused directly by the Orchestrator, which always
	// goes through Store) don't need to coincide.
	return sess, store
}

func TestRun_TrivialSuccess(t *testing.T) {
	requirePython3(t)
	sess, store := newTestSession(t, "Create a Python module hello.py whose greet(name) returns 'Hello, ' + name. Include a unit test.", 0.67, 5)

	client := llmtransport.NewFakeLLMClient(
		planJSON,
		researchJSON,
		codeJSON(goodHelloPy, true),
		testerFocusJSON,
		reviewApprovedJSON,
	)
	o := newTestOrchestrator()
	o.LLMClient = client

	verdict := o.Run(context.Background(), sess, store)

	assert.Equal(t, "done", verdict.Status)
	assert.Equal(t, session.VerdictPass, verdict.TestResult.Verdict)
	assert.Equal(t, 0, verdict.RoundsUsed)
	assert.Equal(t, 1.0, verdict.ApprovalRate)
	assert.True(t, verdict.Approved)
	assert.Empty(t, verdict.Errors)
}

func TestRun_SyntaxErrorRepaired(t *testing.T) {
	requirePython3(t)
	sess, store := newTestSession(t, "Create a Python module hello.py whose greet(name) returns 'Hello, ' + name. Include a unit test.", 0.67, 5)

	client := llmtransport.NewFakeLLMClient(
		planJSON,
		researchJSON,
		codeJSON(brokenHelloPy, true),
		testerFocusJSON,
		codeJSON(goodHelloPy, true),
		testerFocusJSON,
		reviewApprovedJSON,
	)
	o := newTestOrchestrator()
	o.LLMClient = client

	verdict := o.Run(context.Background(), sess, store)

	assert.Equal(t, "done", verdict.Status)
	assert.Equal(t, 1, verdict.RoundsUsed)
	assert.Equal(t, session.VerdictPass, verdict.TestResult.Verdict)
	assert.True(t, verdict.Approved)
}

func TestRun_MaxRoundsExceeded(t *testing.T) {
	requirePython3(t)
	sess, store := newTestSession(t, "Create a Python module hello.py whose greet(name) returns 'Hello, ' + name.", 0.67, 2)

	client := llmtransport.NewFakeLLMClient(
		planJSON,
		researchJSON,
		codeJSON(brokenHelloPy, false),
		testerFocusJSON,
		codeJSON(brokenHelloPy, false),
		testerFocusJSON,
		codeJSON(brokenHelloPy, false),
		testerFocusJSON,
		reviewApprovedJSON,
	)
	o := newTestOrchestrator()
	o.LLMClient = client

	verdict := o.Run(context.Background(), sess, store)

	assert.Equal(t, "done", verdict.Status)
	assert.Equal(t, 2, verdict.RoundsUsed)
	assert.Equal(t, session.VerdictNeedsFixes, verdict.TestResult.Verdict)
	assert.False(t, verdict.Approved)
}

func TestRun_LLMAuthAbortsBeforeRetry(t *testing.T) {
	client := llmtransport.NewScriptedLLMClient(
		llmtransport.FakeResponse{Err: aaverrLLMAuth()},
	)
	sess, store := newTestSession(t, "irrelevant", 0.67, 5)
	o := newTestOrchestrator()
	o.LLMClient = client

	verdict := o.Run(context.Background(), sess, store)

	assert.Equal(t, "error", verdict.Status)
	require.Len(t, verdict.Errors, 1)
	assert.Equal(t, "llm_auth", verdict.Errors[0].Kind)
	assert.Len(t, client.Calls(), 1, "LLMAuth must not be retried")
}

func TestRun_LLMTimeoutRetriesOnceThenErrors(t *testing.T) {
	client := llmtransport.NewScriptedLLMClient(
		llmtransport.FakeResponse{Err: aaverrLLMTimeout()},
		llmtransport.FakeResponse{Err: aaverrLLMTimeout()},
	)
	sess, store := newTestSession(t, "irrelevant", 0.67, 5)
	o := newTestOrchestrator()
	o.LLMClient = client

	verdict := o.Run(context.Background(), sess, store)

	assert.Equal(t, "error", verdict.Status)
	assert.Len(t, client.Calls(), 2, "LLMTimeout gets exactly one retry")
}

func TestRun_WritesVerdictJSON(t *testing.T) {
	requirePython3(t)
	sess, store := newTestSession(t, "Create a Python module hello.py whose greet(name) returns 'Hello, ' + name. Include a unit test.", 0.67, 5)

	client := llmtransport.NewFakeLLMClient(
		planJSON,
		researchJSON,
		codeJSON(goodHelloPy, true),
		testerFocusJSON,
		reviewApprovedJSON,
	)
	o := newTestOrchestrator()
	o.LLMClient = client

	verdict := o.Run(context.Background(), sess, store)
	require.NoError(t, store.WriteVerdict(verdict))

	got, err := store.ReadVerdict()
	require.NoError(t, err)
	assert.Equal(t, verdict.SessionID, got.SessionID)
	assert.Equal(t, verdict.Status, got.Status)
}
