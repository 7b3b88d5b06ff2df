package agentroles

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/aav3/pkg/aaverr"
	"github.com/codeready-toolchain/aav3/pkg/llmtransport"
	"github.com/codeready-toolchain/aav3/pkg/session"
)

func TestPlan_HappyPath(t *testing.T) {
	client := llmtransport.NewFakeLLMClient(`Here is my plan:
{"strategy":"write a parser","steps":["read spec","write tests","implement"],"unknowns":["target grammar version"]}
Hope that helps.`)

	plan, err := Plan(context.Background(), client, Input{TaskText: "build a parser"})
	require.NoError(t, err)
	assert.Equal(t, "write a parser", plan.Strategy)
	assert.Equal(t, []string{"read spec", "write tests", "implement"}, plan.Steps)
	assert.Equal(t, []string{"target grammar version"}, plan.Unknowns)
}

func TestPlan_RetriesOnceOnMalformedOutput(t *testing.T) {
	client := llmtransport.NewFakeLLMClient(
		"sure, working on it now",
		`{"strategy":"s","steps":["a"],"unknowns":[]}`,
	)

	plan, err := Plan(context.Background(), client, Input{TaskText: "x"})
	require.NoError(t, err)
	assert.Equal(t, "s", plan.Strategy)
	assert.Len(t, client.Calls(), 2)
}

func TestPlan_SecondMalformedOutputFails(t *testing.T) {
	client := llmtransport.NewFakeLLMClient("no json here", "still no json")

	_, err := Plan(context.Background(), client, Input{TaskText: "x"})
	require.Error(t, err)
	assert.True(t, aaverr.Is(err, aaverr.KindMalformedAgentOutput))
	assert.Len(t, client.Calls(), 2)
}

func TestPlan_MissingStrategyFieldTriggersRetry(t *testing.T) {
	client := llmtransport.NewFakeLLMClient(
		`{"steps":["a"],"unknowns":[]}`,
		`{"strategy":"fixed","steps":["a"],"unknowns":[]}`,
	)

	plan, err := Plan(context.Background(), client, Input{TaskText: "x"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", plan.Strategy)
}

func TestResearch_ValidatesConfidenceEnum(t *testing.T) {
	client := llmtransport.NewFakeLLMClient(
		`{"findings":["a"],"recommendation":"do x","confidence":"maybe"}`,
		`{"findings":["a"],"recommendation":"do x","confidence":"high"}`,
	)

	res, err := Research(context.Background(), client, Input{TaskText: "x"})
	require.NoError(t, err)
	assert.Equal(t, "high", res.Confidence)
}

func TestCode_HappyPath(t *testing.T) {
	client := llmtransport.NewFakeLLMClient(
		`{"files_to_create":[{"path":"main.py","content":"print('hi')"}],"key_decisions":["kept it simple"],"status":"complete"}`,
	)

	impl, err := Code(context.Background(), client, Input{TaskText: "x"})
	require.NoError(t, err)
	require.Len(t, impl.FilesToCreate, 1)
	assert.Equal(t, "main.py", impl.FilesToCreate[0].Path)
	assert.Equal(t, "complete", impl.Status)
}

func TestFixCode_DoesNotRequireHistory(t *testing.T) {
	client := llmtransport.NewFakeLLMClient(
		`{"files_to_create":[{"path":"main.py","content":"print('hi')\n"}],"key_decisions":["fixed missing colon"],"status":"complete"}`,
	)

	prev := session.Implementation{
		FilesToCreate: []session.FileSpec{{Path: "main.py", Content: "print('hi'"}},
		Status:        "complete",
	}
	testResult := session.AggregateVerdict([]session.TestRecord{
		{TestName: "syntax", Suite: "python_syntax", Result: session.TestFail, Reason: "SyntaxError: missing closing paren"},
	})

	impl, err := FixCode(context.Background(), client, "build a hello world script", "", prev, testResult, time.Second)
	require.NoError(t, err)
	assert.Contains(t, impl.FilesToCreate[0].Content, "print('hi')")

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].UserPrompt, "Previous implementation")
	assert.Contains(t, calls[0].UserPrompt, "SyntaxError")
}

func TestReview_ValidatesVerdictEnum(t *testing.T) {
	client := llmtransport.NewFakeLLMClient(
		`{"verdict":"maybe","strengths":[],"issues":[],"suggestions":[]}`,
		`{"verdict":"approved","strengths":["clean"],"issues":[],"suggestions":[]}`,
	)

	review, err := Review(context.Background(), client, Input{TaskText: "x"})
	require.NoError(t, err)
	assert.Equal(t, session.ReviewApproved, review.Verdict)
}

func TestProposeFocus_HappyPath(t *testing.T) {
	client := llmtransport.NewFakeLLMClient(`{"focus_areas":["edge cases"],"risks":["off-by-one"]}`)

	focus, err := ProposeFocus(context.Background(), client, Input{TaskText: "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"edge cases"}, focus.FocusAreas)
}

func TestVote_ApprovesOnlyOnPassVerdict(t *testing.T) {
	pass := session.TestResult{Verdict: session.VerdictPass}
	needsFixes := session.TestResult{Verdict: session.VerdictNeedsFixes}

	v := Vote(session.Implementation{}, session.Review{}, pass)
	assert.Equal(t, session.VoteApprove, v.Vote)

	v = Vote(session.Implementation{}, session.Review{}, needsFixes)
	assert.Equal(t, session.VoteReject, v.Vote)
	assert.Contains(t, v.Reason, "needs_fixes")
}
