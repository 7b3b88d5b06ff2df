package agentroles

import (
	"context"

	"github.com/codeready-toolchain/aav3/pkg/jsonextract"
	"github.com/codeready-toolchain/aav3/pkg/llmtransport"
	"github.com/codeready-toolchain/aav3/pkg/session"
)

const testerSystemPrompt = `You are the Tester agent in a multi-agent software deliberation.
You receive the task brief, environment constraints, and the conversation including the
implementation. You do not run anything yourself — propose the areas the automated test
adapters should focus scrutiny on, and call out risks you see in the implementation that
an automated suite might miss.`

const testerShape = `{"focus_areas": [string], "risks": [string]}`

// ProposeFocus runs the Tester role function (spec.md §4.4). It proposes
// what to scrutinize; the Orchestrator, not the Tester, runs the actual
// TestAdapters (spec.md §4.6).
func ProposeFocus(ctx context.Context, client llmtransport.LLMClient, in Input) (session.TesterFocus, error) {
	instruction := "Return only a single JSON object matching exactly this shape, no prose, no markdown fences: " + testerShape
	userPrompt := buildUserPrompt(in.TaskText, in.EnvironmentConstraints, in.History, instruction)

	var out session.TesterFocus
	err := callStructured(ctx, client, testerSystemPrompt, userPrompt, testerShape, in.timeout(), func(text string) error {
		var candidate session.TesterFocus
		if err := jsonextract.ExtractInto(text, &candidate); err != nil {
			return err
		}
		out = candidate
		return nil
	})
	return out, err
}
