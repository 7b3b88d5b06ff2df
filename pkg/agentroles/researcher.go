package agentroles

import (
	"context"

	"github.com/codeready-toolchain/aav3/pkg/jsonextract"
	"github.com/codeready-toolchain/aav3/pkg/llmtransport"
	"github.com/codeready-toolchain/aav3/pkg/session"
)

const researcherSystemPrompt = `You are the Researcher agent in a multi-agent software deliberation.
You receive the task brief, the environment constraints, and the Planner's strategy and
unknowns. Investigate the unknowns using only the information already in the conversation
(you have no tool access) and produce findings, a single recommendation for the Coder to
follow, and your confidence in that recommendation. You are invoked even when the Planner
listed zero unknowns; in that case confirm the plan is sound.`

const researcherShape = `{"findings": [string], "recommendation": string, "confidence": "low"|"medium"|"high"}`

// Research runs the Researcher role function (spec.md §4.4).
func Research(ctx context.Context, client llmtransport.LLMClient, in Input) (session.Research, error) {
	instruction := "Return only a single JSON object matching exactly this shape, no prose, no markdown fences: " + researcherShape
	userPrompt := buildUserPrompt(in.TaskText, in.EnvironmentConstraints, in.History, instruction)

	var out session.Research
	err := callStructured(ctx, client, researcherSystemPrompt, userPrompt, researcherShape, in.timeout(), func(text string) error {
		var candidate session.Research
		if err := jsonextract.ExtractInto(text, &candidate); err != nil {
			return err
		}
		if err := validateResearch(candidate); err != nil {
			return err
		}
		out = candidate
		return nil
	})
	return out, err
}

func validateResearch(r session.Research) error {
	if err := requireNonEmpty("research", "recommendation", r.Recommendation); err != nil {
		return err
	}
	return requireOneOf("research", "confidence", r.Confidence, "low", "medium", "high")
}
