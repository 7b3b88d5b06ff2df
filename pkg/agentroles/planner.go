package agentroles

import (
	"context"

	"github.com/codeready-toolchain/aav3/pkg/jsonextract"
	"github.com/codeready-toolchain/aav3/pkg/llmtransport"
	"github.com/codeready-toolchain/aav3/pkg/session"
)

const plannerSystemPrompt = `You are the Planner agent in a multi-agent software deliberation.
Given a task brief and the host's environment constraints, produce a strategy: a short
paragraph describing the overall approach, an ordered list of concrete steps, and any
open questions a Researcher should resolve before implementation starts. Honor every
environment constraint exactly; never propose a step the constraints prohibit.`

const plannerShape = `{"strategy": string, "steps": [string], "unknowns": [string]}`

// Plan runs the Planner role function (spec.md §4.4).
func Plan(ctx context.Context, client llmtransport.LLMClient, in Input) (session.Plan, error) {
	instruction := "Return only a single JSON object matching exactly this shape, no prose, no markdown fences: " + plannerShape
	userPrompt := buildUserPrompt(in.TaskText, in.EnvironmentConstraints, in.History, instruction)

	var out session.Plan
	err := callStructured(ctx, client, plannerSystemPrompt, userPrompt, plannerShape, in.timeout(), func(text string) error {
		var candidate session.Plan
		if err := jsonextract.ExtractInto(text, &candidate); err != nil {
			return err
		}
		if err := validatePlan(candidate); err != nil {
			return err
		}
		out = candidate
		return nil
	})
	return out, err
}

func validatePlan(p session.Plan) error {
	if err := requireNonEmpty("plan", "strategy", p.Strategy); err != nil {
		return err
	}
	if p.Steps == nil {
		return requireNonEmpty("plan", "steps", "")
	}
	return nil
}
