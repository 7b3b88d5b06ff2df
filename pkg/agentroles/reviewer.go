package agentroles

import (
	"context"

	"github.com/codeready-toolchain/aav3/pkg/jsonextract"
	"github.com/codeready-toolchain/aav3/pkg/llmtransport"
	"github.com/codeready-toolchain/aav3/pkg/session"
)

const reviewerSystemPrompt = `You are the Reviewer agent in a multi-agent software deliberation.
You receive the task brief, environment constraints, and the full conversation including the
final implementation and its test result. Judge the implementation on its merits: correctness,
completeness against the task, and whether the test result supports shipping it. Return a
verdict, what the implementation does well, concrete issues, and suggestions.`

const reviewerShape = `{"verdict": "approved"|"needs_revision"|"rejected", "strengths": [string], "issues": [string], "suggestions": [string]}`

// Review runs the Reviewer role function (spec.md §4.4).
func Review(ctx context.Context, client llmtransport.LLMClient, in Input) (session.Review, error) {
	instruction := "Return only a single JSON object matching exactly this shape, no prose, no markdown fences: " + reviewerShape
	userPrompt := buildUserPrompt(in.TaskText, in.EnvironmentConstraints, in.History, instruction)

	var out session.Review
	err := callStructured(ctx, client, reviewerSystemPrompt, userPrompt, reviewerShape, in.timeout(), func(text string) error {
		var candidate session.Review
		if err := jsonextract.ExtractInto(text, &candidate); err != nil {
			return err
		}
		if err := validateReview(candidate); err != nil {
			return err
		}
		out = candidate
		return nil
	})
	return out, err
}

func validateReview(r session.Review) error {
	return requireOneOf("review", "verdict", string(r.Verdict),
		string(session.ReviewApproved), string(session.ReviewNeedsRevision), string(session.ReviewRejected))
}
