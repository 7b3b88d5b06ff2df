package agentroles

import (
	"fmt"

	"github.com/codeready-toolchain/aav3/pkg/session"
)

// VoteRecord is the short JSON object every agent's vote is recorded as
// (spec.md §4.4), so the reason behind each ballot is preserved alongside
// the vote itself.
type VoteRecord struct {
	Vote   session.Vote `json:"vote"`
	Reason string       `json:"reason"`
}

// Vote implements the consensus vote operation: `vote(implementation,
// review, test_result) → {approve|reject}` (spec.md §4.4). The rule is
// structural, not an LLM call: approve iff test_result.verdict == "pass",
// regardless of what implementation or review say. Both are accepted here
// only to match the documented operation signature; neither influences the
// outcome.
func Vote(_ session.Implementation, _ session.Review, testResult session.TestResult) VoteRecord {
	if testResult.Verdict == session.VerdictPass {
		return VoteRecord{
			Vote:   session.VoteApprove,
			Reason: "test_result.verdict == pass",
		}
	}
	return VoteRecord{
		Vote:   session.VoteReject,
		Reason: fmt.Sprintf("test_result.verdict == %s", testResult.Verdict),
	}
}
