package orchestrator

import (
	"fmt"

	"github.com/codeready-toolchain/aav3/pkg/agentroles"
	"github.com/codeready-toolchain/aav3/pkg/session"
)

// votingAgents is every agent that casts a consensus ballot (spec.md §4.4:
// "Consensus vote operation on every agent").
var votingAgents = []session.AgentName{
	session.AgentPlanner,
	session.AgentResearcher,
	session.AgentCoder,
	session.AgentReviewer,
	session.AgentTester,
}

// runConsensus casts one vote per voting agent (all deterministically
// identical, since agentroles.Vote depends only on testResult — spec.md
// §4.4), then delegates approval_rate/threshold arithmetic to
// computeConsensus.
func runConsensus(impl session.Implementation, review session.Review, testResult session.TestResult, threshold float64) session.ConsensusResult {
	record := agentroles.Vote(impl, review, testResult)
	votes := make(map[session.AgentName]session.Vote, len(votingAgents))
	for _, agent := range votingAgents {
		votes[agent] = record.Vote
	}
	return computeConsensus(votes, threshold, record.Reason)
}

// computeConsensus takes an already-decided vote map and computes
// approval_rate and approved with the ε-tolerant threshold comparison
// (spec.md §4.7). Factored out from runConsensus so the approval-rate
// arithmetic can be exercised directly against arbitrary (including mixed)
// vote maps, independent of how those votes were cast.
func computeConsensus(votes map[session.AgentName]session.Vote, threshold float64, reason string) session.ConsensusResult {
	const epsilon = 1e-9

	approvals := 0
	for _, v := range votes {
		if v == session.VoteApprove {
			approvals++
		}
	}

	rate := float64(approvals) / float64(len(votes))
	approved := rate+epsilon >= threshold
	return session.ConsensusResult{
		Votes:        votes,
		ApprovalRate: rate,
		Approved:     approved,
		Reason:       fmt.Sprintf("%s (approval_rate=%.4f, threshold=%.4f)", reason, rate, threshold),
	}
}
