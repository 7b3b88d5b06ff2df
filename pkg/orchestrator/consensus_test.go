package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/aav3/pkg/session"
)

// mixedVotes is spec.md §8 scenario 5's "Threshold sensitivity" vote map:
// 3 approvals out of 5 ballots, approval_rate == 0.6.
func mixedVotes() map[session.AgentName]session.Vote {
	return map[session.AgentName]session.Vote{
		session.AgentPlanner:    session.VoteApprove,
		session.AgentResearcher: session.VoteApprove,
		session.AgentCoder:      session.VoteApprove,
		session.AgentReviewer:   session.VoteReject,
		session.AgentTester:     session.VoteReject,
	}
}

func TestComputeConsensus_ThresholdSensitivity(t *testing.T) {
	const epsilon = 1e-9

	tests := []struct {
		name      string
		threshold float64
		approved  bool
	}{
		{"threshold well below approval_rate", 0.5, true},
		{"threshold well above approval_rate", 0.67, false},
		{"threshold just below approval_rate", 0.6 - epsilon, true},
		{"threshold exactly at approval_rate", 0.6, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := computeConsensus(mixedVotes(), tt.threshold, "scenario-5")
			require.InDelta(t, 0.6, result.ApprovalRate, 1e-9)
			assert.Equal(t, tt.approved, result.Approved)
		})
	}
}

func TestComputeConsensus_ThresholdMonotonicity(t *testing.T) {
	// approved must never flip from false back to true as threshold rises
	// (spec.md §8: "Consensus threshold monotonicity").
	votes := mixedVotes()
	sawRejection := false
	for threshold := 0.0; threshold <= 1.0; threshold += 0.01 {
		result := computeConsensus(votes, threshold, "monotonicity")
		if !result.Approved {
			sawRejection = true
		}
		if sawRejection {
			assert.False(t, result.Approved, "approved flipped back to true at threshold=%v after a lower threshold rejected", threshold)
		}
	}
}

func TestComputeConsensus_UnanimousApproval(t *testing.T) {
	votes := map[session.AgentName]session.Vote{
		session.AgentPlanner:    session.VoteApprove,
		session.AgentResearcher: session.VoteApprove,
		session.AgentCoder:      session.VoteApprove,
		session.AgentReviewer:   session.VoteApprove,
		session.AgentTester:     session.VoteApprove,
	}
	result := computeConsensus(votes, 1.0, "unanimous")
	assert.Equal(t, 1.0, result.ApprovalRate)
	assert.True(t, result.Approved)
}

func TestComputeConsensus_UnanimousRejection(t *testing.T) {
	votes := map[session.AgentName]session.Vote{
		session.AgentPlanner:    session.VoteReject,
		session.AgentResearcher: session.VoteReject,
		session.AgentCoder:      session.VoteReject,
		session.AgentReviewer:   session.VoteReject,
		session.AgentTester:     session.VoteReject,
	}
	result := computeConsensus(votes, 0.01, "none")
	assert.Equal(t, 0.0, result.ApprovalRate)
	assert.False(t, result.Approved)
}

func TestRunConsensus_ReplicatesSingleVoteAcrossAllAgents(t *testing.T) {
	testResult := session.TestResult{Verdict: session.VerdictPass}
	result := runConsensus(session.Implementation{}, session.Review{}, testResult, 0.67)

	require.Len(t, result.Votes, len(votingAgents))
	for _, agent := range votingAgents {
		assert.Equal(t, session.VoteApprove, result.Votes[agent])
	}
	assert.Equal(t, 1.0, result.ApprovalRate)
	assert.True(t, result.Approved)
}
