package sessionstore

import (
	"github.com/codeready-toolchain/aav3/pkg/envprobe"
	"github.com/codeready-toolchain/aav3/pkg/session"
)

// WriteEnvironment persists the one-time environment capability probe
// (spec.md §4.8: environment.json).
func (s *Store) WriteEnvironment(caps envprobe.Capabilities) error {
	return writeJSONAtomic("INIT", s.path("environment.json"), caps)
}

// WritePlan persists the Planner's output (spec.md §4.8: plan.json).
func (s *Store) WritePlan(p session.Plan) error {
	return writeJSONAtomic("PLAN", s.path("plan.json"), p)
}

// WriteResearch persists the Researcher's output (spec.md §4.8: research.json).
func (s *Store) WriteResearch(r session.Research) error {
	return writeJSONAtomic("RESEARCH", s.path("research.json"), r)
}

// WriteImplementation persists the current-round Implementation to both
// implementation.json (latest) and implementation_history/ (append-only,
// SPEC_FULL supplement #1).
func (s *Store) WriteImplementation(round int, impl session.Implementation) error {
	if err := writeJSONAtomic("IMPLEMENT", s.path("implementation.json"), impl); err != nil {
		return err
	}
	return writeJSONAtomic("IMPLEMENT", nextHistoryPath(s.implementationHistoryDir(), "implementation", round), impl)
}

// WriteReview persists the Reviewer's output (spec.md §4.8: review.json).
func (s *Store) WriteReview(rv session.Review) error {
	return writeJSONAtomic("REVIEW", s.path("review.json"), rv)
}

// WriteTestResult persists the current-round TestResult to both
// test_result.json (latest) and test_history/ (append-only).
func (s *Store) WriteTestResult(round int, tr session.TestResult) error {
	if err := writeJSONAtomic("TEST", s.path("test_result.json"), tr); err != nil {
		return err
	}
	return writeJSONAtomic("TEST", nextHistoryPath(s.testHistoryDir(), "test_result", round), tr)
}

// WriteConsensus persists the final consensus vote (spec.md §4.8: consensus.json).
func (s *Store) WriteConsensus(c session.ConsensusResult) error {
	return writeJSONAtomic("CONSENSUS", s.path("consensus.json"), c)
}

// AppendConversation appends one message to conversation.jsonl, used as the
// SharedMemory write-through hook (spec.md §5 ordering guarantee: every
// message is durably recorded before the next agent's prompt is built).
func (s *Store) AppendConversation(msg session.Message) error {
	line, err := msg.MarshalLine()
	if err != nil {
		return err
	}
	return appendJSONLine("CONVERSATION", s.path("conversation.jsonl"), line)
}

// Verdict is the final session summary written to verdict.json (spec.md §6).
type Verdict struct {
	SessionID          string             `json:"session_id"`
	Status             string             `json:"status"` // done | error | cancelled
	Approved           bool               `json:"approved"`
	ApprovalRate       float64            `json:"approval_rate"`
	ConsensusThreshold float64            `json:"consensus_threshold"`
	RoundsUsed         int                `json:"rounds_used"`
	TestResult         session.TestResult `json:"test_result"`
	ReviewVerdict      session.ReviewVerdict `json:"review_verdict"`
	DurationSec        float64            `json:"duration_sec"`
	Errors             []VerdictError     `json:"errors"`

	// PhaseDurations is a SPEC_FULL supplement (#2): per-phase wall time,
	// useful for operators diagnosing slow sessions, not part of spec.md §6
	// but additive and harmless to consumers that only read the documented
	// fields.
	PhaseDurations map[string]float64 `json:"phase_durations,omitempty"`
}

// VerdictError is one entry in Verdict.Errors (spec.md §6).
type VerdictError struct {
	Phase   string `json:"phase"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// WriteVerdict persists the final verdict (spec.md §4.8: verdict.json). It
// is always written for completed and errored sessions (spec.md §7).
func (s *Store) WriteVerdict(v Verdict) error {
	return writeJSONAtomic("VERDICT", s.path("verdict.json"), v)
}

// ReadVerdict reads back a previously written verdict.json, e.g. for the
// status API (pkg/statusapi).
func (s *Store) ReadVerdict() (Verdict, error) {
	var v Verdict
	err := readJSON("STATUS", s.path("verdict.json"), &v)
	return v, err
}
