package session

// Plan is the Planner's role-shaped output (spec.md §3, §4.4).
type Plan struct {
	Strategy       string   `json:"strategy"`
	Steps          []string `json:"steps"`
	Unknowns       []string `json:"unknowns"`
	FilesToCreate  []string `json:"files_to_create,omitempty"`
}

// Research is the Researcher's role-shaped output.
type Research struct {
	Findings      []string `json:"findings"`
	Recommendation string  `json:"recommendation"`
	Confidence    string   `json:"confidence"` // low | medium | high
}

// FileSpec is one file the Coder wants materialized into the workspace.
// Path is always relative to Session.WorkspaceDir (spec.md §3 invariant:
// no absolute paths, no ".." traversal).
type FileSpec struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Implementation is the Coder's role-shaped output.
type Implementation struct {
	FilesToCreate []FileSpec `json:"files_to_create"`
	KeyDecisions  []string   `json:"key_decisions"`
	Status        string     `json:"status"` // "complete" once testable
}

// ReviewVerdict enumerates the Reviewer's overall judgement.
type ReviewVerdict string

const (
	ReviewApproved      ReviewVerdict = "approved"
	ReviewNeedsRevision ReviewVerdict = "needs_revision"
	ReviewRejected      ReviewVerdict = "rejected"
)

// Review is the Reviewer's role-shaped output.
type Review struct {
	Verdict     ReviewVerdict `json:"verdict"`
	Strengths   []string      `json:"strengths"`
	Issues      []string      `json:"issues"`
	Suggestions []string      `json:"suggestions"`
}

// TesterFocus is the Tester's role-shaped output (it proposes focus areas;
// the Orchestrator, not the Tester, runs the actual tests — spec.md §4.4).
type TesterFocus struct {
	FocusAreas []string `json:"focus_areas"`
	Risks      []string `json:"risks"`
}

// TestRecordResult is the outcome of a single executed (or skipped) test.
type TestRecordResult string

const (
	TestPass TestRecordResult = "pass"
	TestFail TestRecordResult = "fail"
	TestSkip TestRecordResult = "skip"
)

// TestRecord is one adapter-produced test outcome (spec.md §3, §4.6).
type TestRecord struct {
	TestName      string           `json:"test_name"`
	Suite         string           `json:"suite"`
	Result        TestRecordResult `json:"result"`
	StdoutExcerpt string           `json:"stdout_excerpt,omitempty"`
	StderrExcerpt string           `json:"stderr_excerpt,omitempty"`
	ExitCode      int              `json:"exit_code"`
	DurationMs    int64            `json:"duration_ms"`
	Reason        string           `json:"reason,omitempty"` // e.g. "timeout", "launch_failed"
}

// TestVerdict summarizes a TestResult's overall outcome.
type TestVerdict string

const (
	VerdictPass       TestVerdict = "pass"
	VerdictNeedsFixes TestVerdict = "needs_fixes"
)

// TestResult aggregates all TestRecords for one round (spec.md §3).
// Invariant: Verdict == pass iff every record's Result is pass or skip,
// and at least one record's Result is pass (enforced by AggregateVerdict).
type TestResult struct {
	Verdict       TestVerdict  `json:"verdict"`
	TestsExecuted int          `json:"tests_executed"`
	TestsPassed   int          `json:"tests_passed"`
	TestsFailed   int          `json:"tests_failed"`
	IssuesFound   []TestRecord `json:"issues_found"`
}

// AggregateVerdict computes the TestResult's Verdict/counts from a flat
// list of TestRecords (spec.md §8 "Verdict aggregation").
func AggregateVerdict(records []TestRecord) TestResult {
	tr := TestResult{Verdict: VerdictNeedsFixes}
	sawPass := false
	sawFail := false
	for _, r := range records {
		switch r.Result {
		case TestPass:
			tr.TestsPassed++
			tr.TestsExecuted++
			sawPass = true
		case TestFail:
			tr.TestsFailed++
			tr.TestsExecuted++
			sawFail = true
			tr.IssuesFound = append(tr.IssuesFound, r)
		case TestSkip:
			// Skips don't count toward executed/passed/failed.
		}
	}
	if !sawFail && sawPass {
		tr.Verdict = VerdictPass
	}
	return tr
}

// Vote is one agent's consensus ballot.
type Vote string

const (
	VoteApprove Vote = "approve"
	VoteReject  Vote = "reject"
)

// ConsensusResult is the outcome of the final consensus vote (spec.md §3).
type ConsensusResult struct {
	Votes         map[AgentName]Vote `json:"votes"`
	ApprovalRate  float64            `json:"approval_rate"`
	Approved      bool               `json:"approved"`
	Reason        string             `json:"reason"`
}
