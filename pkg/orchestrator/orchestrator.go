// Package orchestrator implements the six-phase AAv3 state machine
// (spec.md §4.7): INIT → PROBE → PLAN → RESEARCH → IMPLEMENT → TEST →
// [FIX_LOOP] → REVIEW → CONSENSUS → DONE.
//
// Orchestrator is the only component that touches the filesystem or calls
// the five Agent role functions; SharedMemory, SessionStore, and
// TestAdapters are all driven from here, in a single sequential state walk,
// progressively persisting results, fail-fast on fatal errors, forced
// conclusion at max_rounds.
package orchestrator

import (
	"log/slog"
	"time"

	"github.com/codeready-toolchain/aav3/pkg/aaverr"
	"github.com/codeready-toolchain/aav3/pkg/agentroles"
	"github.com/codeready-toolchain/aav3/pkg/envprobe"
	"github.com/codeready-toolchain/aav3/pkg/llmtransport"
	"github.com/codeready-toolchain/aav3/pkg/secretredact"
	"github.com/codeready-toolchain/aav3/pkg/session"
	"github.com/codeready-toolchain/aav3/pkg/sessionstore"
)

// Orchestrator drives one Session through the state machine.
type Orchestrator struct {
	LLMClient llmtransport.LLMClient
	Prober    *envprobe.Prober

	PythonSyntaxTimeout  time.Duration
	UnitTestTimeout      time.Duration
	DockerBuildTimeout   time.Duration
	SecurityFailSeverity string

	log      *slog.Logger
	redactor *secretredact.Redactor
}

// New wires an Orchestrator from its collaborators. Timeouts and
// security_fail_severity come from pkg/aavconfig's resolved Config.
func New(client llmtransport.LLMClient, prober *envprobe.Prober, pythonSyntaxTimeout, unitTestTimeout, dockerBuildTimeout time.Duration, securityFailSeverity string) *Orchestrator {
	return &Orchestrator{
		LLMClient:            client,
		Prober:               prober,
		PythonSyntaxTimeout:  pythonSyntaxTimeout,
		UnitTestTimeout:      unitTestTimeout,
		DockerBuildTimeout:   dockerBuildTimeout,
		SecurityFailSeverity: securityFailSeverity,
		log:                  slog.Default(),
		redactor:             secretredact.New(),
	}
}

// runState carries the mutable bookkeeping threaded through one Run call.
type runState struct {
	sess       *session.Session
	store      *sessionstore.Store
	caps       envprobe.Capabilities
	constraint string

	round int

	plan       session.Plan
	research   session.Research
	impl       session.Implementation
	review     session.Review
	testResult session.TestResult

	phaseDuration map[string]float64
	errs          []sessionstore.VerdictError

	redactor *secretredact.Redactor
}

func newRunState(sess *session.Session, store *sessionstore.Store, redactor *secretredact.Redactor) *runState {
	return &runState{sess: sess, store: store, phaseDuration: map[string]float64{}, redactor: redactor}
}

// timePhase runs fn and accumulates its wall time under name (SPEC_FULL
// supplement #2: per-phase duration rollup in the final verdict). Durations
// for a phase visited more than once (IMPLEMENT/TEST across fix rounds)
// accumulate across visits.
func (rs *runState) timePhase(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	rs.phaseDuration[name] += time.Since(start).Seconds()
	return err
}

// recordErr records one phase failure into the final verdict. The message
// is passed through the Redactor first: err.Error() ultimately derives from
// LLM output (a malformed agent response, a vendor error body) the
// Orchestrator never inspects, and verdict.json outlives the run.
func (rs *runState) recordErr(phase string, err error) {
	kind, ok := aaverr.KindOf(err)
	if !ok {
		kind = aaverr.KindLLMTransport
	}
	msg := err.Error()
	if rs.redactor != nil {
		msg = rs.redactor.Redact(msg)
	}
	rs.errs = append(rs.errs, sessionstore.VerdictError{Phase: phase, Kind: string(kind), Message: msg})
}

// agentInput builds the common Input shape, windowed to the session's
// SharedMemory history (spec.md §4.4).
func (rs *runState) agentInput(timeout time.Duration) agentroles.Input {
	return agentroles.Input{
		TaskText:               rs.sess.TaskText,
		EnvironmentConstraints: rs.constraint,
		History:                rs.sess.Memory.History(0),
		Timeout:                timeout,
	}
}

func appendMessage(sess *session.Session, from session.AgentName, role session.Role, msgType string, content interface{}) {
	sess.Memory.Append(session.Message{
		FromAgent:   from,
		Role:        role,
		MessageType: msgType,
		Content:     content,
	})
}
