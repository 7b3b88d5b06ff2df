package orchestrator

import (
	"context"
	"strconv"
	"time"

	"github.com/codeready-toolchain/aav3/pkg/aaverr"
	"github.com/codeready-toolchain/aav3/pkg/agentroles"
	"github.com/codeready-toolchain/aav3/pkg/envprobe"
	"github.com/codeready-toolchain/aav3/pkg/session"
	"github.com/codeready-toolchain/aav3/pkg/sessionstore"
	"github.com/codeready-toolchain/aav3/pkg/testadapters"
)

// Run drives sess through INIT→PROBE→PLAN→RESEARCH→IMPLEMENT→TEST→
// [FIX_LOOP]→REVIEW→CONSENSUS→DONE (spec.md §4.7), persisting every
// artifact via store, and always returns a Verdict — even on error or
// cancellation (spec.md §7: "verdict.json is always written").
func (o *Orchestrator) Run(ctx context.Context, sess *session.Session, store *sessionstore.Store) sessionstore.Verdict {
	start := time.Now()
	rs := newRunState(sess, store, o.redactor)

	sess.Memory.OnAppend(func(msg session.Message) {
		if err := store.AppendConversation(msg); err != nil {
			o.log.Error("failed to append conversation message", "error", o.redactor.Redact(err.Error()))
		}
	})

	status, testVerdict, reviewVerdict, consensus := o.runPhases(ctx, rs)

	return sessionstore.Verdict{
		SessionID:          sess.ID,
		Status:             status,
		Approved:           consensus.Approved,
		ApprovalRate:       consensus.ApprovalRate,
		ConsensusThreshold: sess.ConsensusThreshold,
		RoundsUsed:         rs.round,
		TestResult:         testVerdict,
		ReviewVerdict:      reviewVerdict,
		DurationSec:        time.Since(start).Seconds(),
		Errors:             rs.errs,
		PhaseDurations:     rs.phaseDuration,
	}
}

// runPhases implements the state machine body. It returns the fields Run
// needs to assemble the final Verdict; it never panics, and a fatal error
// short-circuits straight to REVIEW/CONSENSUS being skipped (status =
// "error") while still returning whatever partial results exist.
func (o *Orchestrator) runPhases(ctx context.Context, rs *runState) (status string, tr session.TestResult, rv session.ReviewVerdict, cr session.ConsensusResult) {
	sess := rs.sess

	// PROBE
	if err := rs.timePhase("PROBE", func() error {
		rs.caps = o.Prober.Probe(ctx)
		rs.constraint = envprobe.ConstraintBlock(rs.caps)
		return rs.store.WriteEnvironment(rs.caps)
	}); err != nil {
		rs.recordErr("PROBE", err)
		return "error", tr, rv, cr
	}

	// PLAN
	if err := rs.timePhase("PLAN", func() error {
		return retryOnce(func() error {
			plan, err := agentroles.Plan(ctx, o.LLMClient, rs.agentInput(0))
			if err != nil {
				return err
			}
			rs.plan = plan
			appendMessage(sess, session.AgentPlanner, session.RolePlan, "plan", plan)
			return rs.store.WritePlan(plan)
		})
	}); err != nil {
		rs.recordErr("PLAN", err)
		return terminalStatus(err), tr, rv, cr
	}

	// RESEARCH
	if err := rs.timePhase("RESEARCH", func() error {
		return retryOnce(func() error {
			research, err := agentroles.Research(ctx, o.LLMClient, rs.agentInput(0))
			if err != nil {
				return err
			}
			rs.research = research
			appendMessage(sess, session.AgentResearcher, session.RoleResearch, "research", research)
			return rs.store.WriteResearch(research)
		})
	}); err != nil {
		rs.recordErr("RESEARCH", err)
		return terminalStatus(err), tr, rv, cr
	}

	// IMPLEMENT (round 0) then the bounded TEST/FIX_LOOP.
	if err := rs.timePhase("IMPLEMENT", func() error {
		return retryOnce(func() error {
			impl, err := agentroles.Code(ctx, o.LLMClient, rs.agentInput(0))
			if err != nil {
				return err
			}
			return o.applyImplementation(rs, impl)
		})
	}); err != nil {
		rs.recordErr("IMPLEMENT", err)
		return terminalStatus(err), tr, rv, cr
	}

	if err := ctx.Err(); err != nil {
		return "cancelled", rs.testResult, rv, cr
	}

	if err := rs.timePhase("TEST", func() error {
		rs.testResult = o.runTests(ctx, rs)
		return rs.store.WriteTestResult(rs.round, rs.testResult)
	}); err != nil {
		rs.recordErr("TEST", err)
		return "error", rs.testResult, rv, cr
	}

	for rs.testResult.Verdict == session.VerdictNeedsFixes && rs.round < sess.MaxRounds {
		if err := ctx.Err(); err != nil {
			return "cancelled", rs.testResult, rv, cr
		}

		rs.round++
		previous := rs.impl
		var nextImpl session.Implementation
		fixErr := rs.timePhase("IMPLEMENT", func() error {
			return retryOnce(func() error {
				impl, err := agentroles.FixCode(ctx, o.LLMClient, sess.TaskText, rs.constraint, previous, rs.testResult, 0)
				if err != nil {
					return err
				}
				nextImpl = impl
				return nil
			})
		})
		if fixErr != nil {
			rs.recordErr("IMPLEMENT round "+strconv.Itoa(rs.round), fixErr)
			return terminalStatus(fixErr), rs.testResult, rv, cr
		}

		// spec.md §4.7: a zero-file fix reply when a previous implementation
		// already had files is "no change" — don't overwrite, re-test as-is,
		// and the loop will exit on the next iteration instead of spinning.
		if len(nextImpl.FilesToCreate) == 0 && len(previous.FilesToCreate) > 0 {
			nextImpl = previous
		}
		if err := o.applyImplementation(rs, nextImpl); err != nil {
			rs.recordErr("IMPLEMENT round "+strconv.Itoa(rs.round), err)
			return "error", rs.testResult, rv, cr
		}

		if err := rs.timePhase("TEST", func() error {
			rs.testResult = o.runTests(ctx, rs)
			return rs.store.WriteTestResult(rs.round, rs.testResult)
		}); err != nil {
			rs.recordErr("TEST round "+strconv.Itoa(rs.round), err)
			return "error", rs.testResult, rv, cr
		}
	}

	// REVIEW (always entered, forced at max_rounds per spec.md §4.7)
	if err := rs.timePhase("REVIEW", func() error {
		return retryOnce(func() error {
			review, err := agentroles.Review(ctx, o.LLMClient, rs.agentInput(0))
			if err != nil {
				return err
			}
			rs.review = review
			appendMessage(sess, session.AgentReviewer, session.RoleReview, "review", review)
			return rs.store.WriteReview(review)
		})
	}); err != nil {
		rs.recordErr("REVIEW", err)
		return terminalStatus(err), rs.testResult, rv, cr
	}

	// CONSENSUS (always entered; vote outcome never gates whether the
	// session terminates, only the "approved" field — spec.md §4.7)
	consensus := runConsensus(rs.impl, rs.review, rs.testResult, sess.ConsensusThreshold)
	appendMessage(sess, session.AgentOrchestrator, session.RoleConsensus, "consensus", consensus)
	if err := rs.store.WriteConsensus(consensus); err != nil {
		rs.recordErr("CONSENSUS", err)
		return "error", rs.testResult, rs.review.Verdict, consensus
	}

	return "done", rs.testResult, rs.review.Verdict, consensus
}

// applyImplementation persists the Implementation, materializes its files
// into the workspace, and appends it to SharedMemory (spec.md §4.7:
// "Writing is atomic per file ... a write failure aborts with
// ErrorKind.FilesystemError").
func (o *Orchestrator) applyImplementation(rs *runState, impl session.Implementation) error {
	if _, err := rs.store.WriteWorkspaceFiles(impl.FilesToCreate); err != nil {
		return err
	}
	rs.impl = impl
	appendMessage(rs.sess, session.AgentCoder, session.RoleImplementation, "implementation", impl)
	return rs.store.WriteImplementation(rs.round, impl)
}

// runTests invokes the Tester role (for focus areas, recorded but not
// gating), then the real TestAdapters, aggregating their records into a
// TestResult (spec.md §4.6, §4.7). A Tester LLM failure does not abort the
// session: focus proposals are advisory, and test adapters run regardless.
func (o *Orchestrator) runTests(ctx context.Context, rs *runState) session.TestResult {
	if _, err := agentroles.ProposeFocus(ctx, o.LLMClient, rs.agentInput(0)); err != nil {
		rs.recordErr("TEST round "+strconv.Itoa(rs.round)+" (tester focus)", err)
	}

	filesCreated := make([]string, 0, len(rs.impl.FilesToCreate))
	for _, f := range rs.impl.FilesToCreate {
		filesCreated = append(filesCreated, f.Path)
	}

	records := testadapters.RunAll(ctx, rs.store.WorkspaceDir(), filesCreated, rs.caps, testadapters.Options{
		SessionID:            rs.sess.ID,
		PythonSyntaxTimeout:  o.PythonSyntaxTimeout,
		UnitTestTimeout:      o.UnitTestTimeout,
		DockerBuildTimeout:   o.DockerBuildTimeout,
		SecurityFailSeverity: o.SecurityFailSeverity,
	})
	return session.AggregateVerdict(records)
}

// terminalStatus maps a fatal phase error to the verdict status it should
// produce: Cancelled errors surface as "cancelled" (spec.md §5), everything
// else that reaches here (second-retry LLM failures, ConfigError-adjacent
// validation) is "error" (spec.md §7).
func terminalStatus(err error) string {
	if aaverr.Is(err, aaverr.KindCancelled) {
		return "cancelled"
	}
	return "error"
}

