package agentroles

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codeready-toolchain/aav3/pkg/jsonextract"
	"github.com/codeready-toolchain/aav3/pkg/llmtransport"
	"github.com/codeready-toolchain/aav3/pkg/session"
)

const coderSystemPrompt = `You are the Coder agent in a multi-agent software deliberation.
Given a task brief, environment constraints, and the conversation so far (plan and research),
produce a complete implementation: the full content of every file to create, the key design
decisions you made, and a status. Every file path must be relative (no leading "/", no ".."
segments) — it is resolved under an isolated workspace directory you cannot see or name.
The files_to_create list you return is a full snapshot, never a diff.`

const coderFixSystemPrompt = `You are the Coder agent, fixing a prior implementation.
You see only the previous implementation and the failing test result below — not the full
conversation, to keep this prompt bounded. Return a corrected, complete files_to_create
snapshot (the full content of every file, not a diff) that addresses every issue listed.`

const coderShape = `{"files_to_create": [{"path": string, "content": string}], "key_decisions": [string], "status": string}`

// maxFixIssues bounds how many of the previous round's failing TestRecords
// are included in a fix prompt (spec.md §4.7: "issues_found trimmed to the
// top N").
const maxFixIssues = 10

// Code runs the Coder role function for the initial implementation attempt
// (spec.md §4.4).
func Code(ctx context.Context, client llmtransport.LLMClient, in Input) (session.Implementation, error) {
	instruction := "Return only a single JSON object matching exactly this shape, no prose, no markdown fences: " + coderShape
	userPrompt := buildUserPrompt(in.TaskText, in.EnvironmentConstraints, in.History, instruction)
	return runCoder(ctx, client, coderSystemPrompt, userPrompt, in.timeout())
}

// FixCode runs the Coder role function for one auto-fix round (spec.md
// §4.7). It intentionally does not take a History window: the fix prompt
// contains only the previous Implementation and the failing TestResult.
func FixCode(ctx context.Context, client llmtransport.LLMClient, taskText, environmentConstraints string, previous session.Implementation, testResult session.TestResult, timeout time.Duration) (session.Implementation, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var sb strings.Builder
	sb.WriteString("Task:\n")
	sb.WriteString(taskText)
	sb.WriteString("\n\n")
	if environmentConstraints != "" {
		sb.WriteString("Environment constraints:\n")
		sb.WriteString(environmentConstraints)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Previous implementation:\n")
	sb.WriteString(renderImplementation(previous))
	sb.WriteString("\n\nFailing test result:\n")
	sb.WriteString(renderTestIssues(testResult))
	sb.WriteString("\n\nReturn only a single JSON object matching exactly this shape, no prose, no markdown fences: ")
	sb.WriteString(coderShape)

	return runCoder(ctx, client, coderFixSystemPrompt, sb.String(), timeout)
}

func runCoder(ctx context.Context, client llmtransport.LLMClient, systemPrompt, userPrompt string, timeout time.Duration) (session.Implementation, error) {
	var out session.Implementation
	err := callStructured(ctx, client, systemPrompt, userPrompt, coderShape, timeout, func(text string) error {
		var candidate session.Implementation
		if err := jsonextract.ExtractInto(text, &candidate); err != nil {
			return err
		}
		if err := validateImplementation(candidate); err != nil {
			return err
		}
		out = candidate
		return nil
	})
	return out, err
}

func validateImplementation(impl session.Implementation) error {
	return requireNonEmpty("implementation", "status", impl.Status)
}

func renderImplementation(impl session.Implementation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "status: %s\n", impl.Status)
	for _, d := range impl.KeyDecisions {
		fmt.Fprintf(&sb, "decision: %s\n", d)
	}
	for _, f := range impl.FilesToCreate {
		fmt.Fprintf(&sb, "--- file: %s ---\n%s\n", f.Path, f.Content)
	}
	return sb.String()
}

func renderTestIssues(tr session.TestResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "verdict: %s (%d passed, %d failed, %d executed)\n", tr.Verdict, tr.TestsPassed, tr.TestsFailed, tr.TestsExecuted)
	issues := tr.IssuesFound
	if len(issues) > maxFixIssues {
		issues = issues[:maxFixIssues]
	}
	for _, rec := range issues {
		fmt.Fprintf(&sb, "- [%s/%s] exit=%d: %s\n", rec.Suite, rec.TestName, rec.ExitCode, firstNonEmpty(rec.Reason, rec.StderrExcerpt, rec.StdoutExcerpt))
	}
	return sb.String()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return "(no detail)"
}
