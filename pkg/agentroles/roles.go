// Package agentroles implements the five role-specialized Agent functions
// (spec.md §4.4): Planner, Researcher, Coder, Reviewer, Tester. Each is a
// pure function of (task_text, environment_constraints, history_window,
// role_prompt) over an LLMClient; none reads or writes the workspace.
package agentroles

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/codeready-toolchain/aav3/pkg/aaverr"
	"github.com/codeready-toolchain/aav3/pkg/llmtransport"
	"github.com/codeready-toolchain/aav3/pkg/session"
)

// DefaultTimeout is the LLMClient call timeout used when Input.Timeout is
// zero (spec.md §4.1: "default 900s").
const DefaultTimeout = 900 * time.Second

// Input is the common argument shape every role function takes (spec.md
// §4.4's "Common contract").
type Input struct {
	TaskText               string
	EnvironmentConstraints string
	History                []session.Message
	Timeout                time.Duration
}

func (in Input) timeout() time.Duration {
	if in.Timeout <= 0 {
		return DefaultTimeout
	}
	return in.Timeout
}

// buildUserPrompt assembles task brief + environment constraints + the
// last-N history messages rendered as "[from_agent/role] <content>" blocks
// + a role-specific JSON-only instruction (spec.md §4.4).
func buildUserPrompt(taskText, constraints string, history []session.Message, instruction string) string {
	var sb strings.Builder
	sb.WriteString("Task:\n")
	sb.WriteString(taskText)
	sb.WriteString("\n\n")

	if constraints != "" {
		sb.WriteString("Environment constraints:\n")
		sb.WriteString(constraints)
		sb.WriteString("\n\n")
	}

	if len(history) > 0 {
		sb.WriteString("Conversation so far:\n")
		sb.WriteString(renderHistory(history))
		sb.WriteString("\n\n")
	}

	sb.WriteString(instruction)
	return sb.String()
}

func renderHistory(history []session.Message) string {
	var sb strings.Builder
	for _, m := range history {
		content := fmt.Sprintf("%v", m.Content)
		if raw, err := json.Marshal(m.Content); err == nil {
			content = string(raw)
		}
		fmt.Fprintf(&sb, "[%s/%s] %s\n", m.FromAgent, m.Role, content)
	}
	return sb.String()
}

// callStructured sends (systemPrompt, userPrompt) and hands the raw text to
// decode. If decode fails with a MalformedAgentOutput error, it retries
// exactly once with a shape-correction nudge appended (spec.md §4.4: "one
// retry with an appended ... nudge"). A second failure, or any non-malformed
// error, is returned as-is.
func callStructured(ctx context.Context, client llmtransport.LLMClient, systemPrompt, userPrompt, shapeDesc string, timeout time.Duration, decode func(text string) error) error {
	text, err := client.Call(ctx, systemPrompt, userPrompt, timeout)
	if err != nil {
		return err
	}

	if err := decode(text); err == nil {
		return nil
	} else if !aaverr.Is(err, aaverr.KindMalformedAgentOutput) {
		return err
	}

	nudge := fmt.Sprintf("\n\nYour previous reply was not valid; return JSON matching exactly this shape: %s", shapeDesc)
	retryText, err := client.Call(ctx, systemPrompt, userPrompt+nudge, timeout)
	if err != nil {
		return err
	}
	return decode(retryText)
}

func requireNonEmpty(kind, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return aaverr.New(aaverr.KindMalformedAgentOutput, "", fmt.Sprintf("%s.%s is required", kind, field), nil)
	}
	return nil
}

func requireOneOf(kind, field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return aaverr.New(aaverr.KindMalformedAgentOutput, "",
		fmt.Sprintf("%s.%s must be one of %v, got %q", kind, field, allowed, value), nil)
}
