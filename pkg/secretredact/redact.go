// Package secretredact scrubs credential-shaped substrings out of text
// before it reaches process logs or verdict.json. AAv3 pipes LLM-authored
// text (task briefs, research notes, generated code) through the
// Orchestrator largely unexamined; if a task brief or a Coder response
// happens to echo back a real credential, it should never survive into a
// log line or an error message that outlives the run.
//
// This does not touch workspace file content — files_to_create is the
// Coder's actual deliverable and must reach disk byte-for-byte, exactly as
// SessionStore's single-writer rule requires. Redaction applies only to
// the two surfaces that leave the artifacts directory's ownership: the
// slog logger and VerdictError messages.
package secretredact

import (
	"log/slog"
	"regexp"
)

// pattern is a pre-compiled secret-shaped regex and its replacement.
type pattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// builtinPatterns mirrors the shapes most likely to appear in LLM output:
// cloud provider keys, bearer tokens, and PEM private key blocks. Unlike a
// general-purpose masking service, this list is fixed — AAv3 has no
// per-caller pattern configuration to resolve.
// Order matters: more specific shapes run before the generic catch-all so
// e.g. a GitHub token isn't swallowed by the broader api-key pattern first.
var builtinPatterns = []struct{ name, expr, replacement string }{
	{"aws_access_key_id", `AKIA[0-9A-Z]{16}`, "[REDACTED:aws_access_key_id]"},
	{"bearer_token", `(?i)bearer\s+[A-Za-z0-9_\-.]{16,}`, "[REDACTED:bearer_token]"},
	{"github_token", `gh[pousr]_[A-Za-z0-9]{30,}`, "[REDACTED:github_token]"},
	{"slack_token", `xox[baprs]-[A-Za-z0-9-]{10,}`, "[REDACTED:slack_token]"},
	{"private_key_block", `-----BEGIN (RSA |EC |OPENSSH )?PRIVATE KEY-----[\s\S]*?-----END (RSA |EC |OPENSSH )?PRIVATE KEY-----`, "[REDACTED:private_key]"},
	{"generic_api_key", `(?i)(api[_-]?key|secret|token)["']?\s*[:=]\s*["']?[A-Za-z0-9_\-]{16,}`, "[REDACTED:api_key]"},
}

// Redactor applies the builtin pattern set. Created once and reused; all
// patterns are compiled eagerly at construction, invalid patterns (none,
// normally, since builtinPatterns is fixed) are logged and skipped rather
// than panicking, matching the fail-open posture of log scrubbing: a
// redaction bug should never take down a session.
type Redactor struct {
	patterns []pattern
}

// New compiles the builtin pattern set.
func New() *Redactor {
	r := &Redactor{}
	for _, p := range builtinPatterns {
		compiled, err := regexp.Compile(p.expr)
		if err != nil {
			slog.Error("failed to compile secret redaction pattern, skipping", "pattern", p.name, "error", err)
			continue
		}
		r.patterns = append(r.patterns, pattern{name: p.name, regex: compiled, replacement: p.replacement})
	}
	return r
}

// Redact replaces every recognized secret-shaped substring in s. Safe to
// call with arbitrary text; returns s unchanged if nothing matches.
func (r *Redactor) Redact(s string) string {
	if s == "" {
		return s
	}
	masked := s
	for _, p := range r.patterns {
		masked = p.regex.ReplaceAllString(masked, p.replacement)
	}
	return masked
}
