// Package jsonextract recovers a single top-level JSON object from chatty
// LLM text output: fenced code blocks, prose preambles/postscripts, and
// string literals that themselves contain braces.
//
// The approach generalizes the balanced-brace scanners used elsewhere in
// this family of tools (see DESIGN.md) by tracking whether the scanner is
// currently inside a double-quoted string, so a brace inside a quoted JSON
// string value never perturbs the depth count.
package jsonextract

import (
	"encoding/json"
	"strings"

	"github.com/codeready-toolchain/aav3/pkg/aaverr"
)

const maxDiagnosticLen = 2000

// Extract recovers the first complete top-level JSON object from text and
// unmarshals it into a generic map. On failure it returns an
// *aaverr.Error of kind MalformedAgentOutput carrying a truncated copy of
// the raw text for diagnostics.
func Extract(text string) (map[string]interface{}, error) {
	raw, err := extractRaw(text)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, malformed(text, "extracted text is not a valid JSON object: "+err.Error())
	}
	return out, nil
}

// ExtractInto behaves like Extract but unmarshals directly into dst (a
// pointer to a role-shaped struct), so callers get typed output without an
// intermediate map round-trip.
func ExtractInto(text string, dst interface{}) error {
	raw, err := extractRaw(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return malformed(text, "extracted text does not match expected shape: "+err.Error())
	}
	return nil
}

// extractRaw strips a leading fence (if present) and returns the
// bytes of the first balanced top-level {...} object in the remaining text.
func extractRaw(text string) ([]byte, error) {
	body := stripLeadingFence(text)

	inString := false
	escaped := false
	depth := 0
	start := -1

	for i, r := range body {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}

		switch r {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					return []byte(body[start : i+len("}")]), nil
				}
			}
		}
	}

	return nil, malformed(text, "no complete top-level JSON object found")
}

// stripLeadingFence removes a leading triple-backtick fence (with an
// optional language tag) and its matching trailing fence, if the first
// non-whitespace token in text is a fence.
func stripLeadingFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return text
	}

	rest := trimmed[3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		// Drop the optional language tag line (e.g. "json").
		rest = rest[nl+1:]
	}
	if end := strings.LastIndex(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}

func malformed(raw, message string) *aaverr.Error {
	diag := raw
	if len(diag) > maxDiagnosticLen {
		diag = diag[:maxDiagnosticLen] + "...(truncated)"
	}
	return aaverr.New(aaverr.KindMalformedAgentOutput, "", message+": "+diag, nil)
}
