// Package llmtransport implements the LLMClient call contract (spec.md
// §4.1): one operation, (system prompt, user prompt, timeout) → text.
//
// The vendor SDK itself is explicitly out of scope for AAv3 (spec.md §1);
// this package instead gives the contract a concrete, swappable transport:
// a gRPC-based client for production use, grounded on
// gRPC-to-LLM-service design, and an in-memory fake for tests.
package llmtransport

import (
	"context"
	"time"
)

// LLMClient is the contract every Agent role function calls through.
// Implementations choose vendor and model at construction time and never
// mutate SharedMemory or the filesystem (spec.md §4.1).
type LLMClient interface {
	// Call sends one (system, user) prompt pair and returns the raw
	// textual response, trimmed of leading/trailing whitespace.
	Call(ctx context.Context, systemPrompt, userPrompt string, timeout time.Duration, opts ...CallOption) (string, error)

	// Close releases any held transport resources.
	Close() error
}

// CallOption customizes a single Call invocation.
type CallOption func(*callConfig)

type callConfig struct {
	maxTokens int
}

// WithMaxTokens raises max_tokens for this call only, overriding the
// client's default (spec.md §4.1: "caller may raise it per call").
func WithMaxTokens(n int) CallOption {
	return func(c *callConfig) { c.maxTokens = n }
}

func resolveCallConfig(defaultMaxTokens int, opts []CallOption) callConfig {
	cfg := callConfig{maxTokens: defaultMaxTokens}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

const defaultMaxTokens = 4000
