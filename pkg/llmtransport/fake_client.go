package llmtransport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/codeready-toolchain/aav3/pkg/aaverr"
)

// FakeLLMClient is a scripted LLMClient for tests and local runs that never
// touches the network. Responses are consumed in call order; once the
// script is exhausted, Call returns errExhausted.
type FakeLLMClient struct {
	mu        sync.Mutex
	responses []FakeResponse
	next      int
	calls     []FakeCall
}

// FakeResponse is one scripted answer, or a scripted error.
type FakeResponse struct {
	Text string
	Err  error
}

// FakeCall records one observed Call invocation for assertions.
type FakeCall struct {
	SystemPrompt string
	UserPrompt   string
	Timeout      time.Duration
}

// NewFakeLLMClient returns a client that yields each text in order, one per
// Call.
func NewFakeLLMClient(texts ...string) *FakeLLMClient {
	responses := make([]FakeResponse, len(texts))
	for i, t := range texts {
		responses[i] = FakeResponse{Text: t}
	}
	return &FakeLLMClient{responses: responses}
}

// NewScriptedLLMClient returns a client driven by an explicit response
// script, allowing individual calls to be scripted as errors (e.g. to
// exercise the Orchestrator's retry-on-malformed-output path).
func NewScriptedLLMClient(script ...FakeResponse) *FakeLLMClient {
	return &FakeLLMClient{responses: script}
}

// Call implements LLMClient.
func (f *FakeLLMClient) Call(_ context.Context, systemPrompt, userPrompt string, timeout time.Duration, _ ...CallOption) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, FakeCall{SystemPrompt: systemPrompt, UserPrompt: userPrompt, Timeout: timeout})

	if f.next >= len(f.responses) {
		return "", aaverr.New(aaverr.KindLLMTransport, "", fmt.Sprintf("fake llm client script exhausted after %d calls", f.next), nil)
	}
	r := f.responses[f.next]
	f.next++
	if r.Err != nil {
		return "", r.Err
	}
	return r.Text, nil
}

// Close implements LLMClient.
func (f *FakeLLMClient) Close() error { return nil }

// Calls returns a copy of every observed call, in order.
func (f *FakeLLMClient) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeCall, len(f.calls))
	copy(out, f.calls)
	return out
}
