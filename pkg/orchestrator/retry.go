package orchestrator

import (
	"github.com/codeready-toolchain/aav3/pkg/aaverr"
)

// retryOnce re-invokes call exactly once if its first attempt fails with
// LLMTimeout or LLMTransport (spec.md §4.7: "retry once with the same
// prompt. On second failure, end the session"). MalformedAgentOutput
// already gets its own structured-nudge retry inside pkg/agentroles, so it
// is not retried again here; a second malformed-output failure propagates
// straight through.
func retryOnce(call func() error) error {
	err := call()
	if err == nil {
		return nil
	}
	if aaverr.Is(err, aaverr.KindLLMTimeout) || aaverr.Is(err, aaverr.KindLLMTransport) {
		return call()
	}
	return err
}
