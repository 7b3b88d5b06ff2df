package envprobe

import (
	"context"
	"sync"
)

// Prober runs the capability probe at most once per process lifetime
// (SPEC_FULL.md supplement: host facts like "is Docker installed" don't
// change mid-run, so repeated sessions in one long-lived process reuse the
// first probe instead of re-shelling out to every tool on every session).
type Prober struct {
	once   sync.Once
	cached Capabilities
	detect func(context.Context) Capabilities // overridable for tests
}

// NewProber returns a Prober that uses the real os/exec-based detections.
func NewProber() *Prober {
	return &Prober{detect: detect}
}

// Probe returns the memoized Capabilities, running the real detection on
// the first call only.
func (p *Prober) Probe(ctx context.Context) Capabilities {
	p.once.Do(func() {
		if p.detect == nil {
			p.detect = detect
		}
		p.cached = p.detect(ctx)
	})
	return p.cached
}
