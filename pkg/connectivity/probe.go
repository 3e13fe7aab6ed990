// Package connectivity reports whether the network path to the authoritative
// remote is currently usable. Probes answer a plain yes/no; a probe that
// cannot decide answers no, so an unreachable or misbehaving check steers
// callers onto their offline path rather than into a doomed remote call.
package connectivity

import "context"

// Probe reports current network reachability.
type Probe interface {
	// IsConnected must return within a bounded time. An inconclusive check
	// resolves to false.
	IsConnected(ctx context.Context) bool
}

// StaticProbe always answers with a fixed value. Useful for wiring callers
// that are permanently online, and in tests.
type StaticProbe bool

// IsConnected returns the fixed answer.
func (p StaticProbe) IsConnected(_ context.Context) bool {
	return bool(p)
}
