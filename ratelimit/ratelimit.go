package ratelimit

import "time"

// Limiter bounds request volume with strict fixed-window counters keyed by
// (scope, identifier). Implementations hash the raw identifier before using
// it as a key; raw IPs and tokens are never stored or logged.
//
// The in-memory implementation scopes limiting to one server instance; the
// Redis implementation shares windows across instances.
type Limiter interface {
	// Consume takes one slot from the window for (scope, rawIdentifier).
	// It reports whether the request is allowed. A fresh or elapsed window
	// restarts at count=1 and always allows.
	Consume(scope string, rawIdentifier string, maxInWindow int, window time.Duration) bool
}

// Scopes for the drop endpoints. Read and write paths are limited
// independently per requester IP and per target token.
const (
	ScopeDropGetIP     = "drop-get-ip"
	ScopeDropGetToken  = "drop-get-token"
	ScopeDropPostIP    = "drop-post-ip"
	ScopeDropPostToken = "drop-post-token"
)

// Default ceilings, all per minute.
const (
	MaxGetsPerIPDefault     = 120
	MaxPostsPerIPDefault    = 20
	MaxGetsPerTokenDefault  = 300
	MaxPostsPerTokenDefault = 40
)

// Window is the fixed window length for all drop scopes. Requests straddling
// a window boundary can reach up to twice the ceiling in a burst; a known
// limitation of fixed windows, accepted for simplicity.
const Window = time.Minute
