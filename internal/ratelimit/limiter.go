// Package ratelimit provides a fixed-window request counter keyed by an
// arbitrary string. The Store interface is dependency-injected so a
// single-process in-memory counter can be swapped for a shared Redis counter
// when running multiple instances.
package ratelimit

import (
	"context"
	"time"
)

// Result reports the outcome of a single budget check.
type Result struct {
	Allowed   bool
	Remaining int       // requests left in the current window, 0 when denied
	ResetAt   time.Time // when the current window rolls over
}

// Store counts requests per key in fixed windows. Check consumes one unit of
// the key's budget and reports whether the request is still within limit.
// Implementations must make the increment atomic.
type Store interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}
