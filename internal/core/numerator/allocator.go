// Package numerator provides the domain contract for per-key unit counters.
// Implementations live in infrastructure layer.
package numerator

import (
	"context"
)

// Allocator issues strictly increasing counter values per key.
//
// Next is atomic under concurrent callers: every call returns a value no
// other call for the same key has received. Values are never reused, even
// when the caller fails after receiving one.
type Allocator interface {
	// Next returns the next counter value for key, starting at 1.
	Next(ctx context.Context, key string) (int64, error)

	// Current returns the last value issued for key, or 0 when none.
	Current(ctx context.Context, key string) (int64, error)
}
