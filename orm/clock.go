package orm

import (
	"context"
	"time"
)

// Clock provides the current time. Implementations can return fixed
// times for deterministic testing.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

type clockKey struct{}

// WithClock returns a child context carrying the given Clock.
// Job timestamps (created, updated, completed, timeout) are taken from
// this Clock instead of time.Now().
func WithClock(ctx context.Context, c Clock) context.Context {
	return context.WithValue(ctx, clockKey{}, c)
}

// Now returns the current time from the Clock in ctx, or time.Now()
// if no Clock is present. The result is truncated to microseconds, the
// precision both dialects store.
func Now(ctx context.Context) time.Time {
	if c, ok := ctx.Value(clockKey{}).(Clock); ok {
		return c.Now().Truncate(time.Microsecond)
	}
	return time.Now().Truncate(time.Microsecond)
}
