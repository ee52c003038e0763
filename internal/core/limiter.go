package core

import "context"

// DefaultConcurrency is the default cap on in-flight upstream requests.
const DefaultConcurrency = 10

// Limiter bounds the number of concurrently executing operations. One
// instance is shared by every pipeline in a batch run, so the cap holds
// across all packages and all three upstream sources.
type Limiter struct {
	sem chan struct{}
}

// NewLimiter creates a limiter allowing at most n concurrent operations.
// Values below 1 fall back to DefaultConcurrency.
func NewLimiter(n int) *Limiter {
	if n < 1 {
		n = DefaultConcurrency
	}
	return &Limiter{sem: make(chan struct{}, n)}
}

// Do runs fn while holding a slot. It blocks until a slot frees up or ctx
// is done. The slot is released whether fn succeeds, fails, or panics.
func (l *Limiter) Do(ctx context.Context, fn func() error) error {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l.sem }()
	return fn()
}
