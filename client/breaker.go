package client

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
)

// breakerThreshold is the consecutive-failure count that opens a host's
// breaker.
const breakerThreshold = 5

// BreakerClient wraps a JSONGetter with per-host circuit breakers. When an
// upstream has failed repeatedly, further requests to it fail fast instead
// of burning executor slots on a host that is down.
type BreakerClient struct {
	inner    JSONGetter
	breakers map[string]*circuit.Breaker
	mu       sync.RWMutex
}

// NewBreakerClient creates a circuit breaker wrapper for a client.
func NewBreakerClient(inner JSONGetter) *BreakerClient {
	return &BreakerClient{
		inner:    inner,
		breakers: make(map[string]*circuit.Breaker),
	}
}

// getBreaker returns the breaker for a host, creating it on first use.
func (bc *BreakerClient) getBreaker(host string) *circuit.Breaker {
	bc.mu.RLock()
	breaker, exists := bc.breakers[host]
	bc.mu.RUnlock()

	if exists {
		return breaker
	}

	bc.mu.Lock()
	defer bc.mu.Unlock()

	// Another goroutine may have created it between the two locks.
	if breaker, exists := bc.breakers[host]; exists {
		return breaker
	}

	// The breaker trips once a host fails breakerThreshold times in a
	// row and re-closes on an exponential schedule, so a dead upstream
	// is probed progressively less often.
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	opts := &circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(breakerThreshold),
	}
	breaker = circuit.NewBreakerWithOptions(opts)

	bc.breakers[host] = breaker
	return breaker
}

// GetJSON issues the request through the breaker for the URL's host.
func (bc *BreakerClient) GetJSON(ctx context.Context, requestURL string, out any) error {
	host := extractHost(requestURL)
	breaker := bc.getBreaker(host)

	if !breaker.Ready() {
		return fmt.Errorf("circuit breaker open for host %s", host)
	}

	return breaker.Call(func() error {
		return bc.inner.GetJSON(ctx, requestURL, out)
	}, 0)
}

// extractHost derives the breaker key for a request URL. Anything that
// does not parse to a host keys on the raw string, which at worst gives a
// malformed URL its own breaker.
func extractHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return parsed.Host
}

// BreakerState returns the current state of each host's breaker.
func (bc *BreakerClient) BreakerState() map[string]string {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	states := make(map[string]string)
	for host, breaker := range bc.breakers {
		if breaker.Tripped() {
			states[host] = "open"
		} else {
			states[host] = "closed"
		}
	}
	return states
}
