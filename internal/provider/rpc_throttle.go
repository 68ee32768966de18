package provider

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultRPCBurst is how many calls a chain may make back to back.
	DefaultRPCBurst = 10
	// DefaultRPCRefill is how often one call is credited back to a chain.
	DefaultRPCRefill = 200 * time.Millisecond
)

// RPCThrottle is a token bucket per chain id so one slow or strict public
// endpoint never starves the others.
type RPCThrottle struct {
	mu      sync.Mutex
	burst   int
	refill  time.Duration
	buckets map[int64]*tokenBucket
}

type tokenBucket struct {
	tokens     int
	lastRefill time.Time
}

func NewRPCThrottle(burst int, refill time.Duration) *RPCThrottle {
	if burst <= 0 {
		burst = DefaultRPCBurst
	}
	if refill <= 0 {
		refill = DefaultRPCRefill
	}
	return &RPCThrottle{
		burst:   burst,
		refill:  refill,
		buckets: make(map[int64]*tokenBucket),
	}
}

// Wait blocks until chainID has a call available or ctx is done.
func (t *RPCThrottle) Wait(ctx context.Context, chainID int64) error {
	for {
		t.mu.Lock()
		b := t.bucket(chainID)
		t.top(b)
		if b.tokens > 0 {
			b.tokens--
			t.mu.Unlock()
			return nil
		}
		t.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(t.refill):
		}
	}
}

func (t *RPCThrottle) bucket(chainID int64) *tokenBucket {
	b, ok := t.buckets[chainID]
	if !ok {
		b = &tokenBucket{tokens: t.burst, lastRefill: time.Now()}
		t.buckets[chainID] = b
	}
	return b
}

func (t *RPCThrottle) top(b *tokenBucket) {
	credits := int(time.Since(b.lastRefill) / t.refill)
	if credits <= 0 {
		return
	}
	b.tokens = min(b.tokens+credits, t.burst)
	b.lastRefill = b.lastRefill.Add(time.Duration(credits) * t.refill)
}
