// Package ratelimiter paces outgoing requests with a channel-backed token
// bucket.
package ratelimiter

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	DefaultBucketSize = 10
	DefaultRefillRate = time.Second
)

// ErrStopped is returned by Wait once the bucket has been stopped.
var ErrStopped = errors.New("rate limiter stopped")

// TokenBucket hands out up to bucketSize tokens and refills one token every
// refillRate.
type TokenBucket struct {
	bucketSize int
	refillRate time.Duration
	tokens     chan struct{}
	ticker     *time.Ticker
	stopCh     chan struct{}
	mu         sync.RWMutex
	stopped    bool
}

// NewTokenBucket returns a full bucket and starts its refill goroutine.
// Callers must Stop it.
func NewTokenBucket(bucketSize int, refillRate time.Duration) *TokenBucket {
	if bucketSize <= 0 {
		bucketSize = DefaultBucketSize
	}
	if refillRate <= 0 {
		refillRate = DefaultRefillRate
	}

	tb := &TokenBucket{
		bucketSize: bucketSize,
		refillRate: refillRate,
		tokens:     make(chan struct{}, bucketSize),
		ticker:     time.NewTicker(refillRate),
		stopCh:     make(chan struct{}),
	}
	for i := 0; i < bucketSize; i++ {
		tb.tokens <- struct{}{}
	}

	go tb.refill()
	return tb
}

// PerMinute returns a bucket allowing n requests per minute with a burst of n.
func PerMinute(n int) *TokenBucket {
	if n <= 0 {
		n = DefaultBucketSize
	}
	return NewTokenBucket(n, time.Minute/time.Duration(n))
}

func (tb *TokenBucket) refill() {
	for {
		select {
		case <-tb.ticker.C:
			select {
			case tb.tokens <- struct{}{}:
			default:
			}
		case <-tb.stopCh:
			return
		}
	}
}

func (tb *TokenBucket) isStopped() bool {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	return tb.stopped
}

// Allow takes a token if one is available without blocking.
func (tb *TokenBucket) Allow() bool {
	if tb.isStopped() {
		return false
	}
	select {
	case <-tb.tokens:
		return true
	default:
		return false
	}
}

// Wait blocks until a token is available or ctx is done.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	if tb.isStopped() {
		return ErrStopped
	}
	select {
	case <-tb.tokens:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop halts refilling. It is safe to call more than once.
func (tb *TokenBucket) Stop() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.stopped {
		return
	}
	tb.stopped = true
	tb.ticker.Stop()
	close(tb.stopCh)
}

func (tb *TokenBucket) AvailableTokens() int { return len(tb.tokens) }

func (tb *TokenBucket) BucketSize() int { return tb.bucketSize }

func (tb *TokenBucket) RefillRate() time.Duration { return tb.refillRate }
