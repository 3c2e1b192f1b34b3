package throttle

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/vnykmshr/nexus/pkg/common/errors"
)

// Throttle gates dispatches with a token bucket. Each dispatch takes one
// token; tokens refill at Rate per second up to Burst.
type Throttle interface {
	// Allow reports whether a dispatch may start now. It does not block.
	Allow() bool

	// Wait blocks until a dispatch may start or ctx is done.
	Wait(ctx context.Context) error

	// Tokens returns the number of tokens currently available.
	Tokens() float64

	// Rate returns the refill rate in tokens per second.
	Rate() float64

	// Burst returns the bucket capacity.
	Burst() int
}

// Clock provides the current time. It can be mocked for testing.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Config holds configuration options for creating a Throttle.
type Config struct {
	// Rate is the number of dispatches allowed per second. Must be positive.
	Rate float64

	// Burst is the number of dispatches that may start back to back.
	// If zero, the rate rounded up is used.
	Burst int

	// Clock provides the current time. If nil, the system clock is used.
	Clock Clock
}

// tokenBucket implements Throttle. Tokens may go negative while waiters hold
// reservations; the debt is repaid by refill.
type tokenBucket struct {
	mu         sync.Mutex
	rate       float64
	burst      int
	tokens     float64
	lastUpdate time.Time
	clock      Clock
}

// NewSafe creates a full throttle allowing rate dispatches per second.
func NewSafe(rate float64, burst int) (Throttle, error) {
	return NewWithConfigSafe(Config{Rate: rate, Burst: burst})
}

// NewWithConfigSafe creates a throttle, returning a ValidationError for bad settings.
func NewWithConfigSafe(config Config) (Throttle, error) {
	if config.Rate <= 0 || math.IsInf(config.Rate, 0) || math.IsNaN(config.Rate) {
		return nil, errors.NewValidationError("throttle", "rate", config.Rate, "rate must be a positive finite number").
			WithHint("disable throttling instead of passing zero")
	}
	if config.Burst < 0 {
		return nil, errors.NewValidationError("throttle", "burst", config.Burst, "burst cannot be negative")
	}
	if config.Burst == 0 {
		config.Burst = int(math.Ceil(config.Rate))
	}
	if config.Clock == nil {
		config.Clock = systemClock{}
	}

	return &tokenBucket{
		rate:       config.Rate,
		burst:      config.Burst,
		tokens:     float64(config.Burst),
		lastUpdate: config.Clock.Now(),
		clock:      config.Clock,
	}, nil
}

// Allow takes a token if one is available now.
func (tb *tokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(tb.clock.Now())
	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// Wait reserves a token and sleeps until it is due. A cancelled wait returns
// the token.
func (tb *tokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	delay := tb.reserve()
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		tb.release()
		return ctx.Err()
	}
}

func (tb *tokenBucket) Tokens() float64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(tb.clock.Now())
	return tb.tokens
}

func (tb *tokenBucket) Rate() float64 { return tb.rate }

func (tb *tokenBucket) Burst() int { return tb.burst }

// reserve takes one token, possibly on credit, and returns how long the
// caller must wait before using it.
func (tb *tokenBucket) reserve() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(tb.clock.Now())
	tb.tokens--
	if tb.tokens >= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) * -tb.tokens / tb.rate)
}

func (tb *tokenBucket) release() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(tb.clock.Now())
	tb.tokens = math.Min(tb.tokens+1, float64(tb.burst))
}

// refill adds tokens for the time elapsed since the last update.
func (tb *tokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastUpdate)
	if elapsed <= 0 {
		return
	}
	tb.tokens = math.Min(tb.tokens+elapsed.Seconds()*tb.rate, float64(tb.burst))
	tb.lastUpdate = now
}
