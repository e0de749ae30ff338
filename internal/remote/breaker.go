package remote

import (
	"sync"
	"time"
)

// BreakerState is the state of one endpoint breaker.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// BreakerConfig tunes the per-endpoint breaker. A zero FailureThreshold
// disables breaking.
type BreakerConfig struct {
	// FailureThreshold consecutive failures open the breaker.
	FailureThreshold int
	// SuccessThreshold successes while half-open close it again.
	SuccessThreshold int
	// Cooldown is how long the breaker stays open before probing.
	Cooldown time.Duration
	// HalfOpenMaxRequests bounds concurrent trial requests while half-open.
	HalfOpenMaxRequests int
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold:    5,
		SuccessThreshold:    2,
		Cooldown:            30 * time.Second,
		HalfOpenMaxRequests: 3,
	}
}

// Breaker guards one remote endpoint.
type Breaker struct {
	cfg BreakerConfig
	now func() time.Time

	mu            sync.Mutex
	state         BreakerState
	failures      int
	successes     int
	halfOpen      int
	lastStateTime time.Time
}

// NewBreaker starts Closed.
func NewBreaker(cfg BreakerConfig) *Breaker {
	b := &Breaker{cfg: cfg, now: time.Now}
	b.lastStateTime = b.now()
	return b
}

// Execute runs fn unless the breaker is open. Only failures for which
// counts returns true move the breaker; a 404 says nothing about the
// endpoint's health.
func (b *Breaker) Execute(fn func() error, counts func(error) bool) error {
	if b.cfg.FailureThreshold <= 0 {
		return fn()
	}

	b.mu.Lock()
	b.transition()
	switch b.state {
	case BreakerOpen:
		b.mu.Unlock()
		return ErrCircuitOpen
	case BreakerHalfOpen:
		if b.halfOpen >= b.cfg.HalfOpenMaxRequests {
			b.mu.Unlock()
			return ErrCircuitOpen
		}
		b.halfOpen++
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil && (counts == nil || counts(err)) {
		b.onFailure()
	} else {
		b.onSuccess()
	}
	return err
}

func (b *Breaker) transition() {
	now := b.now()
	switch b.state {
	case BreakerOpen:
		if now.Sub(b.lastStateTime) >= b.cfg.Cooldown {
			b.state = BreakerHalfOpen
			b.halfOpen = 0
			b.successes = 0
			b.lastStateTime = now
		}
	case BreakerHalfOpen:
		if b.successes >= b.cfg.SuccessThreshold {
			b.state = BreakerClosed
			b.failures = 0
			b.lastStateTime = now
		}
	case BreakerClosed:
		if b.cfg.FailureThreshold > 0 && b.failures >= b.cfg.FailureThreshold {
			b.state = BreakerOpen
			b.lastStateTime = now
		}
	}
}

func (b *Breaker) onFailure() {
	b.failures++
	if b.state == BreakerHalfOpen {
		b.state = BreakerOpen
		b.halfOpen = 0
		b.lastStateTime = b.now()
	}
}

func (b *Breaker) onSuccess() {
	b.failures = 0
	if b.state == BreakerHalfOpen {
		b.successes++
		if b.halfOpen > 0 {
			b.halfOpen--
		}
	}
}

// State reports the current state, applying any due transition.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transition()
	return b.state
}

func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = BreakerClosed
	b.failures = 0
	b.successes = 0
	b.halfOpen = 0
	b.lastStateTime = b.now()
}
