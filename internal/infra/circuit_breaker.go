package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Breaker guards an outbound dependency (the SMTP relay). After a run of
// consecutive failures it opens and rejects calls until the cool-down has
// passed, then lets probes through; enough successful probes close it again.

// BreakerState is the current position of a Breaker.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrBreakerOpen is returned by Do while the breaker rejects calls.
var ErrBreakerOpen = errors.New("circuit breaker is open")

// BreakerConfig tunes a Breaker. Zero fields take the defaults below.
type BreakerConfig struct {
	Name             string
	FailureThreshold int
	SuccessThreshold int
	CoolDown         time.Duration
}

func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		CoolDown:         60 * time.Second,
	}
}

type Breaker struct {
	mu        sync.Mutex
	cfg       BreakerConfig
	state     BreakerState
	failures  int
	successes int
	openedAt  time.Time
	now       func() time.Time
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	def := DefaultBreakerConfig(cfg.Name)
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.CoolDown <= 0 {
		cfg.CoolDown = def.CoolDown
	}
	return &Breaker{cfg: cfg, now: time.Now}
}

// State reports the current state, moving open → half-open once the
// cool-down has elapsed.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tick()
	return b.state
}

// Do runs fn unless the breaker is open.
func (b *Breaker) Do(fn func() error) error {
	if b.State() == BreakerOpen {
		return ErrBreakerOpen
	}

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failed()
		return err
	}
	b.succeeded()
	return nil
}

// tick must be called with mu held.
func (b *Breaker) tick() {
	if b.state == BreakerOpen && b.now().Sub(b.openedAt) >= b.cfg.CoolDown {
		b.moveTo(BreakerHalfOpen)
	}
}

func (b *Breaker) failed() {
	b.failures++
	switch b.state {
	case BreakerClosed:
		if b.failures >= b.cfg.FailureThreshold {
			b.moveTo(BreakerOpen)
		}
	case BreakerHalfOpen:
		b.moveTo(BreakerOpen)
	}
}

func (b *Breaker) succeeded() {
	switch b.state {
	case BreakerClosed:
		b.failures = 0
	case BreakerHalfOpen:
		b.successes++
		if b.successes >= b.cfg.SuccessThreshold {
			b.moveTo(BreakerClosed)
		}
	}
}

func (b *Breaker) moveTo(next BreakerState) {
	prev := b.state
	b.state = next
	b.failures = 0
	b.successes = 0
	if next == BreakerOpen {
		b.openedAt = b.now()
	}

	open := 0.0
	if next == BreakerOpen {
		open = 1
	}
	MailBreakerOpen.Set(open)

	log.Warn().
		Str("breaker", b.cfg.Name).
		Str("from", prev.String()).
		Str("to", next.String()).
		Msg("circuit breaker state change")
}
