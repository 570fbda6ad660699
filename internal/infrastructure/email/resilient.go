package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"library-lending-backend/internal/config"
	"library-lending-backend/internal/metrics"
	"library-lending-backend/pkg/logger"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const breakerName = "smtp-mailer"

var ErrMailerUnavailable = errors.New("mailer unavailable")

// ResilientMailer: rate limit + circuit breaker quanh một Mailer
type ResilientMailer struct {
	next    Mailer
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[struct{}]
}

func NewResilientMailer(next Mailer, cfg config.NotificationConfig) *ResilientMailer {
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	timeout := cfg.BreakerTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	limit := rate.Inf
	if cfg.SendRatePerSecond > 0 {
		limit = rate.Limit(cfg.SendRatePerSecond)
	}
	burst := cfg.SendBurst
	if burst < 1 {
		burst = 1
	}

	metrics.MailerCircuitState.Set(0)

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    0, // counts chỉ reset khi đổi state
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Mailer circuit breaker state change", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			metrics.MailerCircuitState.Set(stateToFloat(to))
		},
	})

	return &ResilientMailer{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
		cb:      cb,
	}
}

func (m *ResilientMailer) Send(ctx context.Context, msg Message) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	_, err := m.cb.Execute(func() (struct{}, error) {
		return struct{}{}, m.next.Send(ctx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrMailerUnavailable, err)
	}
	return err
}

func (m *ResilientMailer) State() gobreaker.State {
	return m.cb.State()
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
