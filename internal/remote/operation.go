// Package remote provides the resilient outbound-call layer: each
// remote method is wrapped in an Operation that applies a per-call
// timeout and a process-wide circuit breaker before reaching the
// transport.
package remote

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"

	"github.com/techblueera/be-health-service-sub001/internal/models"
)

// StateChangeHook is notified on every breaker state transition.
type StateChangeHook func(operation, from, to string)

// BreakerConfig holds the circuit breaker tuning for one operation.
type BreakerConfig struct {
	// Timeout bounds a single transport attempt.
	Timeout time.Duration
	// ErrorThreshold is the failure ratio (0..1) over the rolling
	// window that trips the breaker.
	ErrorThreshold float64
	// MinRequests is the minimum request volume in the window before
	// the threshold is evaluated.
	MinRequests uint32
	// Window is the rolling window over which counts accumulate.
	Window time.Duration
	// Cooldown is how long the breaker stays open before admitting a
	// single half-open probe.
	Cooldown time.Duration
	// IgnoreError marks domain errors (not-found, invalid-argument)
	// that are returned to the caller but never counted as failures.
	IgnoreError func(error) bool
	// OnStateChange is an optional observability hook.
	OnStateChange StateChangeHook
}

// Validate applies defaults and checks the configuration.
func (c *BreakerConfig) withDefaults() BreakerConfig {
	out := *c
	if out.Timeout <= 0 {
		out.Timeout = 5 * time.Second
	}
	if out.ErrorThreshold <= 0 || out.ErrorThreshold > 1 {
		out.ErrorThreshold = 0.5
	}
	if out.MinRequests == 0 {
		out.MinRequests = 5
	}
	if out.Window <= 0 {
		out.Window = 30 * time.Second
	}
	if out.Cooldown <= 0 {
		out.Cooldown = 15 * time.Second
	}
	if out.IgnoreError == nil {
		out.IgnoreError = DefaultIgnore
	}
	return out
}

// DefaultIgnore treats not-found and validation outcomes as domain
// errors rather than transport failures.
func DefaultIgnore(err error) bool {
	return models.IsNotFoundError(err) || models.IsValidationError(err)
}

// Operation binds one outbound remote method to a timeout and a
// circuit breaker. The breaker state is owned by the Operation and
// lives for the life of the process.
type Operation[Req any, Resp any] struct {
	name    string
	timeout time.Duration
	call    func(context.Context, Req) (Resp, error)
	breaker *gobreaker.CircuitBreaker[Resp]
}

// NewOperation wraps call as a breaker-bound operation named name.
func NewOperation[Req any, Resp any](name string, cfg BreakerConfig, call func(context.Context, Req) (Resp, error)) *Operation[Req, Resp] {
	cfg = cfg.withDefaults()

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1, // single half-open probe
		Interval:    cfg.Window,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.ErrorThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || cfg.IgnoreError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("operation", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
			if cfg.OnStateChange != nil {
				cfg.OnStateChange(name, from.String(), to.String())
			}
		},
	}

	return &Operation[Req, Resp]{
		name:    name,
		timeout: cfg.Timeout,
		call:    call,
		breaker: gobreaker.NewCircuitBreaker[Resp](settings),
	}
}

// Name returns the bound method name.
func (o *Operation[Req, Resp]) Name() string {
	return o.name
}

// Invoke executes the bound call through the breaker with the
// configured timeout. An open breaker fails fast without a transport
// attempt; ignored domain errors pass through unchanged.
func (o *Operation[Req, Resp]) Invoke(ctx context.Context, req Req) (Resp, error) {
	resp, err := o.breaker.Execute(func() (Resp, error) {
		callCtx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()
		return o.call(callCtx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			var zero Resp
			return zero, models.NewUpstreamUnavailableError(o.name, err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			var zero Resp
			return zero, models.NewUpstreamUnavailableError(o.name, err)
		}
		return resp, err
	}
	return resp, nil
}
