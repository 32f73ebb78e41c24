package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/techblueera/be-health-service-sub001/internal/models"
)

func failingConfig() BreakerConfig {
	return BreakerConfig{
		Timeout:        time.Second,
		ErrorThreshold: 0.5,
		MinRequests:    2,
		Window:         time.Minute,
		Cooldown:       100 * time.Millisecond,
	}
}

func TestOperation_PassesThroughSuccess(t *testing.T) {
	op := NewOperation("test.success", failingConfig(),
		func(ctx context.Context, req string) (string, error) {
			return "hello " + req, nil
		})

	resp, err := op.Invoke(context.Background(), "world")

	assert.NoError(t, err)
	assert.Equal(t, "hello world", resp)
}

func TestOperation_TripsAfterFailureThreshold(t *testing.T) {
	calls := 0
	transportErr := errors.New("connection refused")
	op := NewOperation("test.trips", failingConfig(),
		func(ctx context.Context, req string) (string, error) {
			calls++
			return "", transportErr
		})

	// Two failures reach the minimum volume and trip the breaker.
	for i := 0; i < 2; i++ {
		_, err := op.Invoke(context.Background(), "req")
		assert.ErrorIs(t, err, transportErr)
	}

	// The open breaker fails fast without touching the transport.
	_, err := op.Invoke(context.Background(), "req")
	assert.True(t, models.IsUpstreamUnavailableError(err))
	assert.Equal(t, 2, calls)
}

func TestOperation_HalfOpenProbeAfterCooldown(t *testing.T) {
	failing := true
	op := NewOperation("test.halfopen", failingConfig(),
		func(ctx context.Context, req string) (string, error) {
			if failing {
				return "", errors.New("boom")
			}
			return "ok", nil
		})

	for i := 0; i < 2; i++ {
		op.Invoke(context.Background(), "req")
	}
	_, err := op.Invoke(context.Background(), "req")
	assert.True(t, models.IsUpstreamUnavailableError(err))

	// After the cooldown a single probe is admitted; its success
	// closes the breaker again.
	failing = false
	time.Sleep(150 * time.Millisecond)

	resp, err := op.Invoke(context.Background(), "req")
	assert.NoError(t, err)
	assert.Equal(t, "ok", resp)

	resp, err = op.Invoke(context.Background(), "req")
	assert.NoError(t, err)
	assert.Equal(t, "ok", resp)
}

func TestOperation_IgnoredErrorsDoNotTrip(t *testing.T) {
	calls := 0
	op := NewOperation("test.ignored", failingConfig(),
		func(ctx context.Context, req string) (*models.Seller, error) {
			calls++
			return nil, models.NewNotFoundError("seller", req)
		})

	// Far more domain misses than the threshold would allow for
	// transport failures; every call still reaches the transport.
	for i := 0; i < 10; i++ {
		_, err := op.Invoke(context.Background(), "missing")
		assert.True(t, models.IsNotFoundError(err))
	}
	assert.Equal(t, 10, calls)
}

func TestOperation_TimeoutMapsToUpstreamUnavailable(t *testing.T) {
	cfg := failingConfig()
	cfg.Timeout = 20 * time.Millisecond

	op := NewOperation("test.timeout", cfg,
		func(ctx context.Context, req string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})

	_, err := op.Invoke(context.Background(), "slow")

	assert.True(t, models.IsUpstreamUnavailableError(err))
}

func TestOperation_StateChangeHookFires(t *testing.T) {
	var transitions []string
	cfg := failingConfig()
	cfg.OnStateChange = func(operation, from, to string) {
		transitions = append(transitions, from+"->"+to)
	}

	op := NewOperation("test.hook", cfg,
		func(ctx context.Context, req string) (string, error) {
			return "", errors.New("boom")
		})

	for i := 0; i < 3; i++ {
		op.Invoke(context.Background(), "req")
	}

	assert.Contains(t, transitions, "closed->open")
}
