package embed

import (
	"context"
	"errors"
	"time"

	"github.com/ppiankov/politikcred/internal/worker"
)

// ThrottledProvider paces upstream calls: a per-provider rate limit, a fixed
// pause after each wait, and a timeout on every call.
type ThrottledProvider struct {
	next    Provider
	limiter *worker.Limiter
	delay   time.Duration
	timeout time.Duration
}

// NewThrottledProvider wraps next. The limiter is keyed by provider name so
// several wrappers over the same upstream share one budget.
func NewThrottledProvider(next Provider, limiter *worker.Limiter, delay, timeout time.Duration) *ThrottledProvider {
	return &ThrottledProvider{
		next:    next,
		limiter: limiter,
		delay:   delay,
		timeout: timeout,
	}
}

// Name returns the wrapped provider name
func (p *ThrottledProvider) Name() string {
	return p.next.Name()
}

// Embed waits for the limiter and calls the wrapped provider under a timeout
func (p *ThrottledProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := p.limiter.WaitWithDelay(ctx, p.next.Name(), p.delay); err != nil {
		return nil, unavailable(p.Name(), err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	vec, err := p.next.Embed(ctx, text)
	if err != nil && !errors.Is(err, ErrUnavailable) {
		return nil, unavailable(p.Name(), err)
	}
	return vec, err
}
