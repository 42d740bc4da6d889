package source

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/voltlead/leadsync-cli/internal/resilience"
)

// RateLimited wraps a Source with a token-bucket limit, protecting
// shared drives and future remote sheet APIs from batch sync bursts.
type RateLimited struct {
	inner   Source
	limiter *rate.Limiter
}

// NewRateLimited returns the source limited to rps operations per
// second. A burst equal to the integer portion of rps is allowed.
// Non-positive rps disables limiting.
func NewRateLimited(inner Source, rps float64) *RateLimited {
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
	}
	return &RateLimited{inner: inner, limiter: limiter}
}

func (s *RateLimited) ReadRows(ctx context.Context, ref string) ([][]string, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.ReadRows(ctx, ref)
}

func (s *RateLimited) WriteRow(ctx context.Context, ref string, rowNum int, cells []string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	return s.inner.WriteRow(ctx, ref, rowNum, cells)
}

func (s *RateLimited) wait(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "source: rate limit wait")
	}
	return nil
}

// Retrying wraps a Source with transient-failure retries. Categorized
// errors are permanent and pass through on the first attempt.
type Retrying struct {
	inner Source
	cfg   resilience.RetryConfig
}

// NewRetrying returns the source with retry behavior per cfg.
func NewRetrying(inner Source, cfg resilience.RetryConfig) *Retrying {
	if cfg.ShouldRetry == nil {
		cfg.ShouldRetry = func(err error) bool {
			if eris.Is(err, ErrBadReference) || eris.Is(err, ErrUnauthorized) || eris.Is(err, ErrNotFound) {
				return false
			}
			return resilience.IsTransient(err)
		}
	}
	return &Retrying{inner: inner, cfg: cfg}
}

func (s *Retrying) ReadRows(ctx context.Context, ref string) ([][]string, error) {
	return resilience.DoVal(ctx, s.cfg, func(ctx context.Context) ([][]string, error) {
		return s.inner.ReadRows(ctx, ref)
	})
}

func (s *Retrying) WriteRow(ctx context.Context, ref string, rowNum int, cells []string) error {
	return resilience.Do(ctx, s.cfg, func(ctx context.Context) error {
		return s.inner.WriteRow(ctx, ref, rowNum, cells)
	})
}
