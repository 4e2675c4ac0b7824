package services

import (
	"context"
	"errors"
	"net"
	"net/http"
	"syscall"
	"time"

	"golang.org/x/oauth2"
)

// maxRetryAfter bounds how long a Retry-After header may hold up a call before it gives up instead.
const maxRetryAfter = time.Minute

// call runs fn behind the rate limiter, retrying transient failures up to maxRetries times with exponential backoff.
// Each attempt gets its own request timeout.
func (s *SpotifyService) call(ctx context.Context, op string, fn func(context.Context) error) error {
	delay := s.backoff

	for attempt := 0; ; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		err := s.attempt(ctx, fn)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !isRetryable(err) {
			return err
		}
		if attempt >= s.maxRetries {
			s.logger.Warn("giving up after retries", "op", op, "retries", s.maxRetries, "error", err)
			return err
		}

		wait := delay
		if after := retryAfter(err); after > wait {
			if after > maxRetryAfter {
				s.logger.Warn("rate limited beyond retry window", "op", op, "retry_after", after)
				return err
			}
			wait = after
		}

		s.logger.Debug("retrying request", "op", op, "attempt", attempt+1, "delay", wait, "error", err)
		if err := sleep(ctx, wait); err != nil {
			return err
		}
		delay *= 2
	}
}

func (s *SpotifyService) attempt(ctx context.Context, fn func(context.Context) error) error {
	if s.timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return fn(ctx)
}

// isRetryable reports whether err is a rate limit, a server error or a transient network failure.
//
// Token endpoint rejections are permanent. A deadline here belongs to a single attempt since
// [SpotifyService.call] checks the caller's context first.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return false
	}
	if status := StatusCode(err); status != 0 {
		return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func retryAfter(err error) time.Duration {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.RetryAfter
	}
	return 0
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
