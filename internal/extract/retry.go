package extract

import (
	"context"
	"errors"
	"time"

	"vavoo/internal/metrics"
	"vavoo/internal/session"
)

const (
	// DefaultRetries is the number of handshake attempts per signature request.
	DefaultRetries = 3
	// DefaultDelay is the backoff unit; attempt n waits n*DefaultDelay before the next one.
	DefaultDelay = 2 * time.Second
)

// errMissingField marks a response that decoded fine but lacked the expected field.
var errMissingField = errors.New("field missing from response")

// attemptFunc performs one handshake on s and returns the signature it found.
type attemptFunc func(ctx context.Context, s *session.Session) (string, error)

// withRetry runs attempt up to retries times. After a failed attempt n it waits
// n*delay and discards the session, so the next attempt runs on a fresh connection
// and possibly a different proxy. It never returns an error: exhaustion or
// cancellation yields ok == false.
func (v *Vavoo) withRetry(ctx context.Context, flow string, retries int, delay time.Duration, attempt attemptFunc) (string, bool) {
	if retries < 1 {
		retries = 1
	}

	for n := 1; n <= retries; n++ {
		sig, err := attempt(ctx, v.sessions.Acquire())
		if err == nil {
			metrics.SignatureAttempts.WithLabelValues(flow, metrics.ResultSuccess).Inc()
			v.log.Info("vavoo signature obtained", "flow", flow, "attempt", n)
			return sig, true
		}

		result := metrics.ResultFailure
		if errors.Is(err, errMissingField) {
			result = metrics.ResultMissing
		}
		metrics.SignatureAttempts.WithLabelValues(flow, result).Inc()
		v.log.Warn("vavoo signature attempt failed", "flow", flow, "attempt", n, "error", err)

		if n == retries {
			v.log.Error("all attempts failed for vavoo signature", "flow", flow, "attempts", retries, "error", err)
			return "", false
		}

		if err := waitBackoff(ctx, delay*time.Duration(n)); err != nil {
			v.log.Warn("vavoo signature retry cancelled", "flow", flow, "error", err)
			return "", false
		}
		v.sessions.Invalidate()
	}

	return "", false
}

func waitBackoff(ctx context.Context, d time.Duration) error {
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
