// Package retry wraps fallible remote operations with bounded exponential
// backoff. Classification of transient vs. permanent failures is a pure
// function of the error, injected by the call site; unclassified errors are
// never retried.
package retry

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// Backoff computes the delay before a given retry attempt:
// Base * 2^(attempt-1), clamped to [Min, Max]. A zero Base means one second.
type Backoff struct {
	Base time.Duration
	Min  time.Duration
	Max  time.Duration
}

// Delay returns the backoff for the given 1-based attempt number. It is
// non-decreasing in attempt until Max is reached, then clamps.
func (b Backoff) Delay(attempt int) time.Duration {
	base := b.Base
	if base <= 0 {
		base = time.Second
	}
	if attempt < 1 {
		attempt = 1
	}
	shift := attempt - 1
	if shift > 30 {
		shift = 30
	}
	d := base << uint(shift)
	if d < base {
		// shift overflow
		d = b.Max
	}
	if b.Min > 0 && d < b.Min {
		d = b.Min
	}
	if b.Max > 0 && d > b.Max {
		d = b.Max
	}
	return d
}

// Policy is the per-call-site attempt budget plus backoff bounds. Different
// operations need different aggressiveness: a five-minute conversion
// subprocess is retried less eagerly than a thirty-second API call.
type Policy struct {
	Attempts int
	Backoff  Backoff
}

// Classifier reports whether a failed operation should be retried.
// Implementations must be pure: the same error always yields the same answer.
type Classifier func(err error) bool

// Keyword lists shared by the call sites. Matching is substring-based on the
// lowercased error message, which is fragile against upstream wording changes
// but preserved for compatibility; the Classifier indirection keeps it
// swappable for structured error codes.
var (
	// HTTPPermanent covers failures of remote API calls that retrying cannot fix.
	HTTPPermanent = []string{
		"invalid url",
		"not found",
		"404",
		"403",
		"forbidden",
		"unauthorized",
		"invalid api key",
		"api key not found",
	}

	// HTTPTransient covers remote API failures expected to resolve on retry.
	HTTPTransient = []string{
		"connection error",
		"timeout",
		"network",
		"503",
		"502",
		"500",
		"429",
		"rate limit",
		"quota exceeded",
	}

	// FilePermanent covers filesystem and document-format failures.
	FilePermanent = []string{
		"invalid pdf",
		"corrupted",
		"not a pdf",
		"permission denied",
		"no such file",
		"invalid format",
	}

	// FileTransient covers local resource pressure and flaky I/O.
	FileTransient = []string{
		"connection error",
		"timeout",
		"network",
		"temporary failure",
		"memory",
		"disk space",
	}
)

// Keywords builds a Classifier from two disjoint keyword lists. The
// permanent list is checked first and short-circuits to no-retry even when a
// transient keyword also matches. Context cancellation is never retried, and
// neither is anything matching no list at all.
func Keywords(permanent, transient []string) Classifier {
	return func(err error) bool {
		if err == nil {
			return false
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}
		msg := strings.ToLower(err.Error())
		for _, kw := range permanent {
			if strings.Contains(msg, kw) {
				return false
			}
		}
		for _, kw := range transient {
			if strings.Contains(msg, kw) {
				return true
			}
		}
		return false
	}
}

// RetryExitErrors decorates a Classifier so that subprocess exit failures
// are always retried, mirroring call sites that whitelist a retryable error
// type in addition to message matching.
func RetryExitErrors(next Classifier) Classifier {
	return func(err error) bool {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return true
		}
		if next == nil {
			return false
		}
		return next(err)
	}
}

// Do executes op under the given policy. On failure it consults should; if
// the error is retryable and attempts remain, it sleeps the backoff delay
// (abandoning the wait if ctx is cancelled) and tries again. The final error
// is propagated to the caller unchanged in kind, whether it was classified
// permanent, unclassified, or simply exhausted the budget.
//
// Each whole operation is attempted atomically; there is no partial-state
// resumption between attempts. logf, when non-nil, records every retry with
// the attempt number and the delay chosen.
func Do[T any](
	ctx context.Context,
	p Policy,
	should Classifier,
	logf func(format string, args ...any),
	op func(ctx context.Context) (T, error),
) (T, error) {
	var zero T
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt == attempts || should == nil || !should(err) {
			break
		}

		delay := p.Backoff.Delay(attempt)
		logf("retrying after %s (attempt %d/%d): %v", delay, attempt+1, attempts, err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
	return zero, lastErr
}
