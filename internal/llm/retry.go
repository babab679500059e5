package llm

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"net"
	"net/http"
	"syscall"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jonathan/resume-verifier/internal/apperr"
)

// RetryPolicy bounds the retries of transient provider failures
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Factor     float64
	// Jitter is the maximum fraction of the delay added or removed at random
	Jitter float64
}

// DefaultRetryPolicy returns 3 retries starting at 500ms, doubling, capped at 5s
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Factor:     2,
		Jitter:     0.2,
	}
}

// Delay returns the wait before the given retry (1-based)
func (p RetryPolicy) Delay(retry int) time.Duration {
	if retry < 1 {
		return 0
	}
	factor := p.Factor
	if factor < 1 {
		factor = 1
	}
	delay := float64(p.BaseDelay) * math.Pow(factor, float64(retry-1))
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}

	if p.Jitter > 0 {
		span := int64(delay * p.Jitter * 2)
		if span > 0 {
			n, err := rand.Int(rand.Reader, big.NewInt(span))
			if err == nil {
				delay += float64(n.Int64()) - float64(span)/2
			}
		}
	}

	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

// HTTPStatusError is a provider failure that carries only an HTTP status
type HTTPStatusError struct {
	Code    int
	Message string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("provider returned HTTP %d: %s", e.Code, e.Message)
}

// isRetryableError reports whether a provider failure may succeed on another attempt
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if apperr.Retryable(err) {
		return true
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.Code)
	}

	var oaiErr *openai.APIError
	if errors.As(err, &oaiErr) {
		return retryableStatus(oaiErr.HTTPStatusCode)
	}
	var oaiReqErr *openai.RequestError
	if errors.As(err, &oaiReqErr) {
		return retryableStatus(oaiReqErr.HTTPStatusCode)
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return retryableStatus(statusErr.Code)
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.ResourceExhausted, codes.Unavailable, codes.DeadlineExceeded, codes.Internal, codes.Aborted:
			return true
		default:
			return false
		}
	}

	// timeouts, refused connections and resets; DNS and TLS failures are terminal
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

func retryableStatus(code int) bool {
	switch {
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout:
		return true
	case code >= 500:
		return true
	default:
		return false
	}
}

// sleepContext waits for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
