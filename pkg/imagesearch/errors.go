package imagesearch

import (
	"fmt"
	"time"
)

// RateLimitedError signals a 429 from the provider. It carries the provider's
// retry-after hint and is never retried automatically; callers must back off.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("image provider rate limited, retry after %s", e.RetryAfter)
	}
	return "image provider rate limited"
}

// UpstreamError is any non-2xx, non-429 provider response. 5xx responses get
// one retry before this surfaces.
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("image provider returned status %d", e.StatusCode)
}

// TransientError wraps timeouts, aborts and connection failures. The search
// path retries these once; whatever still fails surfaces wrapped here.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("image provider unreachable: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}
