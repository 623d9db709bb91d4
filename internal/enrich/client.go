package enrich

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/calliope-music/calliope/internal/constants"
)

// client is a rate-limited, retrying HTTP client shared by the enrichment
// sources. Both upstream services throttle aggressively; one request per
// interval with Retry-After-aware backoff keeps us under their limits.
type client struct {
	httpClient *http.Client

	minInterval time.Duration
	lastRequest time.Time
	mu          sync.Mutex
}

func newClient(minInterval time.Duration) *client {
	return &client{
		httpClient:  &http.Client{Timeout: constants.DefaultHTTPTimeout},
		minInterval: minInterval,
	}
}

func (c *client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < constants.DefaultRetryCount; attempt++ {
		c.mu.Lock()
		now := time.Now()
		next := c.lastRequest.Add(c.minInterval)
		var wait time.Duration
		if now.Before(next) {
			wait = next.Sub(now)
			c.lastRequest = next
		} else {
			c.lastRequest = now
		}
		c.mu.Unlock()

		if err := sleepCtx(ctx, wait); err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err == nil && resp.StatusCode != http.StatusTooManyRequests &&
			resp.StatusCode != http.StatusServiceUnavailable {
			return resp, nil
		}

		backoff := time.Duration(attempt+1) * constants.DefaultRetryBase
		if err != nil {
			lastErr = err
		} else {
			if ra := retryAfter(resp); ra > backoff {
				backoff = ra
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("rate limited (status %d)", resp.StatusCode)
		}
		if err := sleepCtx(ctx, backoff); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
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

func retryAfter(resp *http.Response) time.Duration {
	ra := resp.Header.Get("Retry-After")
	if ra == "" {
		return 0
	}
	if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(ra); err == nil {
		return time.Until(t)
	}
	return 0
}
