package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/contact-cli/internal/resilience"
)

// HTTPOptions configures the HTTP export source.
type HTTPOptions struct {
	UserAgent      string        // default "contact-cli/1.0"
	Timeout        time.Duration // per-request, default 30s
	MaxAttempts    int           // default 3
	RequestsPerSec float64       // per-host throttle, default 10
}

// HTTPSource fetches export files over HTTP with per-host throttling and
// retries on throttled or failing responses.
type HTTPSource struct {
	client *http.Client
	opts   HTTPOptions
	retry  resilience.RetryConfig

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPSource creates an HTTPSource with the given options.
func NewHTTPSource(opts HTTPOptions) *HTTPSource {
	if opts.UserAgent == "" {
		opts.UserAgent = "contact-cli/1.0"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 10
	}

	retry := resilience.FromRetryConfig(opts.MaxAttempts, 1000, 30000, 2.0, 0.25)
	retry.ShouldRetry = func(err error) bool {
		var se *statusError
		if errors.As(err, &se) {
			return resilience.IsTransientHTTPStatus(se.status)
		}
		return resilience.IsTransient(err)
	}

	return &HTTPSource{
		client:   &http.Client{Timeout: opts.Timeout},
		opts:     opts,
		retry:    retry,
		limiters: make(map[string]*rate.Limiter),
	}
}

// statusError marks a response the retry policy may want to repeat.
type statusError struct {
	status int
	url    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d from %s", e.status, e.url)
}

func (s *HTTPSource) limiterFor(host string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	lim, ok := s.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(s.opts.RequestsPerSec), 1)
		s.limiters[host] = lim
	}
	return lim
}

// Fetch downloads the URL and returns the response body.
func (s *HTTPSource) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: parse url")
	}

	body, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) (io.ReadCloser, error) {
		if err := s.limiterFor(u.Host).Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetch: throttle wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "fetch: create request")
		}
		req.Header.Set("User-Agent", s.opts.UserAgent)

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "fetch: send request")
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			zap.L().Warn("fetch: unexpected status",
				zap.String("url", rawURL),
				zap.Int("status", resp.StatusCode),
			)
			return nil, &statusError{status: resp.StatusCode, url: rawURL}
		}
		return resp.Body, nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "fetch %s", rawURL)
	}
	return body, nil
}

// FetchToFile downloads the URL into path and returns bytes written.
func (s *HTTPSource) FetchToFile(ctx context.Context, rawURL, path string) (int64, error) {
	body, err := s.Fetch(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer body.Close() //nolint:errcheck

	out, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrap(err, "fetch: create file")
	}
	defer out.Close() //nolint:errcheck

	n, err := io.Copy(out, body)
	if err != nil {
		return n, eris.Wrap(err, "fetch: write file")
	}
	return n, nil
}
