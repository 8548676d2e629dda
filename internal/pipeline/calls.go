package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/contact-cli/internal/model"
	"github.com/sells-group/contact-cli/internal/resilience"
	"github.com/sells-group/contact-cli/pkg/apollo"
	"github.com/sells-group/contact-cli/pkg/places"
	"github.com/sells-group/contact-cli/pkg/websearch"
)

// stepTimeout bounds a single external call including its retries.
func (p *Pipeline) stepTimeout() time.Duration {
	secs := p.cfg.Pipeline.StepTimeoutSecs
	if secs <= 0 {
		secs = 30
	}
	return time.Duration(secs) * time.Second
}

func (p *Pipeline) callMatch(ctx context.Context, req apollo.MatchRequest) (*apollo.MatchResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, p.stepTimeout())
	defer cancel()

	cacheKey := firstNonEmpty(req.ID, req.LinkedInURL)
	if p.cache != nil && cacheKey != "" {
		if data, err := p.cache.GetCachedProfile(ctx, cacheKey); err == nil && data != nil {
			var resp apollo.MatchResponse
			if err := json.Unmarshal(data, &resp); err == nil {
				zap.L().Debug("pipeline: profile cache hit", zap.String("key", cacheKey))
				return &resp, nil
			}
		}
	}

	resp, err := resilience.ExecuteVal(ctx, p.apolloCB, func(ctx context.Context) (*apollo.MatchResponse, error) {
		return resilience.DoVal(ctx, p.retry, func(ctx context.Context) (*apollo.MatchResponse, error) {
			return p.apollo.MatchPerson(ctx, req)
		})
	})
	if err != nil {
		return nil, err
	}

	if p.cache != nil && cacheKey != "" && resp != nil && resp.Person != nil {
		if data, merr := json.Marshal(resp); merr == nil {
			ttl := time.Duration(p.cfg.Pipeline.ProfileCacheTTLHours) * time.Hour
			if ttl <= 0 {
				ttl = 24 * time.Hour
			}
			if cerr := p.cache.SetCachedProfile(ctx, cacheKey, data, ttl); cerr != nil {
				zap.L().Warn("pipeline: profile cache write failed", zap.Error(cerr))
			}
		}
	}
	return resp, nil
}

func (p *Pipeline) callSearch(ctx context.Context, req apollo.SearchRequest) (*apollo.SearchResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, p.stepTimeout())
	defer cancel()

	return resilience.ExecuteVal(ctx, p.apolloCB, func(ctx context.Context) (*apollo.SearchResponse, error) {
		return resilience.DoVal(ctx, p.retry, func(ctx context.Context) (*apollo.SearchResponse, error) {
			return p.apollo.SearchPeople(ctx, req)
		})
	})
}

func (p *Pipeline) callWebSearch(ctx context.Context, query string) (*websearch.SearchResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, p.stepTimeout())
	defer cancel()

	return resilience.ExecuteVal(ctx, p.searchCB, func(ctx context.Context) (*websearch.SearchResponse, error) {
		return resilience.DoVal(ctx, p.retry, func(ctx context.Context) (*websearch.SearchResponse, error) {
			return p.search.Search(ctx, query)
		})
	})
}

func (p *Pipeline) callPlaces(ctx context.Context, req places.FindRequest) (*places.Business, error) {
	ctx, cancel := context.WithTimeout(ctx, p.stepTimeout())
	defer cancel()

	return resilience.ExecuteVal(ctx, p.placesCB, func(ctx context.Context) (*places.Business, error) {
		return resilience.DoVal(ctx, p.retry, func(ctx context.Context) (*places.Business, error) {
			return p.places.FindBusiness(ctx, req)
		})
	})
}

// isRetryable reports whether an external-call error is worth retrying.
// Provider 4xx responses other than 429 are definitive answers, not faults.
func isRetryable(err error) bool {
	if status, ok := httpStatusOf(err); ok {
		return resilience.IsTransientHTTPStatus(status)
	}
	return resilience.IsTransient(err)
}

// httpStatusOf extracts the HTTP status from any provider API error.
func httpStatusOf(err error) (int, bool) {
	var apolloErr *apollo.APIError
	if errors.As(err, &apolloErr) {
		return apolloErr.StatusCode, true
	}
	var searchErr *websearch.APIError
	if errors.As(err, &searchErr) {
		return searchErr.StatusCode, true
	}
	var placesErr *places.APIError
	if errors.As(err, &placesErr) {
		return placesErr.StatusCode, true
	}
	return 0, false
}

// errorOutcome turns an external-call failure into a terminal error step.
// The run continues; the failure is visible only in the step log.
func errorOutcome(err error) stepOutcome {
	msg := "call failed"
	if status, ok := httpStatusOf(err); ok {
		msg = fmt.Sprintf("HTTP %d", status)
	} else if errors.Is(err, resilience.ErrCircuitOpen) {
		msg = "provider circuit open"
	} else if errors.Is(err, context.DeadlineExceeded) {
		msg = "timed out"
	}
	return stepOutcome{status: model.StepStatusError, message: msg}
}
