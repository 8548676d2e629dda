// Package apollo is a client for the Apollo.io people match and search APIs.
package apollo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.apollo.io/v1"

// Client performs Apollo people operations.
type Client interface {
	// MatchPerson resolves a person by unambiguous identifier (provider id or
	// LinkedIn profile URL). A 2xx response with no person payload returns a
	// response with Person == nil, not an error.
	MatchPerson(ctx context.Context, req MatchRequest) (*MatchResponse, error)
	// SearchPeople issues a fuzzy keyword search.
	SearchPeople(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// MatchRequest identifies a person for an exact-match lookup. Exactly one of
// ID or LinkedInURL should be set; ID wins if both are.
type MatchRequest struct {
	ID          string `json:"id,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
}

// MatchResponse is the response from POST /people/match.
type MatchResponse struct {
	Person *Person `json:"person"`
}

// SearchRequest is the request for POST /mixed_people/search.
type SearchRequest struct {
	Keywords string `json:"q_keywords"`
	Page     int    `json:"page"`
	PerPage  int    `json:"per_page"`
}

// SearchResponse is the response from POST /mixed_people/search.
type SearchResponse struct {
	People []Person `json:"people"`
}

// Person is the provider's person object.
type Person struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	FirstName         string       `json:"first_name"`
	LastName          string       `json:"last_name"`
	Email             string       `json:"email"`
	PhoneNumber       string       `json:"sanitized_phone"`
	LinkedInURL       string       `json:"linkedin_url"`
	Title             string       `json:"title"`
	Headline          string       `json:"headline"`
	Seniority         string       `json:"seniority"`
	Departments       []string     `json:"departments"`
	City              string       `json:"city"`
	State             string       `json:"state"`
	Country           string       `json:"country"`
	PhotoURL          string       `json:"photo_url"`
	EmploymentHistory []Employment `json:"employment_history"`
	Education         []Education  `json:"education"`
	Organization      *Org         `json:"organization,omitempty"`
}

// Employment is a single entry in a person's employment history.
type Employment struct {
	OrganizationName string `json:"organization_name"`
	Title            string `json:"title"`
	StartDate        string `json:"start_date,omitempty"`
	EndDate          string `json:"end_date,omitempty"`
	Current          bool   `json:"current"`
}

// Education is a single entry in a person's education history.
type Education struct {
	SchoolName string `json:"school_name"`
	Degree     string `json:"degree,omitempty"`
}

// Org is the person's current employer as reported by the provider.
type Org struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	WebsiteURL string `json:"website_url"`
}

// APIError is a non-2xx response from the Apollo API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("apollo: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default request rate (requests per second).
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an Apollo API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(2), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) MatchPerson(ctx context.Context, req MatchRequest) (*MatchResponse, error) {
	var result MatchResponse
	if err := c.post(ctx, "/people/match", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) SearchPeople(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	var result SearchResponse
	if err := c.post(ctx, "/mixed_people/search", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) post(ctx context.Context, path string, payload, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "apollo: rate limit wait")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "apollo: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "apollo: create request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "apollo: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "apollo: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return eris.Wrap(err, "apollo: unmarshal response")
	}

	return nil
}
