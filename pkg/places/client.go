// Package places is a client for the Google Places API, used by the company
// fallback enricher to resolve business-level contact details.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://places.googleapis.com/v1"

// Client performs business directory lookups.
type Client interface {
	// FindBusiness resolves a company by name plus optional location hints.
	// Returns nil (not an error) when no place matches.
	FindBusiness(ctx context.Context, req FindRequest) (*Business, error)
}

// FindRequest identifies a business to look up.
type FindRequest struct {
	Name   string
	Domain string
	City   string
	State  string
}

// Business holds the company-level fields extracted from a place result.
type Business struct {
	Name             string `json:"name"`
	Phone            string `json:"phone,omitempty"`
	Website          string `json:"website,omitempty"`
	FormattedAddress string `json:"formatted_address,omitempty"`
	City             string `json:"city,omitempty"`
	State            string `json:"state,omitempty"`
	Country          string `json:"country,omitempty"`
	Zip              string `json:"zip,omitempty"`
	MapsURL          string `json:"maps_url,omitempty"`
	BusinessStatus   string `json:"business_status,omitempty"`
}

// APIError is a non-2xx response from the Places API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("places: unexpected status %d: %s", e.StatusCode, e.Body)
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

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type textSearchRequest struct {
	TextQuery string `json:"textQuery"`
}

type textSearchResponse struct {
	Places []place `json:"places"`
}

type place struct {
	DisplayName         displayName        `json:"displayName"`
	NationalPhoneNumber string             `json:"nationalPhoneNumber"`
	WebsiteURI          string             `json:"websiteUri"`
	FormattedAddress    string             `json:"formattedAddress"`
	AddressComponents   []addressComponent `json:"addressComponents"`
	GoogleMapsURI       string             `json:"googleMapsUri"`
	BusinessStatus      string             `json:"businessStatus"`
}

type displayName struct {
	Text string `json:"text"`
}

type addressComponent struct {
	LongText string   `json:"longText"`
	Types    []string `json:"types"`
}

func (c *httpClient) FindBusiness(ctx context.Context, req FindRequest) (*Business, error) {
	body, err := json.Marshal(textSearchRequest{TextQuery: buildQuery(req)})
	if err != nil {
		return nil, eris.Wrap(err, "places: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchText", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "places: create request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask", strings.Join([]string{
		"places.displayName",
		"places.nationalPhoneNumber",
		"places.websiteUri",
		"places.formattedAddress",
		"places.addressComponents",
		"places.googleMapsUri",
		"places.businessStatus",
	}, ","))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "places: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result textSearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal response")
	}

	if len(result.Places) == 0 {
		return nil, nil
	}

	return toBusiness(result.Places[0]), nil
}

// buildQuery assembles the text query from the name plus whatever hints are
// present, most specific first.
func buildQuery(req FindRequest) string {
	parts := []string{req.Name}
	if req.City != "" {
		parts = append(parts, req.City)
	}
	if req.State != "" {
		parts = append(parts, req.State)
	}
	if req.Domain != "" {
		parts = append(parts, req.Domain)
	}
	return strings.Join(parts, " ")
}

func toBusiness(p place) *Business {
	b := &Business{
		Name:             p.DisplayName.Text,
		Phone:            p.NationalPhoneNumber,
		Website:          p.WebsiteURI,
		FormattedAddress: p.FormattedAddress,
		MapsURL:          p.GoogleMapsURI,
		BusinessStatus:   p.BusinessStatus,
	}
	for _, c := range p.AddressComponents {
		for _, t := range c.Types {
			switch t {
			case "locality":
				b.City = c.LongText
			case "administrative_area_level_1":
				b.State = c.LongText
			case "country":
				b.Country = c.LongText
			case "postal_code":
				b.Zip = c.LongText
			}
		}
	}
	return b
}
