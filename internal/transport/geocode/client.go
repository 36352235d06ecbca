package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/prospect-labs/prospector/internal/domain"
	"github.com/prospect-labs/prospector/internal/domain/geo"
)

const defaultTimeout = 10 * time.Second

// Config holds geocoding provider settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// RatePerSec throttles outbound calls; 0 disables client-side limiting.
	RatePerSec float64
}

// Client calls a remote geocoding oracle over HTTP. The provider answers
// with a JSON body of the form {"latitude": .., "longitude": ..}; a body
// carrying an "error" field means the address did not resolve.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
}

// NewClient creates a geocoding client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	var limiter *rate.Limiter
	if cfg.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		limiter:    limiter,
	}, nil
}

type geocodeResponse struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Error     string   `json:"error"`
}

// Geocode resolves an address or ZIP to coordinates. Unresolvable addresses
// return a domain.ErrGeocodeFailure; transport problems return as-is so the
// caller can distinguish a broken oracle from a bad address.
func (c *Client) Geocode(ctx context.Context, address string) (geo.Coordinates, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return geo.Coordinates{}, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	q := url.Values{}
	q.Set("query", address)
	if c.apiKey != "" {
		q.Set("api_key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return geo.Coordinates{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return geo.Coordinates{}, fmt.Errorf("geocode request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return geo.Coordinates{}, fmt.Errorf("read geocode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return geo.Coordinates{}, fmt.Errorf("geocode provider returned %d", resp.StatusCode)
	}

	var parsed geocodeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return geo.Coordinates{}, fmt.Errorf("%w: malformed provider response: %v",
			domain.ErrGeocodeFailure, err)
	}
	if parsed.Error != "" {
		return geo.Coordinates{}, fmt.Errorf("%w: %s", domain.ErrGeocodeFailure, parsed.Error)
	}
	if parsed.Latitude == nil || parsed.Longitude == nil {
		return geo.Coordinates{}, fmt.Errorf("%w: provider returned no coordinates",
			domain.ErrGeocodeFailure)
	}

	return geo.Coordinates{Latitude: *parsed.Latitude, Longitude: *parsed.Longitude}, nil
}
