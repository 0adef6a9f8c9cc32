// Package geo wraps the US Census geocoding service behind a rate-limited
// client. The analysis core never imports this package; coordinates are an
// optional enrichment applied before import.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

const (
	// Public Census geocoder; no API key required.
	defaultBaseURL = "https://geocoding.geo.census.gov/geocoder/locations/onelineaddress"
	benchmark      = "Public_AR_Current"

	// Minimum spacing between requests. The Census service has no hard
	// published limit; stay polite.
	defaultMinInterval = 500 * time.Millisecond

	requestTimeout = 30 * time.Second

	jitterMaxMillis = 250
)

// Location is a successful geocoder result.
type Location struct {
	Latitude       float64 `json:"latitude" yaml:"latitude"`
	Longitude      float64 `json:"longitude" yaml:"longitude"`
	MatchedAddress string  `json:"matched_address" yaml:"matched_address"`
}

// Client is a rate-limited geocoding client. Safe for sequential use; the
// spacing between requests is enforced per client.
type Client struct {
	baseURL     string
	minInterval time.Duration
	client      *http.Client
	lastRequest time.Time
}

// New returns a client against the public Census geocoder.
func New() *Client {
	return &Client{
		baseURL:     defaultBaseURL,
		minInterval: defaultMinInterval,
		client:      &http.Client{Timeout: requestTimeout},
	}
}

// NewWithBaseURL returns a client against a custom endpoint, used by tests
// and by deployments that proxy the geocoder.
func NewWithBaseURL(baseURL string, minInterval time.Duration) *Client {
	return &Client{
		baseURL:     baseURL,
		minInterval: minInterval,
		client:      &http.Client{Timeout: requestTimeout},
	}
}

type geocodeResponse struct {
	Result struct {
		AddressMatches []struct {
			MatchedAddress string `json:"matchedAddress"`
			Coordinates    struct {
				X float64 `json:"x"`
				Y float64 `json:"y"`
			} `json:"coordinates"`
		} `json:"addressMatches"`
	} `json:"result"`
}

// Geocode resolves a one-line address to coordinates. A nil Location with
// a nil error means the geocoder had no candidate for the address.
func (c *Client) Geocode(ctx context.Context, address string) (*Location, error) {
	if address == "" {
		return nil, errors.New("address is required")
	}

	c.wait()

	q := url.Values{}
	q.Set("address", address)
	q.Set("benchmark", benchmark)
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", c.baseURL, q.Encode()), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create geocode request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "geocode request failed for: %s", address)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Errorf("geocoder returned %d: %s", resp.StatusCode, string(body))
	}

	var out geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "failed to decode geocoder response")
	}

	if len(out.Result.AddressMatches) == 0 {
		slog.Debug("no geocoder candidate", "address", address)
		return nil, nil
	}

	m := out.Result.AddressMatches[0]
	return &Location{
		Latitude:       m.Coordinates.Y,
		Longitude:      m.Coordinates.X,
		MatchedAddress: m.MatchedAddress,
	}, nil
}

// wait enforces the minimum spacing since the previous request, plus a
// small jitter so bursts from parallel imports do not align.
func (c *Client) wait() {
	if c.minInterval <= 0 {
		return
	}

	elapsed := time.Since(c.lastRequest)
	if elapsed < c.minInterval {
		wait := c.minInterval - elapsed
		wait += time.Duration(rand.IntN(jitterMaxMillis)) * time.Millisecond
		slog.Debug("geocoder rate limit, waiting", "wait", wait.String())
		time.Sleep(wait)
	}

	c.lastRequest = time.Now()
}
