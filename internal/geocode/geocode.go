// Package geocode is a small client for a Google-style geocoding JSON API.
// It resolves a postal address and reports whether the match is precise
// enough to deliver to.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNoAPIKey is returned when the client is used without a key.
var ErrNoAPIKey = errors.New("geocode: api key not configured")

// Location types reported by the upstream.
const (
	LocationRooftop     = "ROOFTOP"
	LocationInterpolate = "RANGE_INTERPOLATED"
	LocationCenter      = "GEOMETRIC_CENTER"
	LocationApproximate = "APPROXIMATE"
)

// Address is the caller's input.
type Address struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	ZipCode      string `json:"zipCode"`
	Complement   string `json:"complement,omitempty"`
}

// Query renders the address as a single-line geocoder query.
func (a Address) Query() string {
	parts := []string{strings.TrimSpace(a.Street + ", " + a.Number)}
	for _, p := range []string{a.Neighborhood, a.City, a.State, a.ZipCode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Result is the outcome of a lookup.
type Result struct {
	Valid            bool    `json:"valid"`
	Reason           string  `json:"reason,omitempty"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	Lat              float64 `json:"lat,omitempty"`
	Lng              float64 `json:"lng,omitempty"`
	LocationType     string  `json:"location_type,omitempty"`
}

type apiResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
			LocationType string `json:"location_type"`
		} `json:"geometry"`
	} `json:"results"`
}

// Client calls the geocoder.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// New returns a Client with the given timeout.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{BaseURL: baseURL, APIKey: apiKey, HTTP: &http.Client{Timeout: timeout}}
}

// Lookup geocodes addr. Zero results and approximate matches are reported as
// invalid results, not errors; errors mean the upstream could not answer.
func (c *Client) Lookup(ctx context.Context, addr Address) (*Result, error) {
	if c == nil || strings.TrimSpace(c.APIKey) == "" {
		return nil, ErrNoAPIKey
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("geocode: base url: %w", err)
	}
	q := u.Query()
	q.Set("address", addr.Query())
	q.Set("key", c.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode: upstream status %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("geocode: decode: %w", err)
	}

	switch body.Status {
	case "OK":
	case "ZERO_RESULTS":
		return &Result{Valid: false, Reason: "address not found"}, nil
	default:
		return nil, fmt.Errorf("geocode: upstream status %q: %s", body.Status, body.ErrorMessage)
	}
	if len(body.Results) == 0 {
		return &Result{Valid: false, Reason: "address not found"}, nil
	}

	top := body.Results[0]
	res := &Result{
		Valid:            true,
		FormattedAddress: top.FormattedAddress,
		Lat:              top.Geometry.Location.Lat,
		Lng:              top.Geometry.Location.Lng,
		LocationType:     top.Geometry.LocationType,
	}
	if top.Geometry.LocationType == LocationApproximate {
		res.Valid = false
		res.Reason = "address is too imprecise"
	}
	return res, nil
}
