// Package mainfreight implements the client for the Mainfreight
// Tracking References API.
package mainfreight

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/trvlprogrammer/odoo-mainfreight-tacking/internal/domain/shipping"
)

// maxResponseSize is the maximum allowed response size from the
// tracking API (1MB).
const maxResponseSize = 1 << 20

// shipDateLayout is the representation stored on created shipments.
const shipDateLayout = "2006-01-02 15:04:05"

// Config holds the tracking provider endpoint settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// StatusError is returned for a non-2xx response from the tracking API.
type StatusError struct {
	Code int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("mainfreight: HTTP %d", e.Code)
}

// Client queries the Mainfreight Tracking References endpoint. One
// lookup translates (region, serviceType, reference) into a normalized
// tracking result.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a client with the given configuration. The HTTP
// timeout bounds the whole request including body read.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Wire shapes of the References response. Only the consumed subset is
// declared.
type referenceResult struct {
	CarrierReferences []carrierReference `json:"carrierReferences"`
	Events            []trackingEvent    `json:"events"`
}

type carrierReference struct {
	Reference   string `json:"reference"`
	CarrierName string `json:"carrierName"`
	TrackingURL string `json:"trackingUrl"`
}

type trackingEvent struct {
	EventDateTime string `json:"eventDateTime"`
}

// Lookup performs one authenticated reference lookup. An empty or
// malformed payload yields a zero-valued TrackingInfo and no error;
// callers must treat a result without tracking number or URL as
// "no tracking found", which is distinct from a transport failure.
// The API may return several matches; only the first is used.
func (c *Client) Lookup(ctx context.Context, region, serviceType, reference string) (shipping.TrackingInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL, nil)
	if err != nil {
		return shipping.TrackingInfo{}, fmt.Errorf("mainfreight: build request: %w", err)
	}

	q := url.Values{}
	q.Set("serviceType", serviceType)
	q.Set("reference", reference)
	q.Set("region", region)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", "Secret "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return shipping.TrackingInfo{}, fmt.Errorf("mainfreight: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return shipping.TrackingInfo{}, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return shipping.TrackingInfo{}, fmt.Errorf("mainfreight: read response: %w", err)
	}

	var results []referenceResult
	if err := json.Unmarshal(body, &results); err != nil {
		// A malformed payload is treated the same as an empty one.
		return shipping.TrackingInfo{}, nil
	}
	if len(results) == 0 {
		return shipping.TrackingInfo{}, nil
	}

	first := results[0]
	var info shipping.TrackingInfo
	if len(first.CarrierReferences) > 0 {
		cr := first.CarrierReferences[0]
		info.TrackingNumber = cr.Reference
		info.TrackingURL = cr.TrackingURL
		info.CarrierName = cr.CarrierName
	}
	if len(first.Events) > 0 {
		info.ShippedAt = formatEventTime(first.Events[0].EventDateTime)
	}
	return info, nil
}

// formatEventTime normalizes the provider's event timestamp to the
// ship-date representation. Unparsable input yields "".
func formatEventTime(raw string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.Format(shipDateLayout)
		}
	}
	return ""
}
