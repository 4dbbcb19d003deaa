// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package zenodo is a client for the Zenodo records API. It retrieves a
// record's file manifest with transport-level retry and distinguishes
// "record not found" (definitive, never retried) from transient failures.
package zenodo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/zenodo-get/internal/httputil"
	"github.com/pdiddy/zenodo-get/pkg/types"
)

// API base URLs. Declared as vars so tests can substitute httptest servers.
var (
	RecordsAPIBase        = "https://zenodo.org/api/records/"
	SandboxRecordsAPIBase = "https://sandbox.zenodo.org/api/records/"
)

// ErrRecordNotFound is returned when the API definitively reports that the
// record does not exist. It is fatal and never retried.
var ErrRecordNotFound = errors.New("record not found")

// Client fetches record metadata from the Zenodo API.
type Client struct {
	httpClient  *http.Client
	base        string
	userAgent   string
	maxRetries  int
	backoff     httputil.BackoffPolicy
	accessToken string
}

// NewClient builds a Client from shared HTTP settings. When sandbox is set
// the sandbox API base is used.
func NewClient(httpClient *http.Client, cfg types.HTTPConfig, sandbox bool, accessToken string) *Client {
	base := RecordsAPIBase
	if sandbox {
		base = SandboxRecordsAPIBase
	}
	return &Client{
		httpClient:  httpClient,
		base:        base,
		userAgent:   cfg.UserAgent,
		maxRetries:  cfg.MaxRetries,
		backoff:     httputil.ExponentialBackoff{Factor: cfg.BackoffFactor},
		accessToken: accessToken,
	}
}

// GetRecord fetches the record with the given ID and parses its file
// manifest, preserving server order. Transient failures are retried per
// the transport backoff policy; a 404 fails immediately.
func (c *Client) GetRecord(ctx context.Context, recordID int64) (*Record, error) {
	apiURL := fmt.Sprintf("%s%d", c.base, recordID)
	if c.accessToken != "" {
		apiURL += "?access_token=" + url.QueryEscape(c.accessToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating metadata request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, c.maxRetries, c.backoff)
	if err != nil {
		return nil, fmt.Errorf("fetching record %d: %w", recordID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, fmt.Errorf("%w: record %d", ErrRecordNotFound, recordID)
	default:
		return nil, fmt.Errorf("metadata request for record %d returned HTTP %d", recordID, resp.StatusCode)
	}

	var rec Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("parsing record %d: %w", recordID, err)
	}
	if rec.ID == 0 {
		rec.ID = recordID
	}
	return &rec, nil
}
