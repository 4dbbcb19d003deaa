// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"net"
	"net/http"
	"time"
)

// NewClient builds an HTTP client whose timeout applies to connection
// setup, TLS, and response headers only. Body streaming is uncapped:
// large files legitimately take longer than any fixed request timeout.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
		},
	}
}
