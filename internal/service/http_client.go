package service

import (
	"net/http"
	"time"
)

// NewHTTPClient builds the pooled client shared by the Gemini and Cloudinary
// adapters. Both talk to a single host repeatedly (generation calls, repair
// calls, video uploads), so idle connections are kept warm; the per-call
// deadline comes from the caller's configured timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}
