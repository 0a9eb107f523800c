// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

// Package scrape collects publicly announced schedule/restriction items
// from official sources and turns them into feed items. Only published
// information is summarized; no routes or details are inferred.
package scrape

import (
	"context"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// DefaultUserAgent identifies the collector to the source sites.
const DefaultUserAgent = "godchecker/1.0 (public info only)"

// DefaultTimeout bounds a single page fetch.
const DefaultTimeout = 25 * time.Second

// Client fetches and parses source pages with retries. Official sites are
// flaky at times; transient failures are retried with exponential backoff,
// client errors are not.
type Client struct {
	hc         *http.Client
	userAgent  string
	maxRetries uint64
}

// NewClient builds a client. Zero values select the defaults.
func NewClient(timeout time.Duration, userAgent string, maxRetries uint64) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		hc:         &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		maxRetries: maxRetries,
	}
}

// GetDocument fetches url and parses it as HTML.
func (c *Client) GetDocument(ctx context.Context, url string) (*html.Node, error) {
	var doc *html.Node

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.hc.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500:
			return errors.Errorf("status %d", resp.StatusCode)
		case resp.StatusCode >= 400:
			return backoff.Permanent(errors.Errorf("status %d", resp.StatusCode))
		}

		doc, err = html.Parse(resp.Body)
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, errors.Wrapf(err, "get %s", url)
	}
	return doc, nil
}
