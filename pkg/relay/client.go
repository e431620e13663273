// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"

	twerrors "github.com/stacklok/twauth/pkg/errors"
	"github.com/stacklok/twauth/pkg/logger"
	"github.com/stacklok/twauth/pkg/networking"
)

// Client posts URL-open events to a published relay.
type Client struct {
	baseURL *url.URL
	token   string
	http    *retryablehttp.Client
}

// ClientOption customizes a Client.
type ClientOption func(*retryablehttp.Client)

// WithRetryMax sets how many times a failed post is retried.
func WithRetryMax(n int) ClientOption {
	return func(c *retryablehttp.Client) {
		c.RetryMax = n
	}
}

// NewClient creates a Client for the relay described by st.
func NewClient(st *State, opts ...ClientOption) (*Client, error) {
	if st == nil {
		return nil, twerrors.NewInvalidArgumentError("relay state cannot be nil", nil)
	}
	base, err := url.Parse("http://" + st.Addr)
	if err != nil || base.Host == "" {
		return nil, twerrors.NewRelayError(fmt.Sprintf("invalid relay address %q", st.Addr), err)
	}

	httpClient, err := networking.NewHttpClientBuilder().WithTimeout(10 * time.Second).Build()
	if err != nil {
		return nil, err
	}

	rc := &retryablehttp.Client{
		HTTPClient:   httpClient,
		Logger:       logger.Get(),
		RetryWaitMin: 100 * time.Millisecond,
		RetryWaitMax: 1 * time.Second,
		RetryMax:     3,
		CheckRetry:   retryablehttp.DefaultRetryPolicy,
		Backoff:      retryablehttp.DefaultBackoff,
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
	}
	for _, opt := range opts {
		opt(rc)
	}

	return &Client{baseURL: base, token: st.Token, http: rc}, nil
}

// Redirect forwards u, claimed to come from source. It reports whether the
// running login consumed it.
func (c *Client) Redirect(ctx context.Context, u *url.URL, source string) (bool, error) {
	body, err := json.Marshal(RedirectRequest{URL: u.String(), Source: source})
	if err != nil {
		return false, fmt.Errorf("failed to encode redirect: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(RedirectPath), bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(TokenHeader, c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, twerrors.NewRelayError("failed to reach the running login", err)
	}
	defer resp.Body.Close()

	if err := networking.ErrorFromResponse(resp); err != nil {
		return false, twerrors.NewRelayError("the running login rejected the redirect", err)
	}

	var out RedirectResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, twerrors.NewRelayError("invalid relay response", err)
	}
	return out.Handled, nil
}

// Healthy checks that the relay answers.
func (c *Client) Healthy(ctx context.Context) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(HealthPath), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return twerrors.NewRelayError("relay is not reachable", err)
	}
	defer resp.Body.Close()
	if err := networking.ErrorFromResponse(resp); err != nil {
		return twerrors.NewRelayError("relay is unhealthy", err)
	}
	return nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.JoinPath(path).String()
}
