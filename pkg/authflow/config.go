// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package authflow

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/stacklok/twauth/pkg/errors"
	"github.com/stacklok/twauth/pkg/handoff"
)

// Endpoints are the three OAuth1 provider endpoints.
type Endpoints struct {
	RequestTokenURL string
	AuthorizeURL    string
	AccessTokenURL  string
}

// TwitterEndpoints are the provider endpoints used unless overridden.
var TwitterEndpoints = Endpoints{
	RequestTokenURL: "https://api.twitter.com/oauth/request_token",
	AuthorizeURL:    "https://api.twitter.com/oauth/authorize",
	AccessTokenURL:  "https://api.twitter.com/oauth/access_token",
}

// Config is the immutable configuration of an Authenticator.
type Config struct {
	ConsumerKey    string
	ConsumerSecret string
	// CallbackURL is <callback scheme>://
	CallbackURL *url.URL
	// UseBrowser skips the SSO handoff and always runs the browser flow.
	UseBrowser bool

	Endpoints Endpoints
	// SSOScheme is the provider application's URL scheme.
	SSOScheme string
	// AllowedSources are extra source-application prefixes accepted on redirects.
	AllowedSources []string
	// SSOTimeout fails a pending handoff after the given duration. Zero waits forever.
	SSOTimeout time.Duration
}

// ConfigOption customizes a Config.
type ConfigOption func(*Config)

// WithEndpoints overrides the provider endpoints.
func WithEndpoints(e Endpoints) ConfigOption {
	return func(c *Config) {
		c.Endpoints = e
	}
}

// WithSSOScheme overrides the provider application's URL scheme.
func WithSSOScheme(scheme string) ConfigOption {
	return func(c *Config) {
		c.SSOScheme = scheme
	}
}

// WithAllowedSources accepts redirects from additional source applications.
func WithAllowedSources(prefixes ...string) ConfigOption {
	return func(c *Config) {
		c.AllowedSources = append(c.AllowedSources, prefixes...)
	}
}

// WithSSOTimeout bounds how long a handoff may stay pending.
func WithSSOTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.SSOTimeout = d
	}
}

// NewConfig validates the callback scheme and builds a Config.
func NewConfig(consumerKey, consumerSecret, callbackScheme string, useBrowser bool, opts ...ConfigOption) (*Config, error) {
	callbackURL, err := url.Parse(callbackScheme + "://")
	if err != nil {
		return nil, errors.NewInvalidArgumentError(fmt.Sprintf("invalid callback scheme %q", callbackScheme), err)
	}
	if callbackURL.Scheme == "" || !strings.EqualFold(callbackURL.Scheme, callbackScheme) {
		return nil, errors.NewInvalidArgumentError(fmt.Sprintf("invalid callback scheme %q", callbackScheme), nil)
	}

	cfg := &Config{
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		CallbackURL:    callbackURL,
		UseBrowser:     useBrowser,
		Endpoints:      TwitterEndpoints,
		SSOScheme:      handoff.DefaultScheme,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.SSOTimeout < 0 {
		return nil, errors.NewInvalidArgumentError("SSO timeout cannot be negative", nil)
	}
	return cfg, nil
}

// CallbackScheme returns the scheme of CallbackURL.
func (c *Config) CallbackScheme() string {
	return c.CallbackURL.Scheme
}

func (c *Config) handoffRequest() handoff.Request {
	return handoff.Request{
		Scheme:         c.SSOScheme,
		ConsumerKey:    c.ConsumerKey,
		ConsumerSecret: c.ConsumerSecret,
		CallbackScheme: c.CallbackScheme(),
		ForceBrowser:   c.UseBrowser,
	}
}

func (c *Config) handshakeConfig() HandshakeConfig {
	return HandshakeConfig{
		ConsumerKey:    c.ConsumerKey,
		ConsumerSecret: c.ConsumerSecret,
		Endpoints:      c.Endpoints,
	}
}
