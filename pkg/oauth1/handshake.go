// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package oauth1 implements the three-legged OAuth1 exchange used by the
// browser login flow.
package oauth1

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/mrjones/oauth"

	"github.com/stacklok/twauth/pkg/authflow"
	"github.com/stacklok/twauth/pkg/logger"
	"github.com/stacklok/twauth/pkg/networking"
)

// deniedParam is set on the callback when the user refuses authorization.
const deniedParam = "denied"

var (
	// ErrNoRequestToken is returned by Exchange before RequestToken succeeded.
	ErrNoRequestToken = errors.New("no request token has been issued")
	// ErrTokenMismatch is returned when the callback carries another request token.
	ErrTokenMismatch = errors.New("callback oauth_token does not match the issued request token")
	// ErrMissingVerifier is returned when the callback carries no verifier.
	ErrMissingVerifier = errors.New("callback is missing oauth_verifier")
	// ErrDenied is returned when the user refused authorization.
	ErrDenied = errors.New("authorization was denied")
)

// Option customizes a Handshake.
type Option func(*Handshake)

// WithHTTPClient sets the client used for the token endpoints.
func WithHTTPClient(client *http.Client) Option {
	return func(h *Handshake) {
		h.client = client
	}
}

// Handshake is a single OAuth1 exchange. It is safe for concurrent use, but
// each instance serves one login.
type Handshake struct {
	cfg    authflow.HandshakeConfig
	client *http.Client

	// ctx is cancelled by Cancel and bounds every request.
	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	requestToken *oauth.RequestToken
}

// New creates a Handshake for cfg.
func New(cfg authflow.HandshakeConfig, opts ...Option) (*Handshake, error) {
	if cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" {
		return nil, fmt.Errorf("consumer key and secret are required")
	}
	for name, raw := range map[string]string{
		"request token": cfg.Endpoints.RequestTokenURL,
		"authorize":     cfg.Endpoints.AuthorizeURL,
		"access token":  cfg.Endpoints.AccessTokenURL,
	} {
		if _, err := url.ParseRequestURI(raw); err != nil {
			return nil, fmt.Errorf("invalid %s endpoint %q: %w", name, raw, err)
		}
	}

	h := &Handshake{cfg: cfg}
	for _, opt := range opts {
		opt(h)
	}
	if h.client == nil {
		client, err := networking.NewHttpClientBuilder().Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build HTTP client: %w", err)
		}
		h.client = client
	}
	h.ctx, h.cancel = context.WithCancel(context.Background())
	return h, nil
}

// NewFactory returns an authflow.HandshakeFactory building Handshakes with opts.
func NewFactory(opts ...Option) authflow.HandshakeFactory {
	return func(cfg authflow.HandshakeConfig) (authflow.Handshake, error) {
		return New(cfg, opts...)
	}
}

// RequestToken obtains a request token bound to callbackURL and returns the
// URL the user must visit to authorize it.
func (h *Handshake) RequestToken(ctx context.Context, callbackURL string) (*url.URL, error) {
	ctx, done := h.bind(ctx)
	defer done()

	rt, loginURL, err := h.consumer(ctx).GetRequestTokenAndUrl(callbackURL)
	if err != nil {
		return nil, fmt.Errorf("request token: %w", h.translate(ctx, err))
	}
	authorizeURL, err := url.Parse(loginURL)
	if err != nil {
		return nil, fmt.Errorf("invalid authorize URL %q: %w", loginURL, err)
	}

	h.mu.Lock()
	h.requestToken = rt
	h.mu.Unlock()

	logger.Debugw("Obtained OAuth1 request token", "authorize_host", authorizeURL.Host)
	return authorizeURL, nil
}

// Exchange trades the verifier carried by redirect for an access token. The
// request token is single use.
func (h *Handshake) Exchange(ctx context.Context, redirect *url.URL) (*authflow.Credential, error) {
	if redirect == nil {
		return nil, fmt.Errorf("redirect cannot be nil")
	}
	q := redirect.Query()
	if q.Has(deniedParam) {
		return nil, ErrDenied
	}

	h.mu.Lock()
	rt := h.requestToken
	h.requestToken = nil
	h.mu.Unlock()
	if rt == nil {
		return nil, ErrNoRequestToken
	}

	if subtle.ConstantTimeCompare([]byte(q.Get(oauth.TOKEN_PARAM)), []byte(rt.Token)) != 1 {
		return nil, ErrTokenMismatch
	}
	verifier := q.Get(oauth.VERIFIER_PARAM)
	if verifier == "" {
		return nil, ErrMissingVerifier
	}

	ctx, done := h.bind(ctx)
	defer done()

	at, err := h.consumer(ctx).AuthorizeToken(rt, verifier)
	if err != nil {
		return nil, fmt.Errorf("access token: %w", h.translate(ctx, err))
	}

	params := make(map[string]string, len(at.AdditionalData))
	for k, v := range at.AdditionalData {
		params[k] = v
	}
	return &authflow.Credential{
		Token:       at.Token,
		TokenSecret: at.Secret,
		Params:      params,
	}, nil
}

// Cancel aborts any request in flight and discards the request token.
func (h *Handshake) Cancel() {
	h.cancel()
	h.mu.Lock()
	h.requestToken = nil
	h.mu.Unlock()
}

// bind derives a context cancelled by either ctx or Cancel.
func (h *Handshake) bind(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(h.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (h *Handshake) consumer(ctx context.Context) *oauth.Consumer {
	c := oauth.NewConsumer(h.cfg.ConsumerKey, h.cfg.ConsumerSecret, oauth.ServiceProvider{
		RequestTokenUrl:   h.cfg.Endpoints.RequestTokenURL,
		AuthorizeTokenUrl: h.cfg.Endpoints.AuthorizeURL,
		AccessTokenUrl:    h.cfg.Endpoints.AccessTokenURL,
		HttpMethod:        http.MethodPost,
	})
	c.HttpClient = &contextClient{ctx: ctx, client: h.client}
	return c
}

// translate maps provider failures onto networking.HTTPError and reports
// cancellation as the context error.
func (*Handshake) translate(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var execErr oauth.HTTPExecuteError
	if errors.As(err, &execErr) {
		return networking.NewHTTPError(execErr.StatusCode, "", string(execErr.ResponseBodyBytes))
	}
	return err
}

// contextClient attaches ctx to every request the consumer sends.
type contextClient struct {
	ctx    context.Context
	client *http.Client
}

func (c *contextClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req.WithContext(c.ctx))
}
