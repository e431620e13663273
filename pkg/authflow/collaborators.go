// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package authflow

import (
	"context"
	"net/url"

	"github.com/stacklok/twauth/pkg/handoff"
)

//go:generate mockgen -destination=mocks/mock_collaborators.go -package=mocks -source=collaborators.go Launcher,Handshake,SessionFactory,Session,Observer

// Launcher attempts the single-sign-on handoff. handoff.Launcher implements it.
type Launcher interface {
	Attempt(ctx context.Context, req handoff.Request) bool
}

// HandshakeConfig configures one OAuth1 exchange.
type HandshakeConfig struct {
	ConsumerKey    string
	ConsumerSecret string
	Endpoints      Endpoints
}

// Credential is an OAuth1 access token together with the extra parameters
// the provider returned alongside it.
type Credential struct {
	Token       string
	TokenSecret string
	Params      map[string]string
}

// Handshake is one three-legged OAuth1 exchange.
type Handshake interface {
	// RequestToken obtains a request token for callbackURL and returns the
	// URL the user must visit to authorize it.
	RequestToken(ctx context.Context, callbackURL string) (*url.URL, error)
	// Exchange trades the verifier carried by redirect for an access token.
	Exchange(ctx context.Context, redirect *url.URL) (*Credential, error)
	// Cancel aborts any request in flight and releases the exchange.
	Cancel()
}

// HandshakeFactory creates a fresh Handshake for each browser flow.
type HandshakeFactory func(cfg HandshakeConfig) (Handshake, error)

// SessionFactory presents authorize URLs to the user. The implementation is
// chosen once, when the Authenticator is built, to suit the host.
type SessionFactory interface {
	// CallbackURL is the OAuth callback the provider should redirect to for
	// callbackScheme.
	CallbackURL(callbackScheme string) (string, error)
	// NewSession prepares a session for authorizeURL. done is called at most
	// once with the completion URL, ErrCanceledLogin, a nil URL and nil error
	// for a dismissal, or any other error.
	NewSession(authorizeURL *url.URL, callbackScheme string, done func(*url.URL, error)) Session
}

// Session is a presented web authentication surface.
type Session interface {
	// Start shows the surface. False means it could not be shown at all.
	Start() bool
	// Dismiss removes the surface. A dismissed session never calls done.
	Dismiss()
}

// Observer receives flow events, typically for metrics.
type Observer interface {
	FlowStarted()
	PathSelected(path Path)
	FlowCompleted(status Status)
	RedirectRejected()
}

type noopObserver struct{}

func (noopObserver) FlowStarted()         {}
func (noopObserver) PathSelected(Path)    {}
func (noopObserver) FlowCompleted(Status) {}
func (noopObserver) RedirectRejected()    {}
