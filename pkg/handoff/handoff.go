// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package handoff attempts single-sign-on by handing the authorization
// request to the provider's installed application through its URL scheme.
package handoff

import (
	"context"
	"fmt"
	"net/url"

	"github.com/stacklok/twauth/pkg/errors"
	"github.com/stacklok/twauth/pkg/logger"
)

// DefaultScheme is the URL scheme registered by the Twitter application.
const DefaultScheme = "twitterauth"

//go:generate mockgen -destination=mocks/mock_opener.go -package=mocks -source=handoff.go Opener

// Opener asks the host environment to open a URL. It reports whether the
// environment accepted the URL, which says nothing about what the receiving
// application does with it.
type Opener interface {
	Open(ctx context.Context, u *url.URL) (bool, error)
}

// Request carries the values sent to the provider application.
type Request struct {
	// Scheme is the provider application's URL scheme. Empty selects the
	// Launcher's scheme.
	Scheme         string
	ConsumerKey    string
	ConsumerSecret string
	CallbackScheme string
	// ForceBrowser skips the handoff entirely.
	ForceBrowser bool
}

// Launcher builds handoff URLs and passes them to an Opener.
type Launcher struct {
	opener Opener
	scheme string
}

// NewLauncher creates a Launcher whose scheme is used for requests that do
// not name one. An empty scheme selects DefaultScheme.
func NewLauncher(opener Opener, scheme string) *Launcher {
	if scheme == "" {
		scheme = DefaultScheme
	}
	return &Launcher{opener: opener, scheme: scheme}
}

// URL builds <scheme>://authorize?consumer_key=...&consumer_secret=...&oauth_callback=<callback scheme>.
func (l *Launcher) URL(req Request) (*url.URL, error) {
	if req.ConsumerKey == "" || req.CallbackScheme == "" {
		return nil, errors.NewLaunchFailureError("consumer key and callback scheme are required", nil)
	}
	raw := fmt.Sprintf("%s://authorize?%s", l.schemeFor(req), url.Values{
		"consumer_key":    {req.ConsumerKey},
		"consumer_secret": {req.ConsumerSecret},
		"oauth_callback":  {req.CallbackScheme},
	}.Encode())

	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.NewLaunchFailureError("invalid handoff URL", err)
	}
	return u, nil
}

// Attempt tries the handoff and reports whether the host accepted it. A
// false result means the handoff is unavailable and the caller should fall
// back to the browser; it is never an error.
func (l *Launcher) Attempt(ctx context.Context, req Request) bool {
	if req.ForceBrowser {
		return false
	}

	u, err := l.URL(req)
	if err != nil {
		logger.Debugf("SSO handoff unavailable: %v", err)
		return false
	}

	accepted, err := l.opener.Open(ctx, u)
	if err != nil {
		logger.Debugf("SSO handoff unavailable: %v", errors.NewLaunchFailureError("host refused handoff URL", err))
		return false
	}
	if !accepted {
		logger.Debugf("Host declined %s:// handoff", u.Scheme)
	}
	return accepted
}

func (l *Launcher) schemeFor(req Request) string {
	if req.Scheme != "" {
		return req.Scheme
	}
	return l.scheme
}
