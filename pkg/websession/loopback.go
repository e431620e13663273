// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package websession presents the OAuth1 authorize page and receives the
// provider's callback on a loopback HTTP server.
package websession

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/stacklok/twauth/pkg/authflow"
	"github.com/stacklok/twauth/pkg/logger"
	"github.com/stacklok/twauth/pkg/networking"
)

const (
	callbackPath = "/callback"
	cancelPath   = "/cancel"

	// completionHost is the host of the completion URL handed to the flow.
	completionHost = "callback"

	shutdownTimeout = 5 * time.Second
)

// Presenter shows an authorize URL to the user. host.Desktop implements it.
type Presenter interface {
	Present(authorizeURL *url.URL) error
}

// Loopback is an authflow.SessionFactory serving callbacks on 127.0.0.1.
type Loopback struct {
	presenter Presenter
	port      int

	mu sync.Mutex
	// reserved is bound by CallbackURL and handed to the next session.
	reserved net.Listener
}

var _ authflow.SessionFactory = (*Loopback)(nil)

// NewLoopback creates a Loopback. A port of 0 picks a free port per session.
func NewLoopback(presenter Presenter, port int) *Loopback {
	return &Loopback{presenter: presenter, port: port}
}

// CallbackURL reserves a loopback port and returns the OAuth callback URL
// pointing at it.
func (l *Loopback) CallbackURL(_ string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// An unclaimed reservation belongs to a flow that never got a session.
	closeListener(l.reserved)
	l.reserved = nil

	listener, err := networking.ListenLoopbackOrAny(l.port)
	if err != nil {
		return "", fmt.Errorf("failed to reserve callback port: %w", err)
	}
	l.reserved = listener

	u := url.URL{
		Scheme: "http",
		Host:   networking.LoopbackAddr(networking.ListenerPort(listener)),
		Path:   callbackPath,
	}
	return u.String(), nil
}

// NewSession prepares a session serving the listener reserved by the last
// CallbackURL call.
func (l *Loopback) NewSession(authorizeURL *url.URL, callbackScheme string, done func(*url.URL, error)) authflow.Session {
	l.mu.Lock()
	listener := l.reserved
	l.reserved = nil
	l.mu.Unlock()

	return &session{
		presenter:      l.presenter,
		listener:       listener,
		authorizeURL:   authorizeURL,
		callbackScheme: callbackScheme,
		done:           done,
	}
}

// Close releases a reserved port no session has claimed.
func (l *Loopback) Close() error {
	l.mu.Lock()
	listener := l.reserved
	l.reserved = nil
	l.mu.Unlock()

	if listener == nil {
		return nil
	}
	return listener.Close()
}

type session struct {
	presenter      Presenter
	listener       net.Listener
	authorizeURL   *url.URL
	callbackScheme string
	done           func(*url.URL, error)

	mu        sync.Mutex
	server    *http.Server
	reported  bool
	dismissed bool
}

// Start serves the callback endpoints and presents the authorize URL.
func (s *session) Start() bool {
	if s.listener == nil || s.authorizeURL == nil {
		return false
	}

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, s.handleCallback)
	mux.HandleFunc(cancelPath, s.handleCancel)
	mux.HandleFunc("/", s.handleRoot)

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	if s.dismissed {
		s.mu.Unlock()
		closeListener(s.listener)
		return false
	}
	s.server = server
	s.mu.Unlock()

	go func() {
		logger.Debugf("Starting OAuth callback server on %s", s.listener.Addr())
		if err := server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warnf("OAuth callback server stopped: %v", err)
		}
	}()

	if err := s.presenter.Present(s.authorizeURL); err != nil {
		logger.Warnf("Failed to present authorize page: %v", err)
		s.shutdown()
		return false
	}
	logger.Info("Waiting for OAuth callback...")
	return true
}

// Dismiss stops the callback server. No completion is reported afterwards.
func (s *session) Dismiss() {
	s.mu.Lock()
	if s.dismissed {
		s.mu.Unlock()
		return
	}
	s.dismissed = true
	started := s.server != nil
	s.mu.Unlock()

	if started {
		s.shutdown()
	} else {
		closeListener(s.listener)
	}
}

func (s *session) shutdown() {
	s.mu.Lock()
	server := s.server
	s.mu.Unlock()
	if server == nil {
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("Failed to shutdown OAuth callback server: %v", err)
	}
}

// report delivers the session outcome once. The callback runs on its own
// goroutine so the handler can finish before the flow tears the server down.
func (s *session) report(u *url.URL, err error) {
	s.mu.Lock()
	if s.reported || s.dismissed {
		s.mu.Unlock()
		return
	}
	s.reported = true
	s.mu.Unlock()

	go s.done(u, err)
}

func (s *session) handleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	if query.Has("denied") {
		writePage(w, http.StatusOK, cancelledPage)
		s.report(nil, authflow.ErrCanceledLogin)
		return
	}
	if query.Get("oauth_token") == "" || query.Get("oauth_verifier") == "" {
		err := errors.New("callback is missing oauth_token or oauth_verifier")
		writeErrorPage(w, err)
		s.report(nil, err)
		return
	}

	writePage(w, http.StatusOK, successPage)
	s.report(&url.URL{
		Scheme:   s.callbackScheme,
		Host:     completionHost,
		RawQuery: r.URL.RawQuery,
	}, nil)
}

func (s *session) handleCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writePage(w, http.StatusOK, cancelledPage)
	s.report(nil, nil)
}

func (s *session) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writePage(w, http.StatusOK, pendingPage(s.authorizeURL.String()))
}

func closeListener(l net.Listener) {
	if l == nil {
		return
	}
	if err := l.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		logger.Warnf("Failed to close callback listener: %v", err)
	}
}
