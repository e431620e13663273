// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package relay forwards URL-open events from other processes to a running
// login. A login serves the relay on loopback and publishes its address and
// token in a state file; `twauth open-url` reads the file and posts the URL.
package relay

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stacklok/twauth/pkg/authflow"
	"github.com/stacklok/twauth/pkg/logger"
)

const (
	// TokenHeader carries the relay token.
	TokenHeader = "X-Relay-Token"

	// RedirectPath is where URL-open events are posted.
	RedirectPath = "/v1/redirect"
	// HealthPath answers 204 while the relay is up.
	HealthPath = "/healthz"
	// MetricsPath exposes the login's Prometheus metrics.
	MetricsPath = "/metrics"

	maxBodyBytes      = 64 << 10
	middlewareTimeout = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

//go:generate mockgen -destination=mocks/mock_redirector.go -package=mocks -source=server.go Redirector

// Redirector consumes URL-open events. authflow.Authenticator implements it.
type Redirector interface {
	HandleRedirect(u *url.URL, source string) bool
}

// RedirectRequest is the body of a redirect post.
type RedirectRequest struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// RedirectResponse reports whether the login consumed the redirect.
type RedirectResponse struct {
	Handled bool `json:"handled"`
}

// ServerOption customizes a Server.
type ServerOption func(*Server)

// WithMetricsHandler serves h on /metrics.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

// Server is the relay HTTP endpoint.
type Server struct {
	redirector Redirector
	token      string
	metrics    http.Handler
}

// NewServer creates a Server accepting redirects authenticated with token.
func NewServer(redirector Redirector, token string, opts ...ServerOption) *Server {
	s := &Server{redirector: redirector, token: token}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the relay routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Timeout(middlewareTimeout),
	)

	r.Get(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if s.metrics != nil {
		r.Handle(MetricsPath, s.metrics)
	}
	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Post(RedirectPath, s.postRedirect)
	})
	return r
}

// Serve serves the relay on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		BaseContext:       func(net.Listener) context.Context { return ctx },
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Debugf("Starting relay on %s", listener.Addr())
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("relay server stopped: %w", err)
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("relay shutdown failed: %w", err)
	}
	logger.Debug("Relay stopped")
	return nil
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(TokenHeader)
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
			writeJSONError(w, http.StatusUnauthorized, "invalid relay token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) postRedirect(w http.ResponseWriter, r *http.Request) {
	var req RedirectRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := authflow.ParseRedirectURL(req.URL)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "url must be absolute")
		return
	}

	handled := s.redirector.HandleRedirect(u, req.Source)
	logger.Debugw("Relayed redirect", "scheme", u.Scheme, "source", req.Source, "handled", handled)
	writeJSON(w, http.StatusOK, RedirectResponse{Handled: handled})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warnf("Failed to write relay response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
