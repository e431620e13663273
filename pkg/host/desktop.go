// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package host adapts the desktop the CLI runs on: opening URLs through the
// system handlers and choosing where an authorize page is shown.
package host

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"runtime"
	"strings"

	"github.com/pkg/browser"

	"github.com/stacklok/toolhive-core/env"

	"github.com/stacklok/twauth/pkg/logger"
)

// Surface is where an authorize page is presented.
type Surface int

const (
	// SurfaceNone means nothing can be shown.
	SurfaceNone Surface = iota
	// SurfaceBrowser is the system web browser.
	SurfaceBrowser
	// SurfaceConsole prints the URL for the user to open by hand.
	SurfaceConsole
)

func (s Surface) String() string {
	switch s {
	case SurfaceNone:
		return "none"
	case SurfaceBrowser:
		return "browser"
	case SurfaceConsole:
		return "console"
	default:
		return "unknown"
	}
}

// Option customizes a Desktop.
type Option func(*Desktop)

// WithBrowserOpen overrides how URLs are handed to the system. By default an
// implementation using https://github.com/pkg/browser is used.
func WithBrowserOpen(openURL func(string) error) Option {
	return func(d *Desktop) {
		d.openURL = openURL
	}
}

// WithSchemes registers the custom URL schemes this desktop has handlers for.
func WithSchemes(schemes ...string) Option {
	return func(d *Desktop) {
		for _, s := range schemes {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				d.schemes[s] = struct{}{}
			}
		}
	}
}

// WithNoBrowser forces the console surface.
func WithNoBrowser(noBrowser bool) Option {
	return func(d *Desktop) {
		d.noBrowser = noBrowser
	}
}

// WithOutput sets where console prompts are written. A nil writer disables
// the console surface.
func WithOutput(w io.Writer) Option {
	return func(d *Desktop) {
		d.out = w
	}
}

// WithEnv sets the environment used to detect a graphical session.
func WithEnv(r env.Reader) Option {
	return func(d *Desktop) {
		d.env = r
	}
}

// Desktop is the host the CLI runs on.
type Desktop struct {
	openURL   func(string) error
	schemes   map[string]struct{}
	noBrowser bool
	out       io.Writer
	env       env.Reader
	goos      string
}

// NewDesktop creates a Desktop.
func NewDesktop(opts ...Option) *Desktop {
	d := &Desktop{
		openURL: browser.OpenURL,
		schemes: map[string]struct{}{},
		out:     os.Stderr,
		env:     &env.OSReader{},
		goos:    runtime.GOOS,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open asks the system to open u. Web URLs are always handed over; custom
// schemes only when a handler is registered for them. It reports whether
// something accepted the URL.
func (d *Desktop) Open(ctx context.Context, u *url.URL) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if u == nil {
		return false, fmt.Errorf("url cannot be nil")
	}

	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case "http", "https":
	default:
		if _, ok := d.schemes[scheme]; !ok {
			logger.Debugw("No handler registered for scheme", "scheme", scheme)
			return false, nil
		}
	}

	if err := d.openURL(u.String()); err != nil {
		return false, fmt.Errorf("failed to open %s URL: %w", scheme, err)
	}
	return true, nil
}

// Surface returns where an authorize page would be shown right now.
func (d *Desktop) Surface() (Surface, error) {
	if !d.noBrowser && !d.headless() {
		return SurfaceBrowser, nil
	}
	if d.out != nil {
		return SurfaceConsole, nil
	}
	return SurfaceNone, fmt.Errorf("no presentation surface is available")
}

// Present shows authorizeURL on the current surface. A browser that fails
// to open falls back to the console when one is available.
func (d *Desktop) Present(authorizeURL *url.URL) error {
	surface, err := d.Surface()
	if err != nil {
		return err
	}

	if surface == SurfaceBrowser {
		logger.Infof("Opening browser to: %s", authorizeURL.Redacted())
		err := d.openURL(authorizeURL.String())
		if err == nil {
			return nil
		}
		if d.out == nil {
			return fmt.Errorf("failed to open browser: %w", err)
		}
		logger.Warnf("Failed to open browser: %v", err)
	}

	_, err = fmt.Fprintf(d.out, "Please open this URL in your browser to authorize:\n\n  %s\n\n", authorizeURL.String())
	return err
}

// headless reports a Linux or BSD session without a display server.
func (d *Desktop) headless() bool {
	switch d.goos {
	case "darwin", "windows":
		return false
	}
	return d.env.Getenv("DISPLAY") == "" && d.env.Getenv("WAYLAND_DISPLAY") == ""
}
