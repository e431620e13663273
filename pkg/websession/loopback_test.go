// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package websession

import (
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/twauth/pkg/authflow"
)

type fakePresenter struct {
	mu        sync.Mutex
	presented []*url.URL
	err       error
}

func (p *fakePresenter) Present(u *url.URL) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.presented = append(p.presented, u)
	return p.err
}

type completion struct {
	url *url.URL
	err error
}

type harness struct {
	loopback    *Loopback
	presenter   *fakePresenter
	callbackURL string
	session     authflow.Session
	results     chan completion
}

var authorizeURL = &url.URL{Scheme: "https", Host: "api.twitter.com", Path: "/oauth/authorize", RawQuery: "oauth_token=rt"}

func newHarness(t *testing.T, presentErr error) *harness {
	t.Helper()

	h := &harness{
		presenter: &fakePresenter{err: presentErr},
		results:   make(chan completion, 4),
	}
	h.loopback = NewLoopback(h.presenter, 0)
	t.Cleanup(func() { _ = h.loopback.Close() })

	callbackURL, err := h.loopback.CallbackURL("twitterkitkey")
	require.NoError(t, err)
	h.callbackURL = callbackURL

	h.session = h.loopback.NewSession(authorizeURL, "twitterkitkey", func(u *url.URL, err error) {
		h.results <- completion{url: u, err: err}
	})
	t.Cleanup(h.session.Dismiss)
	return h
}

func (h *harness) get(t *testing.T, rawURL string) (int, string) {
	t.Helper()
	resp, err := http.Get(rawURL) // #nosec G107 - loopback test server
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (h *harness) next(t *testing.T) completion {
	t.Helper()
	select {
	case c := <-h.results:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("session did not report")
		return completion{}
	}
}

func (h *harness) assertSilent(t *testing.T) {
	t.Helper()
	select {
	case c := <-h.results:
		t.Fatalf("unexpected completion: %+v", c)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestLoopback_CallbackURL(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	u, err := url.Parse(h.callbackURL)
	require.NoError(t, err)
	assert.Equal(t, "http", u.Scheme)
	assert.Equal(t, "127.0.0.1", u.Hostname())
	assert.Equal(t, "/callback", u.Path)
}

func TestLoopback_CallbackURLReleasesUnclaimedPort(t *testing.T) {
	t.Parallel()

	l := NewLoopback(&fakePresenter{}, 0)
	t.Cleanup(func() { _ = l.Close() })

	first, err := l.CallbackURL("twitterkitkey")
	require.NoError(t, err)
	_, err = l.CallbackURL("twitterkitkey")
	require.NoError(t, err)

	_, err = http.Get(first) // #nosec G107 - loopback test server
	assert.Error(t, err, "the first reservation must be closed")
}

func TestLoopback_CallbackURLBusyPort(t *testing.T) {
	t.Parallel()

	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = busy.Close() })
	busyPort := busy.Addr().(*net.TCPAddr).Port

	l := NewLoopback(&fakePresenter{}, busyPort)
	t.Cleanup(func() { _ = l.Close() })

	raw, err := l.CallbackURL("twitterkitkey")
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", u.Hostname())
	assert.NotEqual(t, strconv.Itoa(busyPort), u.Port())
}

func TestLoopback_CallbackURLFixedPort(t *testing.T) {
	t.Parallel()

	free, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := free.Addr().(*net.TCPAddr).Port
	require.NoError(t, free.Close())

	l := NewLoopback(&fakePresenter{}, port)
	t.Cleanup(func() { _ = l.Close() })

	first, err := l.CallbackURL("twitterkitkey")
	require.NoError(t, err)
	// The previous reservation is released before the port is bound again.
	second, err := l.CallbackURL("twitterkitkey")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSession_Success(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	require.True(t, h.session.Start())
	require.Len(t, h.presenter.presented, 1)
	assert.Equal(t, authorizeURL, h.presenter.presented[0])

	status, body := h.get(t, h.callbackURL+"?oauth_token=rt&oauth_verifier=v1")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Authentication Successful")

	c := h.next(t)
	require.NoError(t, c.err)
	require.NotNil(t, c.url)
	assert.Equal(t, "twitterkitkey", c.url.Scheme)
	assert.Equal(t, "callback", c.url.Host)
	assert.Equal(t, "rt", c.url.Query().Get("oauth_token"))
	assert.Equal(t, "v1", c.url.Query().Get("oauth_verifier"))

	// Only the first callback is reported.
	status, _ = h.get(t, h.callbackURL+"?oauth_token=rt&oauth_verifier=v2")
	assert.Equal(t, http.StatusOK, status)
	h.assertSilent(t)
}

func TestSession_Outcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantErr    error
		wantAnyErr bool
		wantBody   string
	}{
		{
			name:       "denied",
			path:       "/callback?denied=rt",
			wantStatus: http.StatusOK,
			wantErr:    authflow.ErrCanceledLogin,
			wantBody:   "Authentication Cancelled",
		},
		{
			name:       "missing verifier",
			path:       "/callback?oauth_token=rt",
			wantStatus: http.StatusBadRequest,
			wantAnyErr: true,
			wantBody:   "Authentication Failed",
		},
		{
			name:       "user cancel",
			path:       "/cancel",
			wantStatus: http.StatusOK,
			wantBody:   "Authentication Cancelled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, nil)
			require.True(t, h.session.Start())

			base := strings.TrimSuffix(h.callbackURL, "/callback")
			status, body := h.get(t, base+tt.path)
			assert.Equal(t, tt.wantStatus, status)
			assert.Contains(t, body, tt.wantBody)

			c := h.next(t)
			assert.Nil(t, c.url)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, c.err, tt.wantErr)
			case tt.wantAnyErr:
				assert.Error(t, c.err)
			default:
				assert.NoError(t, c.err)
			}
		})
	}
}

func TestSession_RootPage(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	require.True(t, h.session.Start())

	base := strings.TrimSuffix(h.callbackURL, "/callback")
	resp, err := http.Get(base + "/") // #nosec G107 - loopback test server
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Contains(t, string(body), "oauth_token=rt")
	assert.Contains(t, string(body), `href="/cancel"`)

	status, _ := h.get(t, base+"/missing")
	assert.Equal(t, http.StatusNotFound, status)
	h.assertSilent(t)
}

func TestSession_PresentFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t, errors.New("no surface"))
	assert.False(t, h.session.Start())

	_, err := http.Get(h.callbackURL + "?oauth_token=rt&oauth_verifier=v") // #nosec G107 - loopback test server
	assert.Error(t, err)
	h.assertSilent(t)
}

func TestSession_DismissStopsReporting(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	require.True(t, h.session.Start())
	h.session.Dismiss()
	h.session.Dismiss()

	_, err := http.Get(h.callbackURL + "?oauth_token=rt&oauth_verifier=v") // #nosec G107 - loopback test server
	assert.Error(t, err)
	h.assertSilent(t)
}

func TestSession_DismissBeforeStart(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.session.Dismiss()
	assert.False(t, h.session.Start())
	assert.Empty(t, h.presenter.presented)
}

func TestSession_WithoutReservation(t *testing.T) {
	t.Parallel()

	l := NewLoopback(&fakePresenter{}, 0)
	s := l.NewSession(authorizeURL, "twitterkitkey", func(*url.URL, error) {})
	assert.False(t, s.Start())
}
