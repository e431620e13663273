// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package authflow

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/stacklok/twauth/pkg/errors"
)

// DefaultSourcePrefixes identify the applications allowed to deliver
// redirects: the provider's own apps and the system web-session service.
var DefaultSourcePrefixes = []string{
	"com.twitter",
	"com.atebits",
	"com.apple.SafariViewService",
}

// CallbackValidator decides whether an inbound redirect belongs to the
// current flow.
type CallbackValidator struct {
	scheme   string
	prefixes []string
}

// NewCallbackValidator creates a validator for callbackScheme that accepts
// DefaultSourcePrefixes plus extra.
func NewCallbackValidator(callbackScheme string, extra ...string) *CallbackValidator {
	prefixes := make([]string, 0, len(DefaultSourcePrefixes)+len(extra))
	prefixes = append(prefixes, DefaultSourcePrefixes...)
	for _, p := range extra {
		if p != "" {
			prefixes = append(prefixes, p)
		}
	}
	return &CallbackValidator{scheme: callbackScheme, prefixes: prefixes}
}

// Accept reports whether u, claimed to come from source, is a callback the
// flow should consume while in state. Redirects are never accepted with no
// flow waiting, nor while a token exchange is already running.
func (v *CallbackValidator) Accept(u *url.URL, source string, state State) bool {
	if u == nil || !strings.EqualFold(u.Scheme, v.scheme) {
		return false
	}
	if !v.SourceAllowed(source) {
		return false
	}
	return state != StateInitial && state != StateRequestingToken
}

// SourceAllowed reports whether source matches one of the allowed prefixes.
func (v *CallbackValidator) SourceAllowed(source string) bool {
	if source == "" {
		return false
	}
	for _, p := range v.prefixes {
		if strings.HasPrefix(source, p) {
			return true
		}
	}
	return false
}

// ParseRedirectURL parses an inbound redirect. Provider applications put
// their payload where a host would be and may percent-encode it, which
// url.Parse refuses; such URLs are kept whole as <scheme>://<opaque payload>
// so ParseSSOResponse can still read them. The URL must carry a scheme.
func ParseRedirectURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err == nil {
		if u.Scheme == "" {
			return nil, errors.NewInvalidArgumentError(fmt.Sprintf("redirect URL %q has no scheme", raw), nil)
		}
		return u, nil
	}

	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return nil, errors.NewInvalidArgumentError(fmt.Sprintf("invalid redirect URL %q", raw), err)
	}
	su, serr := url.Parse(scheme + ":")
	if serr != nil || su.Scheme == "" {
		return nil, errors.NewInvalidArgumentError(fmt.Sprintf("invalid redirect URL %q", raw), err)
	}

	// the fragment is dropped
	rest, _, _ = strings.Cut(rest, "#")
	rest, query, _ := strings.Cut(rest, "?")
	return &url.URL{Scheme: su.Scheme, Opaque: "//" + rest, RawQuery: query}, nil
}

// SSOResponse holds the credentials returned by the provider application.
type SSOResponse struct {
	Token    string
	Secret   string
	Username string
}

// ParseSSOResponse extracts token, secret and username from an SSO redirect.
//
// The provider app may double-encode its reply, so everything after the
// scheme is read from the raw URL components and parsed as a query string
// rather than trusted as already decoded. Duplicate keys keep the last value.
func ParseSSOResponse(u *url.URL) (SSOResponse, bool) {
	if u == nil {
		return SSOResponse{}, false
	}

	payload := ssoPayload(u)
	values := parseLooseQuery(payload)
	if len(values) == 0 && strings.Contains(payload, "%") {
		if decoded, err := url.PathUnescape(payload); err == nil {
			values = parseLooseQuery(decoded)
		}
	}

	token, okToken := values["token"]
	secret, okSecret := values["secret"]
	username, okUser := values["username"]
	if !okToken || !okSecret || !okUser {
		return SSOResponse{}, false
	}
	return SSOResponse{Token: token, Secret: secret, Username: username}, true
}

// ssoPayload joins the non-scheme parts of u into one query-like string.
func ssoPayload(u *url.URL) string {
	parts := make([]string, 0, 3)
	if u.Opaque != "" {
		parts = append(parts, strings.TrimLeft(u.Opaque, "/"))
	}
	if u.Host != "" {
		parts = append(parts, u.Host)
	}
	if p := strings.TrimLeft(u.EscapedPath(), "/"); p != "" {
		parts = append(parts, p)
	}
	if u.RawQuery != "" {
		parts = append(parts, u.RawQuery)
	}
	return strings.Join(parts, "&")
}

// parseLooseQuery parses key=value pairs separated by '&'. Pairs without '='
// or with invalid escapes are skipped instead of failing the whole payload.
func parseLooseQuery(s string) map[string]string {
	values := make(map[string]string)
	for _, pair := range strings.Split(s, "&") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			continue
		}
		k, err := url.QueryUnescape(key)
		if err != nil {
			continue
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			continue
		}
		values[k] = v
	}
	return values
}
