// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package authflow

import (
	"errors"
	"net/url"
)

// Status is the terminal outcome of a login flow.
type Status int

const (
	// StatusSuccess means credentials were obtained.
	StatusSuccess Status = iota
	// StatusFailed means the flow ended with an error. Err may be nil.
	StatusFailed
	// StatusCancelled means the user or the caller abandoned the flow.
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result is delivered exactly once per Authenticate call.
type Result struct {
	Status      Status `json:"status" yaml:"status"`
	Token       string `json:"token,omitempty" yaml:"token,omitempty"`
	TokenSecret string `json:"token_secret,omitempty" yaml:"token_secret,omitempty"`
	ScreenName  string `json:"screen_name,omitempty" yaml:"screen_name,omitempty"`
	Err         error  `json:"-" yaml:"-"`
}

// Succeeded creates a successful Result.
func Succeeded(token, tokenSecret, screenName string) Result {
	return Result{Status: StatusSuccess, Token: token, TokenSecret: tokenSecret, ScreenName: screenName}
}

// Failed creates a failed Result. err may be nil when no detail is available.
func Failed(err error) Result {
	return Result{Status: StatusFailed, Err: err}
}

// Cancelled creates a cancelled Result.
func Cancelled() Result {
	return Result{Status: StatusCancelled}
}

// MarshalText lets Status render as its name in JSON and YAML.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var (
	// ErrCanceledLogin is reported by a web session when the provider or the
	// user cancelled the login. It maps to StatusCancelled.
	ErrCanceledLogin = errors.New("login cancelled")

	// ErrHandoffTimeout fails a handoff that stayed pending past Config.SSOTimeout.
	ErrHandoffTimeout = errors.New("timed out waiting for the provider application")
)

type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeFailed
	outcomeCancelled
)

// outcome is what one asynchronous leg reports back.
type outcome struct {
	kind outcomeKind
	url  *url.URL
	err  error
}

func callbackOutcome(u *url.URL) outcome {
	return outcome{kind: outcomeSuccess, url: u}
}

// sessionOutcome classifies what a web session reported.
func sessionOutcome(u *url.URL, err error) outcome {
	switch {
	case err == nil && u != nil:
		return callbackOutcome(u)
	case err == nil, errors.Is(err, ErrCanceledLogin):
		return outcome{kind: outcomeCancelled, err: err}
	default:
		return outcome{kind: outcomeFailed, err: err}
	}
}
