// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "error with cause",
			err:  NewHandshakeError("access token exchange failed", errors.New("401 Unauthorized")),
			want: "handshake: access token exchange failed: 401 Unauthorized",
		},
		{
			name: "error without cause",
			err:  NewSessionStartError("no presentation surface", nil),
			want: "session_start: no presentation surface",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("underlying error")
	err := NewInternalError("test message", cause)
	assert.Equal(t, ErrInternal, err.Type)
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, NewInternalError("test message", nil).Unwrap())
}

func TestIsHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"invalid argument", NewInvalidArgumentError("bad scheme", nil), IsInvalidArgument, true},
		{"launch failure", NewLaunchFailureError("refused", nil), IsLaunchFailure, true},
		{"session start", NewSessionStartError("no surface", nil), IsSessionStart, true},
		{"handshake", NewHandshakeError("exchange", nil), IsHandshake, true},
		{"flow in progress", NewFlowInProgressError("busy", nil), IsFlowInProgress, true},
		{"relay", NewRelayError("unreachable", nil), IsRelay, true},
		{"wrapped session start", fmt.Errorf("browser: %w", NewSessionStartError("no surface", nil)), IsSessionStart, true},
		{"wrong type", NewHandshakeError("exchange", nil), IsSessionStart, false},
		{"plain error", errors.New("plain"), IsHandshake, false},
		{"nil error", nil, IsRelay, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}
