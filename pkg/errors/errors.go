// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package errors provides the typed error used across twauth.
package errors

import (
	"errors"
	"fmt"
)

// Error types
const (
	// ErrInvalidArgument is returned when an invalid argument is provided
	ErrInvalidArgument = "invalid_argument"

	// ErrLaunchFailure is returned when the SSO handoff URL could not be built or opened
	ErrLaunchFailure = "launch_failure"

	// ErrSessionStart is returned when the web authentication surface could not be shown
	ErrSessionStart = "session_start"

	// ErrHandshake is returned when the OAuth1 token exchange fails
	ErrHandshake = "handshake"

	// ErrFlowInProgress is returned when an authentication flow is already running
	ErrFlowInProgress = "flow_in_progress"

	// ErrRelay is returned when a redirect could not be forwarded to a running login
	ErrRelay = "relay"

	// ErrInternal is returned when there is an internal error
	ErrInternal = "internal"
)

// Error represents an error in the application
type Error struct {
	// Type is the error type
	Type string

	// Message is the error message
	Message string

	// Cause is the underlying error
	Cause error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new error
func NewError(errorType, message string, cause error) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidArgumentError creates a new invalid argument error
func NewInvalidArgumentError(message string, cause error) *Error {
	return NewError(ErrInvalidArgument, message, cause)
}

// NewLaunchFailureError creates a new launch failure error
func NewLaunchFailureError(message string, cause error) *Error {
	return NewError(ErrLaunchFailure, message, cause)
}

// NewSessionStartError creates a new session start error
func NewSessionStartError(message string, cause error) *Error {
	return NewError(ErrSessionStart, message, cause)
}

// NewHandshakeError creates a new handshake error
func NewHandshakeError(message string, cause error) *Error {
	return NewError(ErrHandshake, message, cause)
}

// NewFlowInProgressError creates a new flow in progress error
func NewFlowInProgressError(message string, cause error) *Error {
	return NewError(ErrFlowInProgress, message, cause)
}

// NewRelayError creates a new relay error
func NewRelayError(message string, cause error) *Error {
	return NewError(ErrRelay, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *Error {
	return NewError(ErrInternal, message, cause)
}

func isType(err error, errorType string) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == errorType
}

// IsInvalidArgument checks if the error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return isType(err, ErrInvalidArgument)
}

// IsLaunchFailure checks if the error is a launch failure error
func IsLaunchFailure(err error) bool {
	return isType(err, ErrLaunchFailure)
}

// IsSessionStart checks if the error is a session start error
func IsSessionStart(err error) bool {
	return isType(err, ErrSessionStart)
}

// IsHandshake checks if the error is a handshake error
func IsHandshake(err error) bool {
	return isType(err, ErrHandshake)
}

// IsFlowInProgress checks if the error is a flow in progress error
func IsFlowInProgress(err error) bool {
	return isType(err, ErrFlowInProgress)
}

// IsRelay checks if the error is a relay error
func IsRelay(err error) bool {
	return isType(err, ErrRelay)
}
