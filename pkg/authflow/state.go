// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package authflow

// State is the position of an Authenticator in its login flow.
type State int

const (
	// StateInitial means no flow is waiting on a redirect.
	StateInitial State = iota
	// StateSSOPending means the provider application accepted the handoff.
	StateSSOPending
	// StateBrowserPending means the OAuth1 flow is running in a web session.
	StateBrowserPending
	// StateRequestingToken means a redirect was accepted and is being turned into credentials.
	StateRequestingToken
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateSSOPending:
		return "sso_pending"
	case StateBrowserPending:
		return "browser_pending"
	case StateRequestingToken:
		return "requesting_token"
	default:
		return "unknown"
	}
}

// Path identifies which leg of the flow is running.
type Path string

const (
	// PathSSO is the application handoff.
	PathSSO Path = "sso"
	// PathBrowser is the web session running OAuth1.
	PathBrowser Path = "browser"
)
