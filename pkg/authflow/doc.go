// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package authflow implements provider login with a single-sign-on handoff
// and a browser-hosted OAuth1 fallback.
//
// An [Authenticator] first asks the provider's installed application to
// authorize the consumer. When the handoff is unavailable it runs the
// three-legged OAuth1 flow in a web session instead. Redirects arriving from
// outside the process are fed in through [Authenticator.HandleRedirect].
// Every call to [Authenticator.Authenticate] delivers exactly one [Result],
// whichever path completes and whichever cancellation source fires first:
//
//   - the web session is dismissed or the provider reports a cancelled login
//   - the host returns to the foreground while the handoff is pending
//   - the context passed to Authenticate is cancelled
//
// Collaborators (the handoff launcher, web session, OAuth1 handshake and
// foreground notifications) are injected, so the state machine runs the same
// way under test as it does in a real host.
package authflow
