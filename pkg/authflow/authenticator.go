// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package authflow

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stacklok/twauth/pkg/errors"
	"github.com/stacklok/twauth/pkg/lifecycle"
	"github.com/stacklok/twauth/pkg/logger"
)

// Dependencies are the collaborators an Authenticator drives.
type Dependencies struct {
	// Launcher attempts the application handoff.
	Launcher Launcher
	// Foreground reports the host becoming active again.
	Foreground lifecycle.Source
	// Sessions presents the browser flow.
	Sessions SessionFactory
	// Handshakes creates the OAuth1 exchange for each browser flow.
	Handshakes HandshakeFactory
	// Observer is optional.
	Observer Observer
}

// Authenticator runs one login flow at a time and delivers its Result
// exactly once.
type Authenticator struct {
	cfg        *Config
	validator  *CallbackValidator
	launcher   Launcher
	foreground lifecycle.Source
	sessions   SessionFactory
	handshakes HandshakeFactory
	observer   Observer

	mu    sync.Mutex
	state State
	// gen identifies the running flow. Completions carrying another value are stale.
	gen  uint64
	flow *flow
}

// flow holds everything owned by one Authenticate call.
type flow struct {
	id       string
	onResult func(Result)
	ctx      context.Context
	cancel   context.CancelFunc

	stopCtx   func() bool
	disarm    func()
	timer     *time.Timer
	session   Session
	handshake Handshake
}

// New creates an Authenticator.
func New(cfg *Config, deps Dependencies) (*Authenticator, error) {
	if cfg == nil {
		return nil, errors.NewInvalidArgumentError("config cannot be nil", nil)
	}
	switch {
	case deps.Launcher == nil:
		return nil, errors.NewInvalidArgumentError("launcher is required", nil)
	case deps.Foreground == nil:
		return nil, errors.NewInvalidArgumentError("foreground source is required", nil)
	case deps.Sessions == nil:
		return nil, errors.NewInvalidArgumentError("session factory is required", nil)
	case deps.Handshakes == nil:
		return nil, errors.NewInvalidArgumentError("handshake factory is required", nil)
	}

	observer := deps.Observer
	if observer == nil {
		observer = noopObserver{}
	}

	return &Authenticator{
		cfg:        cfg,
		validator:  NewCallbackValidator(cfg.CallbackScheme(), cfg.AllowedSources...),
		launcher:   deps.Launcher,
		foreground: deps.Foreground,
		sessions:   deps.Sessions,
		handshakes: deps.Handshakes,
		observer:   observer,
	}, nil
}

// State returns the current state.
func (a *Authenticator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Authenticate starts a login flow and returns immediately. onResult is
// called exactly once, from whichever goroutine completes the flow.
// Cancelling ctx cancels the flow.
//
// Only one flow may run at a time; a second call before the first has
// delivered its result fails with a flow-in-progress error.
func (a *Authenticator) Authenticate(ctx context.Context, onResult func(Result)) error {
	if onResult == nil {
		return errors.NewInvalidArgumentError("result handler cannot be nil", nil)
	}

	a.mu.Lock()
	if a.flow != nil {
		a.mu.Unlock()
		return errors.NewFlowInProgressError("an authentication flow is already running", nil)
	}

	a.gen++
	gen := a.gen
	// The flow outlives ctx's cancellation so that cancellation is reported
	// as Cancelled rather than surfacing as a network error.
	flowCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	f := &flow{
		id:       uuid.NewString(),
		onResult: onResult,
		ctx:      flowCtx,
		cancel:   cancel,
	}
	a.flow = f
	f.stopCtx = context.AfterFunc(ctx, func() {
		a.complete(gen, Cancelled())
	})
	a.mu.Unlock()

	logger.Debugw("Starting authentication flow", "flow", f.id)
	a.observer.FlowStarted()
	go a.openSSO(flowCtx, gen)
	return nil
}

// Login runs Authenticate and waits for its Result.
func (a *Authenticator) Login(ctx context.Context) (Result, error) {
	results := make(chan Result, 1)
	if err := a.Authenticate(ctx, func(r Result) { results <- r }); err != nil {
		return Result{}, err
	}
	return <-results, nil
}

// HandleRedirect feeds an inbound redirect claimed to come from source. It
// returns true when the redirect was consumed by the running flow; false
// means the redirect was not meant for it and nothing changed.
func (a *Authenticator) HandleRedirect(u *url.URL, source string) bool {
	a.mu.Lock()
	if !a.validator.Accept(u, source, a.state) {
		state := a.state
		a.mu.Unlock()
		logger.Debugw("Ignoring redirect", "source", source, "state", state.String())
		a.observer.RedirectRejected()
		return false
	}
	next := a.routeLocked(a.gen, callbackOutcome(u))
	a.mu.Unlock()

	next()
	return true
}

// current returns the running flow if gen still identifies it.
func (a *Authenticator) current(gen uint64) *flow {
	if a.flow == nil || gen != a.gen {
		return nil
	}
	return a.flow
}

func (a *Authenticator) setStateLocked(f *flow, s State) {
	if a.state == s {
		return
	}
	logger.Debugw("Authentication state changed", "flow", f.id, "from", a.state.String(), "to", s.String())
	a.state = s
}

func (a *Authenticator) openSSO(ctx context.Context, gen uint64) {
	accepted := a.launcher.Attempt(ctx, a.cfg.handoffRequest())

	a.mu.Lock()
	f := a.current(gen)
	if f == nil {
		a.mu.Unlock()
		return
	}
	if !accepted {
		a.mu.Unlock()
		a.openBrowser(ctx, gen)
		return
	}

	a.setStateLocked(f, StateSSOPending)
	// Armed before the lock is released: no foreground event can be missed.
	f.disarm = lifecycle.Watch(a.foreground, func() { a.foregrounded(gen) })
	if a.cfg.SSOTimeout > 0 {
		f.timer = time.AfterFunc(a.cfg.SSOTimeout, func() {
			a.complete(gen, Failed(ErrHandoffTimeout))
		})
	}
	a.observer.PathSelected(PathSSO)
	a.mu.Unlock()
}

// foregrounded cancels a handoff the user came back from without a callback.
func (a *Authenticator) foregrounded(gen uint64) {
	a.mu.Lock()
	f := a.current(gen)
	if f == nil || a.state != StateSSOPending {
		a.mu.Unlock()
		return
	}
	logger.Debugw("Returned to foreground without an SSO callback", "flow", f.id)
	next := a.finishLocked(gen, Cancelled())
	a.mu.Unlock()

	next()
}

func (a *Authenticator) openBrowser(ctx context.Context, gen uint64) {
	hs, err := a.handshakes(a.cfg.handshakeConfig())
	if err != nil {
		a.complete(gen, Failed(errors.NewHandshakeError("failed to create OAuth1 handshake", err)))
		return
	}

	a.mu.Lock()
	f := a.current(gen)
	if f == nil {
		a.mu.Unlock()
		hs.Cancel()
		return
	}
	f.handshake = hs
	a.setStateLocked(f, StateBrowserPending)
	a.observer.PathSelected(PathBrowser)
	a.mu.Unlock()

	callbackURL, err := a.sessions.CallbackURL(a.cfg.CallbackScheme())
	if err != nil {
		a.complete(gen, Failed(errors.NewSessionStartError("failed to prepare the web session callback", err)))
		return
	}

	authorizeURL, err := hs.RequestToken(ctx, callbackURL)
	if err != nil {
		a.complete(gen, Failed(errors.NewHandshakeError("failed to obtain a request token", err)))
		return
	}

	session := a.sessions.NewSession(authorizeURL, a.cfg.CallbackScheme(), func(u *url.URL, err error) {
		a.sessionDone(gen, u, err)
	})

	a.mu.Lock()
	if a.current(gen) == nil {
		a.mu.Unlock()
		session.Dismiss()
		return
	}
	f.session = session
	a.mu.Unlock()

	if !session.Start() {
		// Nothing was shown, so the user never had a chance to cancel.
		a.complete(gen, Failed(errors.NewSessionStartError("the web authentication session could not be shown", nil)))
	}
}

func (a *Authenticator) sessionDone(gen uint64, u *url.URL, err error) {
	a.mu.Lock()
	next := a.routeLocked(gen, sessionOutcome(u, err))
	a.mu.Unlock()

	next()
}

// routeLocked applies an outcome to the running flow and returns the work to
// do once the lock is released.
func (a *Authenticator) routeLocked(gen uint64, o outcome) func() {
	f := a.current(gen)
	if f == nil {
		return func() {}
	}

	switch o.kind {
	case outcomeCancelled:
		return a.finishLocked(gen, Cancelled())
	case outcomeFailed:
		return a.finishLocked(gen, Failed(o.err))
	case outcomeSuccess:
	}

	switch a.state {
	case StateSSOPending:
		a.setStateLocked(f, StateRequestingToken)
		resp, ok := ParseSSOResponse(o.url)
		if !ok {
			return a.finishLocked(gen, Failed(nil))
		}
		return a.finishLocked(gen, Succeeded(resp.Token, resp.Secret, resp.Username))
	case StateBrowserPending:
		a.setStateLocked(f, StateRequestingToken)
		go a.exchange(f.ctx, gen, f.handshake, o.url)
		return func() {}
	default:
		// A completion outside of a pending leg, such as a session report
		// while an exchange is already running, invalidates the flow.
		return a.finishLocked(gen, Failed(nil))
	}
}

func (a *Authenticator) exchange(ctx context.Context, gen uint64, hs Handshake, redirect *url.URL) {
	cred, err := hs.Exchange(ctx, redirect)
	if err != nil {
		a.complete(gen, Failed(errors.NewHandshakeError("failed to exchange the access token", err)))
		return
	}
	a.complete(gen, Succeeded(cred.Token, cred.TokenSecret, cred.Params["screen_name"]))
}

func (a *Authenticator) complete(gen uint64, res Result) {
	a.mu.Lock()
	next := a.finishLocked(gen, res)
	a.mu.Unlock()

	next()
}

// finishLocked ends the flow identified by gen. The returned function
// releases the flow's resources and then delivers res.
func (a *Authenticator) finishLocked(gen uint64, res Result) func() {
	f := a.current(gen)
	if f == nil {
		return func() {}
	}

	a.setStateLocked(f, StateInitial)
	a.flow = nil
	a.gen++

	return func() {
		f.release()
		logger.Debugw("Authentication flow finished", "flow", f.id, "status", res.Status.String())
		a.observer.FlowCompleted(res.Status)
		f.onResult(res)
	}
}

// release tears down the session, handshake and watchers of a finished flow.
func (f *flow) release() {
	if f.stopCtx != nil {
		f.stopCtx()
	}
	if f.disarm != nil {
		f.disarm()
	}
	if f.timer != nil {
		f.timer.Stop()
	}
	if f.session != nil {
		f.session.Dismiss()
	}
	if f.handshake != nil {
		f.handshake.Cancel()
	}
	f.cancel()
}
