// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package lifecycle delivers "application became active" notifications from
// the host to scoped subscribers.
//
// The host owns a [Notifier] and calls [Notifier.Activate] whenever the
// application returns to the foreground. Components that only care about the
// next activation use [Watch], which subscribes, fires at most once, and
// unsubscribes itself.
package lifecycle

import (
	"sync"
)

// Source is anything that can deliver activation events.
type Source interface {
	// Subscribe registers fn for every activation and returns a function that
	// removes the subscription. The returned function is safe to call twice.
	Subscribe(fn func()) (unsubscribe func())
}

// Notifier is a host-side broadcaster of activation events.
type Notifier struct {
	mu   sync.Mutex
	next uint64
	subs map[uint64]func()
}

// NewNotifier creates a Notifier with no subscribers.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[uint64]func())}
}

// Subscribe implements Source.
func (n *Notifier) Subscribe(fn func()) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.next
	n.next++
	n.subs[id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

// Activate notifies every current subscriber. Subscribers run synchronously on
// the caller's goroutine, outside the notifier's lock.
func (n *Notifier) Activate() {
	n.mu.Lock()
	fns := make([]func(), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Subscribers returns the number of live subscriptions.
func (n *Notifier) Subscribers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// Watch arms a one-shot watcher on src. fn runs on the first activation after
// Watch returns and never again. Calling disarm before that activation
// guarantees fn will not run.
func Watch(src Source, fn func()) (disarm func()) {
	var (
		mu    sync.Mutex
		done  bool
		unsub func()
	)

	stop := func() bool {
		mu.Lock()
		defer mu.Unlock()
		if done {
			return false
		}
		done = true
		if unsub != nil {
			unsub()
		}
		return true
	}

	u := src.Subscribe(func() {
		if stop() {
			fn()
		}
	})

	mu.Lock()
	if done {
		// activated while subscribing
		mu.Unlock()
		u()
	} else {
		unsub = u
		mu.Unlock()
	}

	return func() { stop() }
}
