// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/gofrs/flock"
	"github.com/google/uuid"

	twerrors "github.com/stacklok/twauth/pkg/errors"
	"github.com/stacklok/twauth/pkg/logger"
)

// lockTimeout is the maximum time to wait for a file lock
const lockTimeout = 1 * time.Second

// ErrNoRelay is returned when no login is publishing a relay.
var ErrNoRelay = errors.New("no login is waiting for a redirect")

// State tells other processes how to reach the running login's relay.
type State struct {
	Addr      string    `json:"addr"`
	Token     string    `json:"token"`
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
}

// DefaultStatePath returns $XDG_STATE_HOME/twauth/relay.json, creating the
// parent directory.
func DefaultStatePath() (string, error) {
	return xdg.StateFile(filepath.Join("twauth", "relay.json"))
}

// NewState describes a relay listening on addr with a fresh token.
func NewState(addr string) *State {
	return &State{
		Addr:      addr,
		Token:     uuid.NewString(),
		PID:       os.Getpid(),
		StartedAt: time.Now().UTC(),
	}
}

// Publish writes st to path and returns a function that removes it again,
// unless another login has replaced it in the meantime.
func Publish(ctx context.Context, path string, st *State) (func(), error) {
	err := withLock(ctx, path, func() error {
		return writeState(path, st)
	})
	if err != nil {
		return nil, err
	}

	return func() {
		// The login is over; ctx may already be cancelled.
		err := withLock(context.Background(), path, func() error {
			current, err := readState(path)
			if err != nil {
				return err
			}
			if current.Token != st.Token {
				return nil
			}
			return os.Remove(path)
		})
		if err != nil && !errors.Is(err, ErrNoRelay) {
			logger.Warnf("Failed to remove relay state %s: %v", path, err)
		}
	}, nil
}

// ReadState loads the published relay state.
func ReadState(ctx context.Context, path string) (*State, error) {
	var st *State
	err := withLock(ctx, path, func() error {
		var err error
		st, err = readState(path)
		return err
	})
	return st, err
}

func withLock(ctx context.Context, path string, fn func() error) error {
	// Use a separate lock file for cross-platform compatibility
	fileLock := flock.New(path + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(lockCtx, 50*time.Millisecond)
	if err != nil {
		return twerrors.NewRelayError("failed to acquire relay state lock", err)
	}
	if !locked {
		return twerrors.NewRelayError(fmt.Sprintf("failed to acquire relay state lock: timeout after %v", lockTimeout), nil)
	}
	defer func() {
		if err := fileLock.Unlock(); err != nil {
			logger.Warnf("Failed to release relay state lock: %v", err)
		}
	}()

	return fn()
}

func writeState(path string, st *State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return twerrors.NewInternalError("failed to encode relay state", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write relay state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace relay state: %w", err)
	}
	return nil
}

func readState(path string) (*State, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is derived from the XDG state directory
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoRelay
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read relay state: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to decode relay state: %w", err)
	}
	if st.Addr == "" || st.Token == "" {
		return nil, fmt.Errorf("relay state %s is incomplete", path)
	}
	return &st, nil
}
