// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState(t *testing.T) {
	t.Parallel()

	a := NewState("127.0.0.1:1234")
	b := NewState("127.0.0.1:1234")

	assert.Equal(t, "127.0.0.1:1234", a.Addr)
	assert.NotEmpty(t, a.Token)
	assert.NotEqual(t, a.Token, b.Token)
	assert.Equal(t, os.Getpid(), a.PID)
	assert.False(t, a.StartedAt.IsZero())
}

func TestPublishAndRead(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "relay.json")
	ctx := context.Background()

	_, err := ReadState(ctx, path)
	require.ErrorIs(t, err, ErrNoRelay)

	st := NewState("127.0.0.1:4321")
	unpublish, err := Publish(ctx, path, st)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := ReadState(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, st.Addr, got.Addr)
	assert.Equal(t, st.Token, got.Token)
	assert.True(t, st.StartedAt.Equal(got.StartedAt))

	unpublish()
	_, err = ReadState(ctx, path)
	assert.ErrorIs(t, err, ErrNoRelay)

	// A second call is harmless.
	unpublish()
}

func TestPublish_KeepsNewerLogin(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "relay.json")
	ctx := context.Background()

	older, err := Publish(ctx, path, NewState("127.0.0.1:1111"))
	require.NoError(t, err)

	newer := NewState("127.0.0.1:2222")
	_, err = Publish(ctx, path, newer)
	require.NoError(t, err)

	older()

	got, err := ReadState(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, newer.Token, got.Token)
}

func TestReadState_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "not json", content: "{", wantErr: "failed to decode relay state"},
		{name: "missing token", content: `{"addr":"127.0.0.1:1"}`, wantErr: "incomplete"},
		{name: "missing addr", content: `{"token":"t"}`, wantErr: "incomplete"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "relay.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := ReadState(context.Background(), path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
