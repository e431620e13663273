// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenLoopback(t *testing.T) {
	t.Parallel()

	l, err := ListenLoopback(0)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	port := ListenerPort(l)
	assert.Positive(t, port)
	assert.Equal(t, LoopbackAddr(port), l.Addr().String())

	_, err = ListenLoopback(port)
	assert.Error(t, err)

	for _, bad := range []int{-1, 65536} {
		_, err = ListenLoopback(bad)
		assert.Error(t, err, "port %d", bad)
	}
}

func TestListenLoopbackOrAny(t *testing.T) {
	t.Parallel()

	t.Run("zero picks a free port", func(t *testing.T) {
		t.Parallel()
		l, err := ListenLoopbackOrAny(0)
		require.NoError(t, err)
		t.Cleanup(func() { l.Close() })
		assert.Positive(t, ListenerPort(l))
	})

	t.Run("free port is used as requested", func(t *testing.T) {
		t.Parallel()
		first, err := ListenLoopback(0)
		require.NoError(t, err)
		want := ListenerPort(first)
		require.NoError(t, first.Close())

		l, err := ListenLoopbackOrAny(want)
		require.NoError(t, err)
		t.Cleanup(func() { l.Close() })
		assert.Positive(t, ListenerPort(l))
	})

	t.Run("busy port falls back to a free one", func(t *testing.T) {
		t.Parallel()
		busy, err := net.Listen("tcp", LoopbackAddr(0))
		require.NoError(t, err)
		t.Cleanup(func() { busy.Close() })
		busyPort := ListenerPort(busy)

		l, err := ListenLoopbackOrAny(busyPort)
		require.NoError(t, err)
		t.Cleanup(func() { l.Close() })
		assert.NotEqual(t, busyPort, ListenerPort(l))
		assert.Equal(t, LoopbackHost, l.Addr().(*net.TCPAddr).IP.String())
	})
}
