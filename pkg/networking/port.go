// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package networking provides loopback listeners and the HTTP client used to
// talk to OAuth1 endpoints.
package networking

import (
	"fmt"
	"net"
	"strconv"

	"github.com/stacklok/twauth/pkg/logger"
)

// LoopbackHost is the only interface callback servers bind to
const LoopbackHost = "127.0.0.1"

// LoopbackAddr returns host:port on the loopback interface.
func LoopbackAddr(port int) string {
	return net.JoinHostPort(LoopbackHost, strconv.Itoa(port))
}

// ListenLoopback binds a TCP listener on the loopback interface. A port of 0
// lets the kernel choose.
func ListenLoopback(port int) (net.Listener, error) {
	if port < 0 || port > 65535 {
		return nil, fmt.Errorf("invalid port %d", port)
	}
	l, err := net.Listen("tcp", LoopbackAddr(port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", LoopbackAddr(port), err)
	}
	return l, nil
}

// ListenLoopbackOrAny binds port on the loopback interface, or a port chosen
// by the kernel when port is 0 or already taken. The port is held from the
// moment it is chosen.
func ListenLoopbackOrAny(port int) (net.Listener, error) {
	if port != 0 {
		l, err := ListenLoopback(port)
		if err == nil {
			return l, nil
		}
		logger.Debugf("port %d is unavailable, using any free port: %v", port, err)
	}
	return ListenLoopback(0)
}

// ListenerPort returns the TCP port a listener is bound to, or 0.
func ListenerPort(l net.Listener) int {
	if addr, ok := l.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}
