//go:build !linux
// +build !linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package tcp

import "net"

// The Go runtime already sets SO_REUSEADDR on listeners outside Windows.
func applyListenOptions(uintptr, ListenerConfig) error {
	return nil
}

func setNoDelay(tc *net.TCPConn, on bool) error {
	return tc.SetNoDelay(on)
}
