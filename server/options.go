// File: server/options.go
// Package server defines functional options for the Server.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"go.uber.org/zap"

	"github.com/momentics/hioload-net/control"
)

// Option customizes server initialization.
type Option func(*settings)

type settings struct {
	cfg  *Config
	log  *zap.Logger
	ctrl *control.Control
}

// WithConfig replaces the default configuration.
func WithConfig(cfg *Config) Option {
	return func(s *settings) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithPort overrides the listening port.
func WithPort(port int) Option {
	return func(s *settings) {
		s.cfg.Port = port
	}
}

// WithLogger sets the logger; zap.L() is used otherwise.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics shares a Control between several servers or with the caller.
func WithMetrics(c *control.Control) Option {
	return func(s *settings) {
		if c != nil {
			s.ctrl = c
		}
	}
}
