// File: client/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"time"

	"go.uber.org/zap"

	"github.com/momentics/hioload-net/control"
)

// Config holds all configurable parameters for the client.
type Config struct {
	NoDelay     bool          // TCP_NODELAY on the socket
	DialTimeout time.Duration // per endpoint, 0 = no timeout
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{NoDelay: true}
}

// Option customizes a Client.
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

// WithLogger sets the logger; zap.L() is used otherwise.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics sets the counter and probe sink.
func WithMetrics(c *control.Control) Option {
	return func(s *settings) {
		if c != nil {
			s.ctrl = c
		}
	}
}
