// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-net.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	ErrNotConnected   = errors.New("connection is not open")
	ErrClosed         = errors.New("execution context is stopped")
	ErrAlreadyRunning = errors.New("already running")
	ErrNotRunning     = errors.New("not running")
	ErrResolve        = errors.New("resolve failed")
	ErrConnect        = errors.New("connect failed")
	ErrListen         = errors.New("listen failed")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeResolve
	ErrCodeConnect
	ErrCodeListen
	ErrCodeIO
	ErrCodeContract
)

// String returns the short name of the code.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeResolve:
		return "resolve"
	case ErrCodeConnect:
		return "connect"
	case ErrCodeListen:
		return "listen"
	case ErrCodeIO:
		return "io"
	case ErrCodeContract:
		return "contract"
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel that corresponds to the error code.
func (e *Error) Is(target error) bool {
	switch e.Code {
	case ErrCodeResolve:
		return target == ErrResolve
	case ErrCodeConnect:
		return target == ErrConnect
	case ErrCodeListen:
		return target == ErrListen
	}
	return false
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
		Err:     cause,
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
