// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Execution context for hioload-net. An EventLoop runs posted completions one
// at a time on a single goroutine; every connection owned by a client or
// server posts its read and write completions to the same loop.
package concurrency
