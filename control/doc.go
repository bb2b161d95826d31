// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics and debug introspection for hioload-net clients and servers.
//
// Provides concurrent-safe primitives:
//   - Named atomic counters fed by connections (messages, bytes, I/O errors)
//   - Connection lifecycle counters fed by servers
//   - Debug probe registration and state export
package control
