// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp builds the stream sockets used by hioload-net clients and servers:
// listeners with socket options and an optional connection cap, and dialers
// that tune every new connection the same way.
package tcp
