// Package tcp implements the RPC transport over TCP sockets. It plugs a thin
// connector pair into the base transport: the client dials with Nagle's
// algorithm disabled and keep-alive enabled, the server listens on the
// configured endpoint. Framing, pooling and retries live in package base.
package tcp
