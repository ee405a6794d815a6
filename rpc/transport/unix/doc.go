// Package unix implements the RPC transport over Unix domain sockets, the
// lowest-overhead option when client and server share a host. A stale socket
// file is removed before listening. Framing, pooling and retries live in
// package base.
package unix
