// Package rpc provides the remote procedure call framework of the library
// system. It acts as the communication layer between clients and the
// server, enabling every library operation across network boundaries.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures used across the RPC system, including
//     the Message protocol, operation and channel definitions, and the
//     configuration structures.
//
//   - transport: Network communication abstractions with pluggable
//     implementations (HTTP, TCP, Unix sockets).
//
//   - serializer: Message serialization with multiple format options (JSON,
//     GOB) for converting between Message objects and byte arrays.
//
//   - client: Typed RPC clients for the collection channels, the auth
//     channel and the ai channel.
//
//   - server: RPC server components that handle incoming requests,
//     including one adapter per channel routing to the library, the auth
//     gate and the ai flows.
package rpc
