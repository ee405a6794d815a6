// Package server implements the server side of the library RPC system. It
// builds the object graph (storage backend, signal bus, library, auth gate,
// ai flows) from a ServerConfig, binds one adapter per channel and routes
// incoming requests through the configured transport and serializer.
//
// Key Components:
//
//   - IRPCServerAdapter: Interface for per-channel request handlers. Each
//     adapter is bound to its backend at construction and dispatches on the
//     message operation.
//
//   - rpcServer: Wires the adapters to the transport. Requests for unknown
//     channels, undecodable messages and operations sent to the wrong
//     channel are answered with error responses without reaching an
//     adapter.
//
// Request validation happens in the adapters, so invalid writes (empty book
// titles, malformed emails, blank remarks) never touch the stores.
package server
