// Package common provides the data structures shared across the RPC layer:
// the message protocol, its operation and channel definitions, and the
// configuration structures for servers and clients.
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication. One flexible
//     struct carries every request and response; which fields are used
//     depends on the operation. Factory helpers create the common shapes.
//
//   - Operation: Enumeration of all operations, serialized as dotted wire
//     names ("book.add", "auth.login"). Every operation maps to exactly one
//     channel; transports route by channel, adapters dispatch by operation.
//
//   - BookSearch / PaperFilter / Session: Typed payloads travelling in the
//     Value field, encoded with EncodeValue and DecodeValue.
//
//   - ServerConfig / ClientConfig: Configuration for the two ends of the
//     RPC surface, with pretty-printing String methods for startup logs.
package common
