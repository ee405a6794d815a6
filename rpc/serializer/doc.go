// Package serializer provides message serialization for the library RPC
// system. It defines a common interface and two implementations for
// serializing and deserializing messages between client and server
// components.
//
// Key Components:
//
//   - IRPCSerializer: Core interface that all serializer implementations
//     must satisfy.
//
//   - jsonSerializerImpl: Implementation using JSON encoding. Human-readable
//     on the wire, which also makes the HTTP transport usable with plain
//     curl, and the default for this system.
//
//   - gobSerializerImpl: Implementation using Go's built-in gob encoding,
//     offering a compact binary format between Go peers.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
//
// Usage:
//
//	Serializers are typically created once and reused throughout the
//	application:
//
//	  serializer := serializer.NewJSONSerializer()
//	  data, err := serializer.Serialize(message)
//	  // ... send data ...
//	  var receivedMsg common.Message
//	  err = serializer.Deserialize(receivedData, &receivedMsg)
package serializer
