// Package http implements the RPC transport over HTTP. Requests are POSTed
// to /{channel} with the serialized message as body; the server also exposes
// Prometheus metrics on GET /metrics. With the JSON serializer the surface
// is usable with plain curl, which makes this the default transport.
//
// Unlike the socket transports this implementation does not use the base
// framing layer: HTTP already provides request/response correlation and
// message boundaries.
package http
