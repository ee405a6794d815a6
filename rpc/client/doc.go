// Package client provides the typed RPC clients for the library system:
// LibraryClient for the collection channels (books, users, papers, catalog,
// notifications), AuthClient for sessions and password resets, and AIClient
// for the book assistant.
//
// All clients share one composition-based adapter that serializes the
// request, sends it on the operation's channel through the configured
// transport and decodes the response, turning error responses into Go
// errors.
package client
