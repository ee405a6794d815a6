// Package cmd implements the command-line interface for the shelfd digital
// library. It provides a hierarchical command structure with operations for
// running the server and interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - books: Commands for the book collection (add, search, remark, summarize, etc.)
//   - papers: Commands for the question paper collection
//   - users: Commands for accounts and sessions (register, login, reset)
//   - catalog: Commands for the category and branch catalogs
//   - notifications: Commands for the notification feed
//   - serve: Commands for starting and configuring the shelfd server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See shelfd -help for a list of all commands.
package cmd
