/*
Package library implements the domain model of the digital library: books
with remarks and reactions, registered users, the category and branch
catalogs, uploaded exam papers and the notification feed.

All six collections are generic stores (see package store) wired over a
shared storage backend and signal bus, so every mutation is persisted as a
full snapshot and announced to peer processes. The Library aggregate adds the
domain rules on top:

  - books, papers and notifications keep newest-first order, users and
    catalog entries append
  - user passwords are stored as bcrypt hashes only
  - category and branch names are natural keys, compared case-insensitively,
    with "All" as an undeletable sentinel
  - remarks snapshot the author's name and avatar at write time

Duplicate checks (user email, catalog names) run against the local in-memory
collection and are therefore advisory; see ErrDuplicate.

Thread safety: Library holds no state of its own, all methods delegate to the
underlying stores and are safe for concurrent use.
*/
package library
