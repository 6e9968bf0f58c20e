// Package store is the multikeydb table store engine over SQLite.
//
// A Store owns one SQLite database file and a schema.Registry rebuilt from
// that file's catalog when the store is opened. Each logical table is one
// physical table: the declared key columns, a "value" TEXT column holding the
// canonical JSON of the payload, and PRIMARY KEY over the key columns.
//
// # Operations
//
//   - CreateTable / TableExists / Tables: schema registry
//   - Upsert: insert-or-update by full key
//   - Get: point lookup by full key
//   - Delete: remove by full key (absent key is a no-op)
//   - Filter: partial-key query returning the unqueried columns
//   - Dump: lazy enumeration of every record in every table
//
// Every operation runs inside exactly one transaction. Key preconditions
// (unknown table, incomplete key, invalid key) are checked before the
// database is touched, so a rejected call never writes anything.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000: wait up to 5 seconds on a locked database
//   - one open connection: SQLite allows a single writer
//
// There is no retry on SQLITE_BUSY; the error reaches the caller.
package store
