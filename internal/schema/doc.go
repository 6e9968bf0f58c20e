// Package schema holds the table catalog for multikeydb.
//
// A Table is a name, an ordered list of typed key columns and the reserved
// payload column "value". The key columns together form the primary key.
// Definitions are immutable once built; the Registry maps names to them.
//
// Definitions are persisted only through the backing store's own catalog:
// Introspect rebuilds them from sqlite_master and pragma_table_info, so there
// is no separate metadata table.
package schema
