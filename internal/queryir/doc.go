// Package queryir provides the abstract statement representation used by the
// table store engine.
//
// Every record-level operation is expressed as a queryir statement and then
// compiled by a backend (internal/querysql for SQLite). Keeping predicate
// construction backend-neutral means the store never concatenates SQL itself.
//
// STATEMENTS:
//
//   - CreateTable(name, columns, primary key)
//   - Select(from, columns, filter, order)
//   - Count(from, filter)
//   - Insert(into, columns, values)
//   - Update(table, set, filter)
//   - Delete(from, filter)
//
// PREDICATES:
//
//   - Equals: column = literal
//   - And: conjunction; an empty And matches every row
//
// There is deliberately no OR, range or join support: records are addressed
// by conjunctive equality on key columns only.
//
// SEALED INTERFACES:
//
// Statement and Predicate use the marker method pattern so backend compilers
// can switch exhaustively over the node types of this package.
package queryir
