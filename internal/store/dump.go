package store

import (
	"context"
	"database/sql"
	"iter"

	"github.com/successar/multikeydb/internal/queryir"
	"github.com/successar/multikeydb/internal/schema"
	"github.com/successar/multikeydb/internal/value"
)

// Record is one stored record tagged with its table.
type Record struct {
	Table string
	Row   Row
}

// Object flattens the record to {"table": <name>, <columns>...}. A column
// literally named "table" overrides the tag.
func (r Record) Object() value.Object {
	obj := make(value.Object, len(r.Row)+1)
	obj["table"] = value.String(r.Table)
	for k, v := range r.Row {
		obj[k] = v
	}
	return obj
}

// Dump enumerates every record of every registered table, with payloads
// decoded.
//
// The sequence is lazy and single-pass: nothing is read until iteration
// starts, and each call starts over from the current database state. Tables
// are visited in registry order; each table is read in its own transaction
// and its rows are yielded after that transaction ends, so the caller may use
// the Store from inside the loop. The first error is yielded and ends the
// sequence.
func (s *Store) Dump(ctx context.Context) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for _, t := range s.registry.Tables() {
			rows, err := s.scanTable(ctx, t)
			if err != nil {
				yield(Record{Table: t.Name}, err)
				return
			}
			for _, row := range rows {
				if !yield(Record{Table: t.Name, Row: row}, nil) {
					return
				}
			}
		}
	}
}

// DumpAll collects Dump into a slice.
func (s *Store) DumpAll(ctx context.Context) ([]Record, error) {
	records := []Record{}
	for rec, err := range s.Dump(ctx) {
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Store) scanTable(ctx context.Context, t schema.Table) ([]Row, error) {
	const op = "dump"

	cols := t.ColumnNames()
	var rows []Row
	err := s.withTx(ctx, op, t.Name, func(tx *sql.Tx) error {
		return s.query(ctx, tx, queryir.Select{
			From:    t.Name,
			Columns: cols,
			OrderBy: t.KeyNames(),
		}, func(r *sql.Rows) error {
			row, err := scanRow(op, t.Name, cols, r)
			if err != nil {
				return err
			}
			rows = append(rows, row)
			return nil
		})
	})
	return rows, err
}
