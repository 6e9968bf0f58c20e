package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/successar/multikeydb/internal/schema"
	"github.com/successar/multikeydb/internal/value"
)

func TestDump_TagsEveryRecord(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createEventsTable(t, s)
	_, err := s.CreateTable(ctx, "accounts", []schema.Column{{Name: "id", Type: schema.Text}})
	require.NoError(t, err)

	require.NoError(t, s.Upsert(ctx, "events", eventKeys(1, "2024-01-01"), count(5)))
	require.NoError(t, s.Upsert(ctx, "accounts", Keys{"id": value.String("a1")}, value.String("gold")))

	records, err := s.DumpAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Record{
		{Table: "events", Row: Row{"user": value.Int(1), "day": value.String("2024-01-01"), "value": count(5)}},
		{Table: "accounts", Row: Row{"id": value.String("a1"), "value": value.String("gold")}},
	}, records)

	assert.Equal(t, value.Object{
		"table": value.String("events"),
		"user":  value.Int(1),
		"day":   value.String("2024-01-01"),
		"value": count(5),
	}, records[0].Object())
}

func TestDump_EmptyStore(t *testing.T) {
	s := createTestStore(t)

	records, err := s.DumpAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDump_IsLazyAndRestartable(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createEventsTable(t, s)

	// Built before any data exists; nothing has been read yet.
	seq := s.Dump(ctx)
	require.NoError(t, s.Upsert(ctx, "events", eventKeys(1, "a"), value.Int(1)))

	n := 0
	for _, err := range seq {
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, 1, n)

	require.NoError(t, s.Upsert(ctx, "events", eventKeys(1, "b"), value.Int(2)))

	n = 0
	for _, err := range seq {
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, 2, n, "second pass reflects current state")
}

func TestDump_EarlyBreak(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createEventsTable(t, s)
	seedEvents(t, s)

	seen := 0
	for _, err := range s.Dump(ctx) {
		require.NoError(t, err)
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)

	// The connection is free again after breaking out.
	assert.Equal(t, int64(4), countRows(t, s, "events"))
}

func TestDump_StoreUsableInsideLoop(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createEventsTable(t, s)
	seedEvents(t, s)

	for rec, err := range s.Dump(ctx) {
		require.NoError(t, err)
		keys := Keys{"user": rec.Row["user"].(value.Int), "day": rec.Row["day"].(value.String)}
		require.NoError(t, s.Delete(ctx, rec.Table, keys))
	}

	assert.Equal(t, int64(0), countRows(t, s, "events"))
}

func TestDump_DecodingErrorEndsSequence(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createEventsTable(t, s)
	require.NoError(t, s.Upsert(ctx, "events", eventKeys(1, "d"), value.Int(1)))
	_, err := s.DB().Exec(`UPDATE "events" SET "value" = '{'`)
	require.NoError(t, err)

	var errs []error
	for rec, err := range s.Dump(ctx) {
		if err != nil {
			assert.Equal(t, "events", rec.Table)
			errs = append(errs, err)
		}
	}
	require.Len(t, errs, 1)
	assert.True(t, IsDecoding(errs[0]))

	_, err = s.DumpAll(ctx)
	assert.True(t, IsDecoding(err))
}

func TestRecord_ObjectColumnOverridesTag(t *testing.T) {
	rec := Record{Table: "t", Row: Row{"table": value.String("col"), "value": value.Null{}}}
	obj := rec.Object()
	assert.Equal(t, value.String("col"), obj["table"])
}

func TestDump_ContextCanceled(t *testing.T) {
	s := createTestStore(t)
	createEventsTable(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.DumpAll(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
