package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/successar/multikeydb/internal/store"
	"github.com/successar/multikeydb/internal/value"
)

// Harness executes scenario steps against one store.
type Harness struct {
	store  *store.Store
	logger *slog.Logger
}

// Option configures Run.
type Option func(*runOptions)

type runOptions struct {
	logger *slog.Logger
}

// WithLogger routes store and harness logs to l. By default they are
// discarded.
func WithLogger(l *slog.Logger) Option {
	return func(o *runOptions) { o.logger = l }
}

// Run executes a scenario and returns the result.
//
// Each run opens a fresh database file, named by a random UUID, in dir.
// Expectation failures are collected in the result; the returned error is
// reserved for failures that stop the run (the database cannot be opened,
// a declared table cannot be created, or the final dump fails).
func Run(ctx context.Context, scenario *Scenario, dir string, opts ...Option) (*Result, error) {
	o := runOptions{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	path := filepath.Join(dir, uuid.NewString()+".db")
	st, err := store.Open(path, store.WithLogger(o.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario store: %w", err)
	}
	defer st.Close()

	h := &Harness{store: st, logger: o.logger}
	h.logger.Debug("running scenario", "name", scenario.Name, "db", path)

	for _, t := range scenario.Tables {
		if _, err := st.CreateTable(ctx, t.Name, t.Keys); err != nil {
			return nil, fmt.Errorf("failed to create table %s: %w", t.Name, err)
		}
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, msg := range h.executeStep(ctx, step) {
			result.AddError(fmt.Sprintf("steps[%d] %s: %s", i, describe(step), msg))
		}
		result.Steps++
	}

	records, err := st.DumpAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to dump final state: %w", err)
	}
	for _, rec := range records {
		result.Dump = append(result.Dump, rec.Object())
	}
	return result, nil
}

func describe(s Step) string {
	if s.Table == "" {
		return s.Op
	}
	return s.Op + " " + s.Table
}

// executeStep runs one step and returns its expectation failures.
func (h *Harness) executeStep(ctx context.Context, step Step) []string {
	keys, err := convertKeys(step.Keys)
	if err != nil {
		return []string{err.Error()}
	}

	switch step.Op {
	case OpUpsert:
		v, err := nodeValue(&step.Value)
		if err != nil {
			return []string{fmt.Sprintf("value: %v", err)}
		}
		return checkError(step, h.store.Upsert(ctx, step.Table, keys, v))

	case OpDelete:
		return checkError(step, h.store.Delete(ctx, step.Table, keys))

	case OpGet:
		got, found, err := h.store.Get(ctx, step.Table, keys)
		if msgs := checkError(step, err); msgs != nil || err != nil {
			return msgs
		}
		return checkGet(step, got, found)

	case OpFilter:
		rows, err := h.store.Filter(ctx, step.Table, keys)
		if msgs := checkError(step, err); msgs != nil || err != nil {
			return msgs
		}
		objs := make([]value.Object, len(rows))
		for i, r := range rows {
			objs[i] = value.Object(r)
		}
		return checkRows(step.ExpectRows, objs)

	case OpCount:
		n, err := h.store.Count(ctx, step.Table)
		if msgs := checkError(step, err); msgs != nil || err != nil {
			return msgs
		}
		return checkCount(step, n)

	case OpDump:
		records, err := h.store.DumpAll(ctx)
		if msgs := checkError(step, err); msgs != nil || err != nil {
			return msgs
		}
		objs := make([]value.Object, len(records))
		for i, rec := range records {
			objs[i] = rec.Object()
		}
		return checkRows(step.ExpectRows, objs)

	default:
		return []string{fmt.Sprintf("unknown op %q", step.Op)}
	}
}
