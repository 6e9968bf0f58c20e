package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "unknown table",
			err:  unknownTableError("get", "events"),
			want: "get: UNKNOWN_TABLE: table is not registered (table=events)",
		},
		{
			name: "incomplete key lists columns",
			err:  incompleteKeyError("upsert", "events", []string{"day"}),
			want: "upsert: INCOMPLETE_KEY: key mapping must name every key column (table=events, columns=day)",
		},
		{
			name: "wrapped cause",
			err:  backingStoreError("delete", "events", errors.New("disk I/O error")),
			want: "delete: BACKING_STORE: database operation failed (table=events): disk I/O error",
		},
		{
			name: "no op or table",
			err:  &Error{Code: ErrCodeDecoding, Message: "bad"},
			want: "DECODING: bad",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Predicates(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", invalidKeyError("get", "events", "value", "reserved"))

	assert.True(t, IsInvalidKey(wrapped))
	assert.False(t, IsIncompleteKey(wrapped))
	assert.Equal(t, ErrCodeInvalidKey, CodeOf(wrapped))

	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))

	c := consistencyError("get", "events", 2)
	assert.True(t, IsConsistency(c))
	assert.True(t, IsBackingStore(c), "consistency faults are backing store failures")
	assert.Contains(t, c.Error(), "2 rows share one full key")
}

func TestBackingStoreError_PassesStoreErrorsThrough(t *testing.T) {
	inner := decodingError("dump", "events", errors.New("bad json"))
	got := backingStoreError("dump", "events", fmt.Errorf("scan: %w", inner))

	assert.Same(t, inner, got)
	assert.True(t, IsDecoding(got))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	err := backingStoreError("upsert", "t", cause)
	assert.ErrorIs(t, err, cause)
}
