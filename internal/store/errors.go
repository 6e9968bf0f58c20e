package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// ErrCodeUnknownTable indicates the table is not in the registry.
	ErrCodeUnknownTable ErrorCode = "UNKNOWN_TABLE"

	// ErrCodeInvalidTable indicates an unusable table name or layout.
	ErrCodeInvalidTable ErrorCode = "INVALID_TABLE"

	// ErrCodeIncompleteKey indicates a key mapping missing key columns.
	ErrCodeIncompleteKey ErrorCode = "INCOMPLETE_KEY"

	// ErrCodeInvalidKey indicates a full-key mapping naming the value column,
	// an unknown column, or a value of the wrong type.
	ErrCodeInvalidKey ErrorCode = "INVALID_KEY"

	// ErrCodeInvalidValue indicates a payload that cannot be encoded.
	ErrCodeInvalidValue ErrorCode = "INVALID_VALUE"

	// ErrCodeDecoding indicates a stored payload that is not valid JSON.
	ErrCodeDecoding ErrorCode = "DECODING"

	// ErrCodeBackingStore indicates a connection, constraint or I/O failure.
	ErrCodeBackingStore ErrorCode = "BACKING_STORE"

	// ErrCodeConsistency indicates more than one row for a full key.
	// This cannot happen while the primary key is intact.
	ErrCodeConsistency ErrorCode = "CONSISTENCY"
)

// Error is the error type returned by Store operations.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op is the operation that failed (e.g. "upsert").
	Op string

	// Table is the addressed table, if any.
	Table string

	// Columns lists the offending columns (missing or invalid keys).
	Columns []string

	// Message is a human-readable description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Table != "" {
		fmt.Fprintf(&b, " (table=%s", e.Table)
		if len(e.Columns) > 0 {
			fmt.Fprintf(&b, ", columns=%s", strings.Join(e.Columns, ","))
		}
		b.WriteByte(')')
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsUnknownTable returns true if err is an unknown table error.
func IsUnknownTable(err error) bool { return CodeOf(err) == ErrCodeUnknownTable }

// IsInvalidTable returns true if err is an invalid table error.
func IsInvalidTable(err error) bool { return CodeOf(err) == ErrCodeInvalidTable }

// IsIncompleteKey returns true if err is an incomplete key error.
func IsIncompleteKey(err error) bool { return CodeOf(err) == ErrCodeIncompleteKey }

// IsInvalidKey returns true if err is an invalid key error.
func IsInvalidKey(err error) bool { return CodeOf(err) == ErrCodeInvalidKey }

// IsInvalidValue returns true if err is an invalid value error.
func IsInvalidValue(err error) bool { return CodeOf(err) == ErrCodeInvalidValue }

// IsDecoding returns true if err is a payload decoding error.
func IsDecoding(err error) bool { return CodeOf(err) == ErrCodeDecoding }

// IsBackingStore returns true for backing store failures, including
// internal-consistency faults.
func IsBackingStore(err error) bool {
	code := CodeOf(err)
	return code == ErrCodeBackingStore || code == ErrCodeConsistency
}

// IsConsistency returns true if err is an internal-consistency fault.
func IsConsistency(err error) bool { return CodeOf(err) == ErrCodeConsistency }

func unknownTableError(op, table string) *Error {
	return &Error{Code: ErrCodeUnknownTable, Op: op, Table: table, Message: "table is not registered"}
}

func incompleteKeyError(op, table string, missing []string) *Error {
	return &Error{
		Code:    ErrCodeIncompleteKey,
		Op:      op,
		Table:   table,
		Columns: missing,
		Message: "key mapping must name every key column",
	}
}

func invalidKeyError(op, table, column, message string) *Error {
	return &Error{Code: ErrCodeInvalidKey, Op: op, Table: table, Columns: []string{column}, Message: message}
}

func decodingError(op, table string, err error) *Error {
	return &Error{Code: ErrCodeDecoding, Op: op, Table: table, Message: "stored value is not valid JSON", Err: err}
}

func backingStoreError(op, table string, err error) *Error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return &Error{Code: ErrCodeBackingStore, Op: op, Table: table, Message: "database operation failed", Err: err}
}

func consistencyError(op, table string, rows int) *Error {
	return &Error{
		Code:    ErrCodeConsistency,
		Op:      op,
		Table:   table,
		Message: fmt.Sprintf("%d rows share one full key", rows),
	}
}
