package cli

import (
	"errors"

	"github.com/successar/multikeydb/internal/schemafile"
	"github.com/successar/multikeydb/internal/store"
)

// Error code constants, unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeUsage         = "E002" // Bad flag or argument value
	ErrCodeSchemaLoad    = "E004" // CUE schema load failed
	ErrCodeNotFound      = "E005" // Unknown table or absent record
	ErrCodeConfig        = "E006" // Config file error
	ErrCodeInvalidTable  = "E200" // Unusable table name or layout
	ErrCodeIncompleteKey = "E201" // Key mapping misses key columns
	ErrCodeInvalidKey    = "E202" // Key mapping names a bad column or value
	ErrCodeDecoding      = "E203" // Stored payload is not valid JSON
	ErrCodeBackingStore  = "E204" // Database failure
	ErrCodeInvalidValue  = "E205" // Payload cannot be stored
)

// errorCode maps an error to its CLI code.
func errorCode(err error) string {
	var le *schemafile.LoadError
	if errors.As(err, &le) {
		return ErrCodeSchemaLoad
	}

	switch store.CodeOf(err) {
	case store.ErrCodeUnknownTable:
		return ErrCodeNotFound
	case store.ErrCodeInvalidTable:
		return ErrCodeInvalidTable
	case store.ErrCodeIncompleteKey:
		return ErrCodeIncompleteKey
	case store.ErrCodeInvalidKey:
		return ErrCodeInvalidKey
	case store.ErrCodeInvalidValue:
		return ErrCodeInvalidValue
	case store.ErrCodeDecoding:
		return ErrCodeDecoding
	case store.ErrCodeBackingStore, store.ErrCodeConsistency:
		return ErrCodeBackingStore
	default:
		return ErrCodeGeneric
	}
}

// exitCodeFor picks the process exit code for a CLI error code.
func exitCodeFor(code string) int {
	switch code {
	case ErrCodeBackingStore, ErrCodeConfig, ErrCodeSchemaLoad, ErrCodeUsage:
		return ExitCommandError
	default:
		return ExitFailure
	}
}

// fail reports err through the formatter and returns the matching
// ExitError.
func fail(f *OutputFormatter, err error) error {
	return failWith(f, errorCode(err), err.Error(), err, errorDetails(err))
}

// failWith reports a coded error and returns the matching ExitError.
func failWith(f *OutputFormatter, code, message string, err error, details any) error {
	_ = f.Error(code, message, details)
	exitErr := WrapExitError(exitCodeFor(code), code+": "+message, nil)
	if err != nil {
		exitErr = WrapExitError(exitCodeFor(code), code, err)
	}
	exitErr.Reported = true
	return exitErr
}

func errorDetails(err error) any {
	var se *store.Error
	if !errors.As(err, &se) {
		return nil
	}
	d := map[string]any{"kind": string(se.Code)}
	if se.Table != "" {
		d["table"] = se.Table
	}
	if len(se.Columns) > 0 {
		d["columns"] = se.Columns
	}
	return d
}
