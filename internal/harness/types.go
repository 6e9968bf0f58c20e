package harness

import "github.com/successar/multikeydb/internal/value"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every step met its expectations.
	Pass bool `json:"pass"`

	// Steps is the number of steps executed.
	Steps int `json:"steps"`

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Dump holds every record left in the store after the last step, each
	// tagged with its table.
	Dump []value.Object `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
		Dump:   []value.Object{},
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// CanonicalDump encodes Dump as one canonical JSON array.
func (r *Result) CanonicalDump() ([]byte, error) {
	arr := make(value.Array, len(r.Dump))
	for i, obj := range r.Dump {
		arr[i] = obj
	}
	return value.Encode(arr)
}
