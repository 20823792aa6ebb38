package harness

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if the expectation and every assertion hold.
	Pass bool `json:"pass"`

	Strategy    string `json:"strategy,omitempty"`
	RowsWritten int    `json:"rows_written"`
	Duplicates  int    `json:"duplicates,omitempty"`
	ErrorCode   string `json:"error_code,omitempty"`

	// Trace contains every destination call in order, rendered as lines.
	Trace []string `json:"trace"`

	// Final is the sheet's contents after the reconcile; nil when the
	// sheet does not exist.
	Final [][]string `json:"final,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []string{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
