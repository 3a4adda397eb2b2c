package recommend

import (
	"errors"
	"fmt"
	"strings"
)

// Failure kinds reported at the request boundary.
const (
	KindMissingFields = "missing_fields"
	KindBudgetTooLow  = "budget_too_low"
	KindInternal      = "internal_error"
)

var (
	// ErrInvalidIntent means a mandatory field is empty or the budget is not positive.
	ErrInvalidIntent = errors.New("invalid intent")

	// ErrBudgetTooLow means no ranked candidate fits the budget.
	ErrBudgetTooLow = errors.New("budget too low")

	// ErrInternal covers unexpected encoding or ranking failures.
	ErrInternal = errors.New("internal error")
)

// Failure is a named, user-presentable recommendation failure.
type Failure struct {
	Kind    string   `json:"error_kind"`
	Message string   `json:"error"`
	Fields  []string `json:"missing_fields,omitempty"`
	err     error
}

func (f *Failure) Error() string {
	return f.Message
}

// Unwrap exposes the sentinel (and, for internal errors, the cause).
func (f *Failure) Unwrap() []error {
	if f.err == nil {
		return []error{f.sentinel()}
	}
	return []error{f.sentinel(), f.err}
}

func (f *Failure) sentinel() error {
	switch f.Kind {
	case KindMissingFields:
		return ErrInvalidIntent
	case KindBudgetTooLow:
		return ErrBudgetTooLow
	default:
		return ErrInternal
	}
}

func missingFields(fields []string) *Failure {
	return &Failure{
		Kind:    KindMissingFields,
		Message: fmt.Sprintf("Missing fields. Please fill all inputs. (%s)", strings.Join(fields, ", ")),
		Fields:  fields,
	}
}

func budgetTooLow() *Failure {
	return &Failure{
		Kind:    KindBudgetTooLow,
		Message: "Budget too low for this specific request.",
	}
}

func internalError(cause error) *Failure {
	return &Failure{
		Kind:    KindInternal,
		Message: "Internal Server Error. Check console logs.",
		err:     cause,
	}
}

// KindOf returns the failure kind of err, or "" if err is not a Failure.
func KindOf(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}
