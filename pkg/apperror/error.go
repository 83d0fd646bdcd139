package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a stable, client-facing failure identifier.
type Code string

const (
	CodeValidation               Code = "VALIDATION"
	CodeNotFound                 Code = "NOT_FOUND"
	CodeAlreadyPosted            Code = "ALREADY_POSTED"
	CodeMissingAccountMapping    Code = "MISSING_ACCOUNT_MAPPING"
	CodeNotBalanced              Code = "NOT_BALANCED"
	CodeOverpayment              Code = "OVERPAYMENT"
	CodeMissingRate              Code = "MISSING_RATE"
	CodeInProgress               Code = "IN_PROGRESS"
	CodeNotInProgress            Code = "NOT_IN_PROGRESS"
	CodeUnbalancedReconciliation Code = "UNBALANCED_RECONCILIATION"
	CodeMatchConflict            Code = "MATCH_CONFLICT"
	CodeCategoryLocked           Code = "CATEGORY_LOCKED"
	CodeDBError                  Code = "DB_ERROR"
)

// Error carries a stable code, a human-readable message and optional
// details such as the list of unresolved account keys.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches code to cause. A nil cause yields nil.
func Wrap(code Code, message string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: cause}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// WithDetail returns a copy of e with key set in Details.
func (e *Error) WithDetail(key string, value any) *Error {
	next := *e
	next.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		next.Details[k] = v
	}
	next.Details[key] = value
	return &next
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) (Code, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}

// HasCode reports whether err carries code anywhere in its chain.
func HasCode(err error, code Code) bool {
	return errors.Is(err, &Error{Code: code})
}
