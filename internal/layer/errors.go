package layer

import "fmt"

// Code names a validation failure.
type Code string

const (
	CodeMissingSource     Code = "MissingSource"
	CodeInvalidBounds     Code = "InvalidBounds"
	CodeInvalidVisParams  Code = "InvalidVisParams"
	CodeUnsupportedKind   Code = "UnsupportedKind"
	CodeConflictingSource Code = "ConflictingSource"
	CodeInvalidWMS        Code = "InvalidWMS"
)

// ValidationError is returned when form input cannot become a Definition.
// Errors compare equal under errors.Is when their codes match.
type ValidationError struct {
	Code   Code
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Code == e.Code
}

var (
	ErrMissingSource     = &ValidationError{Code: CodeMissingSource}
	ErrInvalidBounds     = &ValidationError{Code: CodeInvalidBounds}
	ErrInvalidVisParams  = &ValidationError{Code: CodeInvalidVisParams}
	ErrUnsupportedKind   = &ValidationError{Code: CodeUnsupportedKind}
	ErrConflictingSource = &ValidationError{Code: CodeConflictingSource}
	ErrInvalidWMS        = &ValidationError{Code: CodeInvalidWMS}
)

func invalid(code Code, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Code: code, Detail: fmt.Sprintf(format, args...)}
}
