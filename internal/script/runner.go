// Package script runs author-supplied scene code. A script sees exactly one
// global besides the ECMAScript built-ins: the map handle, bound as "m".
// There is no module loader, console, timer or file access.
package script

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"
)

const (
	// BindingName is the only host value a script can reach.
	BindingName = "m"

	DefaultTimeout = 5 * time.Second

	// MaxDiagnostic caps the error text kept from a failing script.
	MaxDiagnostic = 240
)

// CustomCodeError wraps any failure raised while running a script.
type CustomCodeError struct {
	Diagnostic string
	Err        error
}

func (e *CustomCodeError) Error() string {
	return "custom code failed: " + e.Diagnostic
}

func (e *CustomCodeError) Unwrap() error {
	return e.Err
}

// ErrTimeout is wrapped by the CustomCodeError of a script that ran too long.
var ErrTimeout = errors.New("script timed out")

// Runner executes scripts in a fresh runtime each time.
type Runner struct {
	timeout time.Duration
}

func NewRunner(timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{timeout: timeout}
}

// Run executes code with handle bound as BindingName. Exported methods on
// handle are visible to the script with a lower-case first letter
// (SetZoom becomes m.setZoom). Every failure, including a Go panic inside
// the handle, comes back as a *CustomCodeError.
func (r *Runner) Run(ctx context.Context, code string, handle interface{}) (err error) {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.UncapFieldNameMapper())
	if err := vm.Set(BindingName, handle); err != nil {
		return newError(err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ErrTimeout)
		case <-done:
		}
	}()

	defer func() {
		if p := recover(); p != nil {
			err = newError(fmt.Errorf("panic: %v", p))
		}
	}()

	if _, err := vm.RunString(code); err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return &CustomCodeError{Diagnostic: truncate(ErrTimeout.Error()), Err: ErrTimeout}
		}
		return newError(err)
	}
	return nil
}

func newError(err error) *CustomCodeError {
	return &CustomCodeError{Diagnostic: truncate(err.Error()), Err: err}
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxDiagnostic {
		return s
	}
	return string(runes[:MaxDiagnostic-1]) + "…"
}
