// Package validation defines the validator contracts used by the
// orchestrator and the runners that invoke them. Validators report invalid
// data through messages or issue lists; a validator that itself breaks
// (panic, rejected call, malformed schema) surfaces as a *Fault instead and
// never enters the error tree.
package validation

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-formstate/pkg/errtree"
)

// FieldFunc validates a single field. It receives the field's current value
// and the whole values tree for cross-field rules. Returning "" means valid;
// a non-blank string is the error message; a non-nil error is a validator
// fault, not a validation failure.
type FieldFunc func(ctx context.Context, value any, values map[string]any) (string, error)

// FormFunc validates the whole values tree, returning an error tree shaped
// like the values (absent key = valid). A non-nil error is a validator fault.
type FormFunc func(ctx context.Context, values map[string]any) (errtree.Tree, error)

// Issue is a single per-path failure reported by a schema adapter.
type Issue struct {
	Path    string
	Message string
}

// SchemaAdapter translates an external schema library's validation routine
// into per-path issues. Returning (nil, nil) means the values are valid. A
// non-nil error indicates the adapter or schema itself failed (for example a
// malformed schema definition) and is surfaced as a fault.
type SchemaAdapter interface {
	ValidateSchema(ctx context.Context, values map[string]any) ([]Issue, error)
}

// Fault marks a validator that broke, as opposed to data that failed
// validation. Path is empty for form-level validators.
type Fault struct {
	Path string
	Err  error
}

func (f *Fault) Error() string {
	if f.Path == "" {
		return fmt.Sprintf("validation: form validator fault: %v", f.Err)
	}
	return fmt.Sprintf("validation: field %q validator fault: %v", f.Path, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// IsFault reports whether err wraps a validator fault.
func IsFault(err error) bool {
	var fault *Fault
	return errors.As(err, &fault)
}

func newFault(path string, err error) *Fault {
	return &Fault{Path: path, Err: err}
}

func recoveredFault(path string, recovered any) *Fault {
	if err, ok := recovered.(error); ok {
		return newFault(path, fmt.Errorf("validator panic: %w", err))
	}
	return newFault(path, fmt.Errorf("validator panic: %v", recovered))
}
