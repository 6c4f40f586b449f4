// Package formstate exposes the validation orchestrator from the module
// root for callers that want a single import: form values, touched markers,
// and error trees driven by change/blur/submit triggers.
package formstate

import (
	"github.com/goliatone/go-formstate/pkg/errtree"
	"github.com/goliatone/go-formstate/pkg/orchestrator"
	"github.com/goliatone/go-formstate/pkg/validation"
)

// Orchestrator aliases the orchestrator entry point.
type Orchestrator = orchestrator.Orchestrator

// Pass is the handle returned by every validation trigger.
type Pass = orchestrator.Pass

// Option customises orchestrator construction.
type Option = orchestrator.Option

// ErrorTree is the nested error mapping shaped like the values tree.
type ErrorTree = errtree.Tree

// FieldFunc validates a single field's value.
type FieldFunc = validation.FieldFunc

// FormFunc validates the whole values tree.
type FormFunc = validation.FormFunc

// SchemaAdapter translates an external schema library's failures into
// per-path issues.
type SchemaAdapter = validation.SchemaAdapter

// New constructs an orchestrator seeded with initial values.
func New(initialValues map[string]any, options ...Option) *Orchestrator {
	return orchestrator.New(initialValues, options...)
}

// WithFormValidator registers a function-shaped whole-form validator.
func WithFormValidator(fn FormFunc) Option {
	return orchestrator.WithFormValidator(fn)
}

// WithSchemaAdapter registers a schema adapter as the whole-form validator.
func WithSchemaAdapter(adapter SchemaAdapter) Option {
	return orchestrator.WithSchemaAdapter(adapter)
}

// WithFieldValidator registers a field-level validator at construction time.
func WithFieldValidator(path string, fn FieldFunc) Option {
	return orchestrator.WithFieldValidator(path, fn)
}

// WithValidateOnChange toggles validation on value-setting triggers.
func WithValidateOnChange(enabled bool) Option {
	return orchestrator.WithValidateOnChange(enabled)
}

// WithValidateOnBlur toggles validation on touched-setting triggers.
func WithValidateOnBlur(enabled bool) Option {
	return orchestrator.WithValidateOnBlur(enabled)
}
