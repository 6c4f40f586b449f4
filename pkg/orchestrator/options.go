package orchestrator

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formstate/pkg/validation"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithFormValidator registers a function-shaped whole-form validator.
func WithFormValidator(fn validation.FormFunc) Option {
	return func(o *Orchestrator) {
		if fn == nil {
			return
		}
		o.form = validation.NewFormRunner(fn)
	}
}

// WithSchemaAdapter registers a schema adapter as the whole-form validator.
// Mutually exclusive with WithFormValidator; the last option applied wins.
func WithSchemaAdapter(adapter validation.SchemaAdapter) Option {
	return func(o *Orchestrator) {
		if adapter == nil {
			return
		}
		o.form = validation.NewSchemaRunner(adapter)
	}
}

// WithFieldValidator registers a field-level validator at construction time.
// Fields can also be registered and deregistered later as the view mounts
// and unmounts them.
func WithFieldValidator(path string, fn validation.FieldFunc) Option {
	return func(o *Orchestrator) {
		o.registerFieldLocked(path, fn)
	}
}

// WithValidateOnChange toggles validation on value-setting triggers.
// Defaults to true.
func WithValidateOnChange(enabled bool) Option {
	return func(o *Orchestrator) {
		o.validateOnChange = enabled
	}
}

// WithValidateOnBlur toggles validation on touched-setting triggers.
// Defaults to true.
func WithValidateOnBlur(enabled bool) Option {
	return func(o *Orchestrator) {
		o.validateOnBlur = enabled
	}
}

// WithLogger injects a zerolog logger for pass lifecycle events. The default
// logger discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = log
	}
}

func normalizeFieldPath(path string) string {
	return strings.TrimSpace(path)
}
