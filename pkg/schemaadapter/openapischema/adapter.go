// Package openapischema adapts kin-openapi schema validation to the
// SchemaAdapter contract: a values tree goes in, per-path issues come out.
// Schema errors for invalid data become issues; a broken or malformed schema
// comes back as an error so the runner can surface it as a fault.
package openapischema

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formstate/pkg/validation"
)

// Adapter validates values trees against an OpenAPI schema.
type Adapter struct {
	schema *openapi3.Schema
	opts   []openapi3.SchemaValidationOption
}

// Option customises schema validation behaviour.
type Option func(*Adapter)

// WithValidationOptions appends kin-openapi validation options, for example
// openapi3.EnableFormatValidation().
func WithValidationOptions(opts ...openapi3.SchemaValidationOption) Option {
	return func(a *Adapter) {
		a.opts = append(a.opts, opts...)
	}
}

// New wraps an already-built schema.
func New(schema *openapi3.Schema, options ...Option) *Adapter {
	a := &Adapter{schema: schema}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(a)
	}
	return a
}

// FromJSON builds an adapter from a raw JSON schema document.
func FromJSON(raw []byte, options ...Option) (*Adapter, error) {
	if len(raw) == 0 {
		return nil, errors.New("openapischema: schema payload is empty")
	}
	schema := &openapi3.Schema{}
	if err := json.Unmarshal(raw, schema); err != nil {
		return nil, fmt.Errorf("openapischema: parse schema: %w", err)
	}
	return New(schema, options...), nil
}

// Ensure the implementation satisfies the adapter contract.
var _ validation.SchemaAdapter = (*Adapter)(nil)

// ValidateSchema runs the schema against the values tree. Invalid data is
// reported as issues; malformed schemas and non-validation failures return
// an error instead.
func (a *Adapter) ValidateSchema(ctx context.Context, values map[string]any) ([]validation.Issue, error) {
	if a == nil || a.schema == nil {
		return nil, errors.New("openapischema: schema is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := a.schema.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapischema: malformed schema: %w", err)
	}

	opts := append([]openapi3.SchemaValidationOption{openapi3.MultiErrors()}, a.opts...)
	err := a.schema.VisitJSON(normalizeValues(values), opts...)
	if err == nil {
		return nil, nil
	}

	issues := collectIssues(err)
	if len(issues) == 0 {
		return nil, fmt.Errorf("openapischema: validate values: %w", err)
	}
	return issues, nil
}

// normalizeValues widens the tree so kin-openapi sees plain any-typed
// containers all the way down.
func normalizeValues(values map[string]any) any {
	if values == nil {
		return map[string]any{}
	}
	return values
}

func collectIssues(err error) []validation.Issue {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		var out []validation.Issue
		for _, item := range multi {
			out = append(out, collectIssues(item)...)
		}
		return out
	}

	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		return []validation.Issue{issueFromSchemaError(schemaErr)}
	}
	return nil
}

var missingPropertyPattern = regexp.MustCompile(`property "([^"]+)" is missing`)

func issueFromSchemaError(err *openapi3.SchemaError) validation.Issue {
	path := strings.Join(err.JSONPointer(), ".")
	message := strings.TrimSpace(err.Reason)
	if message == "" {
		message = strings.TrimSpace(err.Error())
	}

	// Required-property failures on some kin-openapi versions point at the
	// parent object; recover the property name from the reason text.
	if match := missingPropertyPattern.FindStringSubmatch(message); match != nil {
		property := match[1]
		if path == "" {
			path = property
		} else if !strings.HasSuffix(path, "."+property) && path != property {
			path = path + "." + property
		}
	}

	return validation.Issue{Path: path, Message: message}
}
