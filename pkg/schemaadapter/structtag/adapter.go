// Package structtag adapts go-playground/validator struct-tag validation to
// the SchemaAdapter contract. The values tree is decoded into a tagged
// prototype struct with mapstructure, validated, and each field error is
// translated into a per-path issue addressed by the field's mapstructure
// name.
package structtag

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/goliatone/go-formstate/pkg/validation"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// sharedValidator returns the process-wide validator instance. Struct
// metadata is cached inside the instance, so sharing it keeps repeated
// passes cheap. Field names reported on errors come from mapstructure tags
// so issue paths line up with values-tree keys.
func sharedValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			tag := field.Tag.Get("mapstructure")
			if tag == "" {
				return strings.ToLower(field.Name)
			}
			name := strings.Split(tag, ",")[0]
			if name == "" || name == "-" {
				return strings.ToLower(field.Name)
			}
			return name
		})
	})
	return validate
}

// Adapter validates values trees against a tagged prototype struct.
type Adapter struct {
	prototype reflect.Type
}

// New builds an adapter from a prototype struct (value or pointer). The
// prototype's `validate` tags define the rules and its `mapstructure` tags
// define the field names used in issue paths.
func New(prototype any) (*Adapter, error) {
	if prototype == nil {
		return nil, errors.New("structtag: prototype is required")
	}
	t := reflect.TypeOf(prototype)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("structtag: prototype must be a struct, got %s", t.Kind())
	}
	return &Adapter{prototype: t}, nil
}

// Ensure the implementation satisfies the adapter contract.
var _ validation.SchemaAdapter = (*Adapter)(nil)

// ValidateSchema decodes the values tree into a fresh prototype instance and
// validates it. Tag failures become issues; decode failures and validator
// misuse come back as errors so the runner surfaces them as faults.
func (a *Adapter) ValidateSchema(ctx context.Context, values map[string]any) ([]validation.Issue, error) {
	if a == nil || a.prototype == nil {
		return nil, errors.New("structtag: adapter is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target := reflect.New(a.prototype).Interface()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("structtag: build decoder: %w", err)
	}
	if err := decoder.Decode(values); err != nil {
		return nil, fmt.Errorf("structtag: decode values: %w", err)
	}

	err = sharedValidator().StructCtx(ctx, target)
	if err == nil {
		return nil, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, fmt.Errorf("structtag: validate struct: %w", err)
	}

	issues := make([]validation.Issue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, validation.Issue{
			Path:    issuePath(fe),
			Message: translate(fe),
		})
	}
	return issues, nil
}

// issuePath strips the root struct name from the error namespace, leaving
// the dotted values-tree path.
func issuePath(fe validator.FieldError) string {
	namespace := fe.Namespace()
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return fe.Field()
}

var messageTemplates = map[string]string{
	"required": "This field is required",
	"email":    "Must be a valid email address",
	"url":      "Must be a valid URL",
	"uuid":     "Must be a valid UUID",
}

var messageTemplatesWithParam = map[string]string{
	"oneof": "Must be one of: %s",
	"gte":   "Must be greater than or equal to %s",
	"lte":   "Must be less than or equal to %s",
	"gt":    "Must be greater than %s",
	"lt":    "Must be less than %s",
	"len":   "Must be exactly %s characters",
	"eq":    "Must equal %s",
}

// translate converts a field error into a human-readable message.
func translate(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := messageTemplates[tag]; ok {
		return template
	}
	if template, ok := messageTemplatesWithParam[tag]; ok {
		return fmt.Sprintf(template, param)
	}

	isString := fe.Kind() == reflect.String
	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("Must be at least %s characters", param)
		}
		return fmt.Sprintf("Must be at least %s", param)
	case "max":
		if isString {
			return fmt.Sprintf("Must be at most %s characters", param)
		}
		return fmt.Sprintf("Must be at most %s", param)
	default:
		return fmt.Sprintf("Failed %s validation", tag)
	}
}
