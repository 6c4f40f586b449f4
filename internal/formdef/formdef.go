// Package formdef loads declarative form definitions from YAML and compiles
// their rules into field-level validators for the orchestrator.
package formdef

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/pkg/orchestrator"
	"github.com/goliatone/go-formstate/pkg/validation"
)

// Field describes one form field and its validation rules.
type Field struct {
	Path      string   `yaml:"path"`
	Label     string   `yaml:"label"`
	Kind      string   `yaml:"kind"` // input (default), password, confirm, select
	Default   string   `yaml:"default"`
	Help      string   `yaml:"help"`
	Required  bool     `yaml:"required"`
	MinLength int      `yaml:"minLength"`
	MaxLength int      `yaml:"maxLength"`
	Pattern   string   `yaml:"pattern"`
	Options   []string `yaml:"options"`
}

// Definition is a complete form description.
type Definition struct {
	Title  string  `yaml:"title"`
	Fields []Field `yaml:"fields"`
}

// Load reads a YAML definition from disk.
func Load(path string) (Definition, error) {
	if strings.TrimSpace(path) == "" {
		return Definition{}, errors.New("formdef: definition path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("formdef: read definition: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML definition and validates its shape.
func Parse(raw []byte) (Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return Definition{}, fmt.Errorf("formdef: parse definition: %w", err)
	}
	if len(def.Fields) == 0 {
		return Definition{}, errors.New("formdef: definition has no fields")
	}

	seen := make(map[string]struct{}, len(def.Fields))
	for i := range def.Fields {
		field := &def.Fields[i]
		field.Path = strings.TrimSpace(field.Path)
		if field.Path == "" {
			return Definition{}, fmt.Errorf("formdef: field %d has no path", i)
		}
		if _, dup := seen[field.Path]; dup {
			return Definition{}, fmt.Errorf("formdef: duplicate field path %q", field.Path)
		}
		seen[field.Path] = struct{}{}
		if field.Label == "" {
			field.Label = field.Path
		}
		if field.Kind == "" {
			field.Kind = "input"
		}
		if field.Pattern != "" {
			if _, err := regexp.Compile(field.Pattern); err != nil {
				return Definition{}, fmt.Errorf("formdef: field %q pattern: %w", field.Path, err)
			}
		}
	}
	return def, nil
}

// InitialValues builds the starting values tree from field defaults.
func (d Definition) InitialValues() map[string]any {
	values := make(map[string]any, len(d.Fields))
	for _, field := range d.Fields {
		values[field.Path] = field.Default
	}
	return values
}

// Apply registers a compiled validator for every field.
func (d Definition) Apply(o *orchestrator.Orchestrator) {
	for _, field := range d.Fields {
		o.RegisterField(field.Path, field.Validator())
	}
}

// Validator compiles the field's rules into a single validator function.
// Rules run in declaration order; the first failing rule reports.
func (f Field) Validator() validation.FieldFunc {
	var pattern *regexp.Regexp
	if f.Pattern != "" {
		// Parse already rejected invalid patterns; a mismatch here means the
		// definition was mutated after parsing, which is a validator fault.
		pattern = regexp.MustCompile(f.Pattern)
	}
	label := f.Label
	if label == "" {
		label = f.Path
	}

	return func(_ context.Context, value any, _ map[string]any) (string, error) {
		text, ok := value.(string)
		if !ok && value != nil {
			text = fmt.Sprint(value)
		}
		text = strings.TrimSpace(text)

		if text == "" {
			if f.Required {
				return fmt.Sprintf("%s is required", label), nil
			}
			return "", nil
		}
		if f.MinLength > 0 && len(text) < f.MinLength {
			return fmt.Sprintf("%s must be at least %d characters", label, f.MinLength), nil
		}
		if f.MaxLength > 0 && len(text) > f.MaxLength {
			return fmt.Sprintf("%s must be at most %d characters", label, f.MaxLength), nil
		}
		if pattern != nil && !pattern.MatchString(text) {
			return fmt.Sprintf("%s has an invalid format", label), nil
		}
		if len(f.Options) > 0 {
			for _, option := range f.Options {
				if text == option {
					return "", nil
				}
			}
			return fmt.Sprintf("%s must be one of: %s", label, strings.Join(f.Options, ", ")), nil
		}
		return "", nil
	}
}
