package validation

import (
	"context"
	"strings"

	"github.com/goliatone/go-formstate/pkg/errtree"
	"github.com/goliatone/go-formstate/pkg/fieldpath"
)

// FormRunner invokes the whole-form validator, dispatching over the two
// supported shapes: a plain function returning an error tree, or a schema
// adapter returning per-path issues. Results are normalised into an error
// tree before they reach the merge step.
type FormRunner struct {
	fn      FormFunc
	adapter SchemaAdapter
}

// NewFormRunner wraps a function-shaped form validator.
func NewFormRunner(fn FormFunc) *FormRunner {
	return &FormRunner{fn: fn}
}

// NewSchemaRunner wraps a schema adapter.
func NewSchemaRunner(adapter SchemaAdapter) *FormRunner {
	return &FormRunner{adapter: adapter}
}

// Enabled reports whether the runner has a validator to invoke.
func (r *FormRunner) Enabled() bool {
	return r != nil && (r.fn != nil || r.adapter != nil)
}

// Run invokes the configured validator against the values tree. The returned
// tree is normalised (nil leaves coerced to absent). Validator errors and
// panics come back as a *Fault with an empty path.
func (r *FormRunner) Run(ctx context.Context, values map[string]any) (tree errtree.Tree, err error) {
	if !r.Enabled() {
		return nil, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, newFault("", ctxErr)
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			tree = nil
			err = recoveredFault("", recovered)
		}
	}()

	if r.fn != nil {
		result, fnErr := r.fn(ctx, values)
		if fnErr != nil {
			return nil, newFault("", fnErr)
		}
		return errtree.Normalize(result), nil
	}

	issues, adapterErr := r.adapter.ValidateSchema(ctx, values)
	if adapterErr != nil {
		return nil, newFault("", adapterErr)
	}
	return IssuesToTree(issues), nil
}

// IssuesToTree groups per-path issues into an error tree. The first failure
// recorded for a path wins; later issues for the same path are dropped so
// the result is deterministic regardless of how many rules a schema stacks
// on one field. Issues with unparseable paths or blank messages are skipped.
func IssuesToTree(issues []Issue) errtree.Tree {
	if len(issues) == 0 {
		return nil
	}

	tree := errtree.Tree{}
	for _, issue := range issues {
		path := fieldpath.Canonical(issue.Path)
		if path == "" {
			continue
		}
		if pathRecorded(tree, path) {
			continue
		}
		errtree.Set(tree, path, issue.Message)
	}
	return errtree.Normalize(tree)
}

// pathRecorded reports whether the path or any of its ancestors already
// holds a message, so stacked schema rules cannot clobber an earlier one.
func pathRecorded(tree errtree.Tree, path string) bool {
	segments := fieldpath.Segments(path)
	for end := 1; end <= len(segments); end++ {
		prefix := strings.Join(segments[:end], ".")
		if errtree.Get(tree, prefix) != "" {
			return true
		}
	}
	return false
}
