package validation

import (
	"context"
	"strings"
)

// RunField invokes a single field validator and normalises its result. The
// returned message is trimmed; "" means the field is valid. Errors and panics
// from the validator come back as a *Fault carrying the field path.
func RunField(ctx context.Context, path string, fn FieldFunc, value any, values map[string]any) (message string, err error) {
	if fn == nil {
		return "", nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", newFault(path, ctxErr)
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			message = ""
			err = recoveredFault(path, recovered)
		}
	}()

	message, fnErr := fn(ctx, value, values)
	if fnErr != nil {
		return "", newFault(path, fnErr)
	}
	return strings.TrimSpace(message), nil
}
