// Package cli implements the interactive and batch flows behind
// formstate-cli: prompt per field, blur-validate each answer, submit at the
// end, and report the merged error tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goliatone/go-formstate/internal/formdef"
	"github.com/goliatone/go-formstate/internal/prompt"
	"github.com/goliatone/go-formstate/pkg/errtree"
	"github.com/goliatone/go-formstate/pkg/orchestrator"
	"github.com/goliatone/go-formstate/pkg/report"
)

// ErrBlocked reports that the final submit found validation errors.
var ErrBlocked = errors.New("cli: submission blocked by validation errors")

// maxAttempts bounds re-prompting per field so a scripted driver cannot
// loop forever on an answer its own rules reject.
const maxAttempts = 5

// RunInteractive walks the form definition, prompting for each field and
// re-prompting while the blur-triggered validation rejects the answer. The
// final submit decides the outcome: ErrBlocked when the merged error tree is
// non-empty.
func RunInteractive(ctx context.Context, def formdef.Definition, driver prompt.Driver, o *orchestrator.Orchestrator, out io.Writer) error {
	if def.Title != "" {
		if err := driver.Info(ctx, def.Title); err != nil {
			return err
		}
	}

	for _, field := range def.Fields {
		if err := askField(ctx, field, driver, o); err != nil {
			return err
		}
	}
	return submit(ctx, o, out)
}

func askField(ctx context.Context, field formdef.Field, driver prompt.Driver, o *orchestrator.Orchestrator) error {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		answer, err := ask(ctx, field, driver)
		if err != nil {
			return err
		}

		o.SetValue(ctx, field.Path, answer)
		pass := o.SetTouched(ctx, field.Path)
		tree, err := pass.Wait(ctx)
		if err != nil {
			return fmt.Errorf("cli: validate %s: %w", field.Path, err)
		}

		message := errtree.Get(tree, field.Path)
		if message == "" {
			return nil
		}
		if err := driver.Info(ctx, message); err != nil {
			return err
		}
	}
	// Give up re-prompting; the submit pass will surface the error.
	return nil
}

func ask(ctx context.Context, field formdef.Field, driver prompt.Driver) (string, error) {
	switch field.Kind {
	case "password":
		return driver.Password(ctx, prompt.InputConfig{
			Message: field.Label,
			Help:    field.Help,
		})
	case "select":
		defaultIndex := 0
		for i, option := range field.Options {
			if option == field.Default {
				defaultIndex = i
				break
			}
		}
		return driver.Select(ctx, prompt.SelectConfig{
			Message:      field.Label,
			Options:      field.Options,
			DefaultIndex: defaultIndex,
			Help:         field.Help,
		})
	case "confirm":
		confirmed, err := driver.Confirm(ctx, field.Label, field.Default == "true")
		if err != nil {
			return "", err
		}
		if confirmed {
			return "true", nil
		}
		return "false", nil
	default:
		return driver.Input(ctx, prompt.InputConfig{
			Message: field.Label,
			Default: field.Default,
			Help:    field.Help,
		})
	}
}

// RunBatch applies a pre-built values tree and submits in one shot.
func RunBatch(ctx context.Context, values map[string]any, o *orchestrator.Orchestrator, out io.Writer) error {
	pass := o.SetValues(ctx, values)
	if _, err := pass.Wait(ctx); err != nil {
		return fmt.Errorf("cli: apply values: %w", err)
	}
	return submit(ctx, o, out)
}

func submit(ctx context.Context, o *orchestrator.Orchestrator, out io.Writer) error {
	pass := o.Submit(ctx)
	tree, err := pass.Wait(ctx)
	if err != nil {
		return fmt.Errorf("cli: submit: %w", err)
	}
	if pass.Blocked() {
		fmt.Fprint(out, report.Text(tree))
		return ErrBlocked
	}
	fmt.Fprintln(out, "ok")
	return nil
}
