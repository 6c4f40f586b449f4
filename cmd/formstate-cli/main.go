package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/internal/cli"
	"github.com/goliatone/go-formstate/internal/formdef"
	"github.com/goliatone/go-formstate/internal/prompt"
	"github.com/goliatone/go-formstate/pkg/orchestrator"
	"github.com/goliatone/go-formstate/pkg/report"
	"github.com/goliatone/go-formstate/pkg/schemaadapter/openapischema"
)

func main() {
	formPath := flag.String("form", "form.yaml", "form definition path")
	valuesPath := flag.String("values", "", "values file for non-interactive batch mode")
	schemaPath := flag.String("schema", "", "optional OpenAPI JSON schema for form-level validation")
	htmlOut := flag.String("html", "", "write an HTML error report to this file when submission is blocked")
	verbose := flag.Bool("verbose", false, "log validation pass lifecycle to stderr")
	flag.Parse()

	def, err := formdef.Load(*formPath)
	if err != nil {
		log.Fatalf("Failed to load form definition: %v", err)
	}

	options := []orchestrator.Option{}
	if *verbose {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.DebugLevel)
		options = append(options, orchestrator.WithLogger(logger))
	}
	if *schemaPath != "" {
		raw, err := os.ReadFile(*schemaPath)
		if err != nil {
			log.Fatalf("Failed to read schema: %v", err)
		}
		adapter, err := openapischema.FromJSON(raw)
		if err != nil {
			log.Fatalf("Failed to build schema adapter: %v", err)
		}
		options = append(options, orchestrator.WithSchemaAdapter(adapter))
	}

	o := orchestrator.New(def.InitialValues(), options...)
	def.Apply(o)

	ctx := context.Background()
	if *valuesPath != "" {
		err = cli.RunBatch(ctx, loadValues(*valuesPath), o, os.Stdout)
	} else {
		err = cli.RunInteractive(ctx, def, prompt.NewSurveyDriver(), o, os.Stdout)
	}

	switch {
	case err == nil:
	case errors.Is(err, cli.ErrBlocked):
		writeHTMLReport(*htmlOut, o)
		os.Exit(1)
	case errors.Is(err, prompt.ErrAborted):
		fmt.Fprintln(os.Stderr, "aborted")
		os.Exit(130)
	default:
		log.Fatalf("Failed to run form: %v", err)
	}
}

func loadValues(path string) map[string]any {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read values: %v", err)
	}
	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		log.Fatalf("Failed to parse values: %v", err)
	}
	return values
}

func writeHTMLReport(path string, o *orchestrator.Orchestrator) {
	if path == "" {
		return
	}
	html, err := report.HTML(o.Errors())
	if err != nil {
		log.Fatalf("Failed to render HTML report: %v", err)
	}
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		log.Fatalf("Failed to write HTML report: %v", err)
	}
	fmt.Printf("Error report written to %s\n", path)
}
