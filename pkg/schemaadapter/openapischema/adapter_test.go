package openapischema

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formstate/pkg/validation"
)

func testSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	schema.Required = []string{"email"}
	schema.Properties = openapi3.Schemas{
		"email":    openapi3.NewStringSchema().WithMinLength(1).NewRef(),
		"username": openapi3.NewStringSchema().WithMinLength(3).NewRef(),
		"address": openapi3.NewObjectSchema().
			WithProperty("city", openapi3.NewStringSchema().WithMinLength(1)).
			NewRef(),
	}
	return schema
}

func issueForPath(issues []validation.Issue, path string) *validation.Issue {
	for i := range issues {
		if issues[i].Path == path {
			return &issues[i]
		}
	}
	return nil
}

func TestValidValuesProduceNoIssues(t *testing.T) {
	adapter := New(testSchema())

	issues, err := adapter.ValidateSchema(context.Background(), map[string]any{
		"email":    "a@b.com",
		"username": "ada",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}

func TestMissingRequiredProperty(t *testing.T) {
	adapter := New(testSchema())

	issues, err := adapter.ValidateSchema(context.Background(), map[string]any{
		"username": "ada",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issueForPath(issues, "email") == nil {
		t.Fatalf("expected issue at email, got %v", issues)
	}
}

func TestNestedPathIssue(t *testing.T) {
	adapter := New(testSchema())

	issues, err := adapter.ValidateSchema(context.Background(), map[string]any{
		"email": "a@b.com",
		"address": map[string]any{
			"city": "",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issueForPath(issues, "address.city") == nil {
		t.Fatalf("expected issue at address.city, got %v", issues)
	}
}

func TestTypeMismatchReportsPath(t *testing.T) {
	adapter := New(testSchema())

	issues, err := adapter.ValidateSchema(context.Background(), map[string]any{
		"email":    "a@b.com",
		"username": 42,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issueForPath(issues, "username") == nil {
		t.Fatalf("expected issue at username, got %v", issues)
	}
}

func TestUnconfiguredSchemaIsError(t *testing.T) {
	adapter := New(nil)
	if _, err := adapter.ValidateSchema(context.Background(), map[string]any{}); err == nil {
		t.Fatalf("expected error for unconfigured schema")
	}
}

func TestFromJSON(t *testing.T) {
	raw := []byte(`{
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string", "minLength": 1}
		}
	}`)

	adapter, err := FromJSON(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	issues, err := adapter.ValidateSchema(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issueForPath(issues, "name") == nil {
		t.Fatalf("expected issue at name, got %v", issues)
	}

	if _, err := FromJSON(nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}

func TestAdapterThroughFormRunner(t *testing.T) {
	runner := validation.NewSchemaRunner(New(testSchema()))

	tree, err := runner.Run(context.Background(), map[string]any{
		"username": "x",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree == nil {
		t.Fatalf("expected error tree from schema failures")
	}
}
