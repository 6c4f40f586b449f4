package structtag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formstate/pkg/validation"
)

type signupForm struct {
	Username string  `mapstructure:"username" validate:"required,min=3"`
	Email    string  `mapstructure:"email" validate:"required,email"`
	Age      int     `mapstructure:"age" validate:"gte=13"`
	Address  address `mapstructure:"address"`
}

type address struct {
	City string `mapstructure:"city" validate:"required"`
}

func findIssue(issues []validation.Issue, path string) *validation.Issue {
	for i := range issues {
		if issues[i].Path == path {
			return &issues[i]
		}
	}
	return nil
}

func TestNewRejectsNonStructPrototype(t *testing.T) {
	_, err := New(42)
	require.Error(t, err)

	_, err = New(nil)
	require.Error(t, err)
}

func TestNewAcceptsPointerPrototype(t *testing.T) {
	adapter, err := New(&signupForm{})
	require.NoError(t, err)
	require.NotNil(t, adapter)
}

func TestValidValues(t *testing.T) {
	adapter, err := New(signupForm{})
	require.NoError(t, err)

	issues, err := adapter.ValidateSchema(context.Background(), map[string]any{
		"username": "ada",
		"email":    "ada@example.com",
		"age":      30,
		"address":  map[string]any{"city": "Lisbon"},
	})
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestTagFailuresMapToFieldPaths(t *testing.T) {
	adapter, err := New(signupForm{})
	require.NoError(t, err)

	issues, err := adapter.ValidateSchema(context.Background(), map[string]any{
		"username": "ab",
		"email":    "not-an-email",
		"age":      10,
		"address":  map[string]any{"city": ""},
	})
	require.NoError(t, err)

	require.NotNil(t, findIssue(issues, "username"))
	assert.Equal(t, "Must be at least 3 characters", findIssue(issues, "username").Message)

	require.NotNil(t, findIssue(issues, "email"))
	assert.Equal(t, "Must be a valid email address", findIssue(issues, "email").Message)

	require.NotNil(t, findIssue(issues, "age"))
	assert.Equal(t, "Must be greater than or equal to 13", findIssue(issues, "age").Message)

	require.NotNil(t, findIssue(issues, "address.city"))
	assert.Equal(t, "This field is required", findIssue(issues, "address.city").Message)
}

func TestWeaklyTypedDecode(t *testing.T) {
	adapter, err := New(signupForm{})
	require.NoError(t, err)

	// Age arrives as a string, as form inputs tend to.
	issues, err := adapter.ValidateSchema(context.Background(), map[string]any{
		"username": "ada",
		"email":    "ada@example.com",
		"age":      "30",
		"address":  map[string]any{"city": "Lisbon"},
	})
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestDecodeFailureIsErrorNotIssue(t *testing.T) {
	adapter, err := New(signupForm{})
	require.NoError(t, err)

	_, err = adapter.ValidateSchema(context.Background(), map[string]any{
		"address": "not a map",
	})
	require.Error(t, err)
}

func TestAdapterThroughFormRunner(t *testing.T) {
	adapter, err := New(signupForm{})
	require.NoError(t, err)

	runner := validation.NewSchemaRunner(adapter)
	tree, err := runner.Run(context.Background(), map[string]any{
		"username": "",
		"email":    "",
		"age":      20,
		"address":  map[string]any{"city": "Lisbon"},
	})
	require.NoError(t, err)
	require.NotNil(t, tree)
	assert.Equal(t, "This field is required", tree["username"])
}
