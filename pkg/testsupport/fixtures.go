// Package testsupport carries helpers shared by package tests: values-tree
// fixtures loaded from JSON and go-cmp diffing for error trees.
package testsupport

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/errtree"
)

// MustLoadValues reads a JSON fixture into a values tree. Testing helpers
// fail the test on error to keep scenario tests concise.
func MustLoadValues(t *testing.T, path string) map[string]any {
	t.Helper()

	values, err := LoadValues(path)
	if err != nil {
		t.Fatalf("load values: %v", err)
	}
	return values
}

// LoadValues returns a values tree without requiring testing.T, for callers
// wiring fixtures in setup functions.
func LoadValues(path string) (map[string]any, error) {
	if path == "" {
		return nil, errors.New("testsupport: values path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read values: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("testsupport: unmarshal values: %w", err)
	}
	return out, nil
}

// DiffTrees fails the test when two error trees differ, printing a go-cmp
// diff.
func DiffTrees(t *testing.T, want, got errtree.Tree) {
	t.Helper()

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}
