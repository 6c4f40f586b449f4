package errtree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeDropsNilAndBlankLeaves(t *testing.T) {
	tree := Tree{
		"username": nil,
		"email":    "  Required ",
		"padding":  "   ",
		"address": Tree{
			"city": nil,
		},
	}

	got := Normalize(tree)
	want := Tree{"email": "Required"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("normalize mismatch (-want +got):\n%s", diff)
	}
	if _, ok := tree["username"]; !ok {
		t.Fatalf("normalize must not mutate its input")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	tree := Tree{
		"email": "Required",
		"address": Tree{
			"city": "Required",
		},
	}

	once := Normalize(tree)
	twice := Normalize(once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("normalize not idempotent (-once +twice):\n%s", diff)
	}
}

func TestMergeFieldLevelWins(t *testing.T) {
	form := Tree{"email": "bad form", "username": "Required"}
	field := Tree{"email": "bad field"}

	got := Merge(form, field)
	want := Tree{"email": "bad field", "username": "Required"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeRecursesIntoBranches(t *testing.T) {
	form := Tree{
		"address": Tree{"city": "Required", "zip": "Required"},
	}
	field := Tree{
		"address": Tree{"city": "Unknown city"},
	}

	got := Merge(form, field)
	want := Tree{
		"address": Tree{"city": "Unknown city", "zip": "Required"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	form := Tree{"address": Tree{"city": "Required"}}
	field := Tree{"address": Tree{"zip": "Required"}}

	Merge(form, field)

	if len(form["address"].(Tree)) != 1 || len(field["address"].(Tree)) != 1 {
		t.Fatalf("merge mutated its inputs: form=%v field=%v", form, field)
	}
}

func TestPruneEnforcesStructuralSubset(t *testing.T) {
	errs := Tree{
		"email": "Required",
		"phone": "Required",
		"address": Tree{
			"city":    "Required",
			"country": "Required",
		},
	}
	values := map[string]any{
		"email": "",
		"address": map[string]any{
			"city": "",
		},
	}

	got := Prune(errs, values)
	want := Tree{
		"email":   "Required",
		"address": Tree{"city": "Required"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("prune mismatch (-want +got):\n%s", diff)
	}
}

func TestPruneSliceIndices(t *testing.T) {
	errs := Tree{
		"items": Tree{
			"0": Tree{"name": "Required"},
			"5": Tree{"name": "Required"},
		},
	}
	values := map[string]any{
		"items": []any{
			map[string]any{"name": ""},
		},
	}

	got := Prune(errs, values)
	want := Tree{
		"items": Tree{"0": Tree{"name": "Required"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("prune mismatch (-want +got):\n%s", diff)
	}
}

func TestSetGetDelete(t *testing.T) {
	tree := Tree{}
	Set(tree, "address.city", "Required")

	if got := Get(tree, "address.city"); got != "Required" {
		t.Fatalf("expected Required, got %q", got)
	}

	Set(tree, "address.city", "  ")
	if got := Get(tree, "address.city"); got != "" {
		t.Fatalf("blank set should delete, got %q", got)
	}
	if len(tree) != 0 {
		t.Fatalf("expected emptied tree, got %v", tree)
	}
}

func TestFlattenAndPaths(t *testing.T) {
	tree := Tree{
		"email": "Required",
		"address": Tree{
			"city": "Required",
		},
	}

	flat := Flatten(tree)
	want := map[string]string{
		"email":        "Required",
		"address.city": "Required",
	}
	if diff := cmp.Diff(want, flat); diff != "" {
		t.Fatalf("flatten mismatch (-want +got):\n%s", diff)
	}

	paths := Paths(tree)
	if diff := cmp.Diff([]string{"address.city", "email"}, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestIsEmpty(t *testing.T) {
	if !IsEmpty(nil) {
		t.Fatalf("nil tree should be empty")
	}
	if !IsEmpty(Tree{"email": nil, "pad": "  "}) {
		t.Fatalf("tree of removable leaves should be empty")
	}
	if IsEmpty(Tree{"email": "Required"}) {
		t.Fatalf("tree with a message should not be empty")
	}
}
