package report

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/errtree"
)

func sampleTree() errtree.Tree {
	return errtree.Tree{
		"email": "Required",
		"address": errtree.Tree{
			"city": "Unknown city",
		},
	}
}

func TestTextSortedOutput(t *testing.T) {
	got := Text(sampleTree())
	want := "address.city: Unknown city\nemail: Required\n"
	if got != want {
		t.Fatalf("text report mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestTextEmptyTree(t *testing.T) {
	if got := Text(nil); got != "" {
		t.Fatalf("empty tree should render empty, got %q", got)
	}
}

func TestSummary(t *testing.T) {
	count, paths := Summary(sampleTree())
	if count != 2 {
		t.Fatalf("expected 2 messages, got %d", count)
	}
	if diff := cmp.Diff([]string{"address.city", "email"}, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestHTMLContainsEntries(t *testing.T) {
	out, err := HTML(sampleTree())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `data-field="email"`) {
		t.Fatalf("expected email entry, got:\n%s", out)
	}
	if !strings.Contains(out, "Unknown city") {
		t.Fatalf("expected nested message, got:\n%s", out)
	}
}

func TestHTMLSanitisesMessages(t *testing.T) {
	tree := errtree.Tree{
		"bio": `<script>alert("x")</script>Too long`,
	}

	out, err := HTML(tree)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("script tags must not survive sanitisation:\n%s", out)
	}
	if !strings.Contains(out, "Too long") {
		t.Fatalf("plain text content must survive:\n%s", out)
	}
}
