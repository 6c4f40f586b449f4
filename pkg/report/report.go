// Package report renders merged error trees for surfaces that live outside
// the view layer: CLI output, server-side fallback pages, logs. The
// orchestrator decides correctness and freshness of the tree; this package
// only formats what it is given.
package report

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formstate/pkg/errtree"
)

// Text renders the tree as sorted "path: message" lines. An empty tree
// renders as "".
func Text(tree errtree.Tree) string {
	flat := errtree.Flatten(tree)
	if len(flat) == 0 {
		return ""
	}

	paths := make([]string, 0, len(flat))
	for path := range flat {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, path := range paths {
		fmt.Fprintf(&b, "%s: %s\n", path, flat[path])
	}
	return b.String()
}

// Summary reports the number of messages and their sorted paths.
func Summary(tree errtree.Tree) (int, []string) {
	paths := errtree.Paths(tree)
	return len(paths), paths
}

const htmlTemplate = `<ul class="formstate-errors">
{% for entry in entries %}  <li data-field="{{ entry.Path }}"><strong>{{ entry.Path }}</strong>: {{ entry.Message|safe }}</li>
{% endfor %}</ul>
`

type htmlEntry struct {
	Path    string
	Message string
}

var (
	htmlOnce sync.Once
	htmlTpl  *pongo2.Template
	htmlErr  error
)

// HTML renders the tree as an unordered list. Messages pass through a strict
// sanitising policy first: validators may echo user input back into their
// messages, and that input must not reach the page as markup.
func HTML(tree errtree.Tree) (string, error) {
	htmlOnce.Do(func() {
		htmlTpl, htmlErr = pongo2.FromString(htmlTemplate)
	})
	if htmlErr != nil {
		return "", fmt.Errorf("report: parse template: %w", htmlErr)
	}

	flat := errtree.Flatten(tree)
	paths := make([]string, 0, len(flat))
	for path := range flat {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	policy := messagePolicy()
	entries := make([]htmlEntry, 0, len(paths))
	for _, path := range paths {
		entries = append(entries, htmlEntry{
			Path:    path,
			Message: strings.TrimSpace(policy.Sanitize(flat[path])),
		})
	}

	out, err := htmlTpl.Execute(pongo2.Context{"entries": entries})
	if err != nil {
		return "", fmt.Errorf("report: execute template: %w", err)
	}
	return out, nil
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func messagePolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}
