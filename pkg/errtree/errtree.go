// Package errtree holds validation error messages in a tree shaped like the
// values tree they describe. Leaves are non-empty strings; absence of a key
// means the field is valid. Nil leaves never survive normalisation, so
// downstream checks can treat "present" and "invalid" as the same thing.
package errtree

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formstate/pkg/fieldpath"
)

// Tree is a nested mapping from field name to either an error message or a
// sub-tree for nested fields.
type Tree = map[string]any

// Normalize returns a copy of the tree with nil leaves, blank messages, and
// emptied branches removed. Message leaves are whitespace-trimmed. The input
// is not mutated. Normalize(Normalize(t)) == Normalize(t).
func Normalize(tree Tree) Tree {
	if len(tree) == 0 {
		return nil
	}

	out := make(Tree, len(tree))
	for key, value := range tree {
		switch node := value.(type) {
		case nil:
			continue
		case string:
			trimmed := strings.TrimSpace(node)
			if trimmed == "" {
				continue
			}
			out[key] = trimmed
		case Tree:
			child := Normalize(node)
			if len(child) == 0 {
				continue
			}
			out[key] = child
		default:
			continue
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Merge deep-merges a form-level tree and a field-level tree. When both
// carry a value at the same path the field-level entry wins: field
// validators run independently per field and must not be shadowed by the
// whole-form result. Neither input is mutated.
func Merge(form, field Tree) Tree {
	form = Normalize(form)
	field = Normalize(field)
	if len(form) == 0 {
		return field
	}
	if len(field) == 0 {
		return form
	}

	out := make(Tree, len(form)+len(field))
	for key, value := range form {
		out[key] = value
	}
	for key, value := range field {
		existing, ok := out[key]
		if !ok {
			out[key] = value
			continue
		}
		existingTree, existingIsTree := existing.(Tree)
		valueTree, valueIsTree := value.(Tree)
		if existingIsTree && valueIsTree {
			out[key] = Merge(existingTree, valueTree)
			continue
		}
		// Leaf vs leaf, or shape conflict: field-level replaces.
		out[key] = value
	}
	return out
}

// Prune drops every entry whose key does not exist in the values tree at the
// same depth, enforcing the structural-subset property. A string leaf in the
// error tree is kept as long as the values tree has any node under the same
// key.
func Prune(tree Tree, values map[string]any) Tree {
	tree = Normalize(tree)
	if len(tree) == 0 || len(values) == 0 {
		return nil
	}

	out := make(Tree, len(tree))
	for key, value := range tree {
		target, ok := values[key]
		if !ok {
			continue
		}
		child, isTree := value.(Tree)
		if !isTree {
			out[key] = value
			continue
		}
		switch targetNode := target.(type) {
		case map[string]any:
			pruned := Prune(child, targetNode)
			if len(pruned) > 0 {
				out[key] = pruned
			}
		case []any:
			pruned := pruneSlice(child, targetNode)
			if len(pruned) > 0 {
				out[key] = pruned
			}
		default:
			// Values leaf with a nested error tree: shape mismatch, drop.
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func pruneSlice(tree Tree, values []any) Tree {
	out := make(Tree, len(tree))
	for key, value := range tree {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(values) {
			continue
		}
		child, isTree := value.(Tree)
		if !isTree {
			out[key] = value
			continue
		}
		element, isMap := values[idx].(map[string]any)
		if !isMap {
			continue
		}
		pruned := Prune(child, element)
		if len(pruned) > 0 {
			out[key] = pruned
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Set writes a message at a dotted path, creating intermediate branches.
// Blank messages remove the entry instead.
func Set(tree Tree, path, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		Delete(tree, path)
		return
	}
	fieldpath.Set(tree, path, message)
}

// Delete removes the entry at a dotted path, pruning emptied branches.
func Delete(tree Tree, path string) {
	fieldpath.Delete(tree, path)
}

// Get returns the message at a dotted path, or "" when the path is absent or
// resolves to a branch.
func Get(tree Tree, path string) string {
	value, ok := fieldpath.Get(tree, path)
	if !ok {
		return ""
	}
	message, ok := value.(string)
	if !ok {
		return ""
	}
	return message
}

// IsEmpty reports whether the tree carries no messages after normalisation.
func IsEmpty(tree Tree) bool {
	return len(Normalize(tree)) == 0
}

// Clone returns a deep copy of the tree.
func Clone(tree Tree) Tree {
	if tree == nil {
		return nil
	}
	out := make(Tree, len(tree))
	for key, value := range tree {
		if child, ok := value.(Tree); ok {
			out[key] = Clone(child)
			continue
		}
		out[key] = value
	}
	return out
}

// Flatten returns a dotted-path view of every message leaf.
func Flatten(tree Tree) map[string]string {
	out := make(map[string]string)
	flattenInto(tree, "", out)
	if len(out) == 0 {
		return nil
	}
	return out
}

func flattenInto(tree Tree, prefix string, dest map[string]string) {
	for key, value := range tree {
		path := fieldpath.Join(prefix, key)
		switch node := value.(type) {
		case string:
			if trimmed := strings.TrimSpace(node); trimmed != "" {
				dest[path] = trimmed
			}
		case Tree:
			flattenInto(node, path, dest)
		}
	}
}

// Paths returns the sorted dotted paths of every message leaf.
func Paths(tree Tree) []string {
	flat := Flatten(tree)
	if len(flat) == 0 {
		return nil
	}
	out := make([]string, 0, len(flat))
	for path := range flat {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}
