// Package fieldpath parses dot/bracket field paths and addresses leaves
// inside nested map trees. Paths accept the common notations emitted by
// schema validators and view layers: "profile.email", "items[0].name",
// "#/properties/email", "/items/0/name".
package fieldpath

import (
	"strconv"
	"strings"
)

// Parse splits a raw path into clean segments. JSON pointer prefixes and
// escapes (~0, ~1) are handled, bracket indices become plain segments, and
// blank segments are dropped. An empty or separator-only path returns nil.
func Parse(path string) []string {
	if path == "" {
		return nil
	}

	clean := strings.TrimSpace(path)
	clean = strings.TrimPrefix(clean, "#/")
	clean = strings.TrimPrefix(clean, "$/")
	clean = strings.TrimPrefix(clean, "$.")
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimPrefix(clean, "#")
		clean = strings.TrimPrefix(clean, "/")
		clean = strings.TrimPrefix(clean, ".")
		clean = strings.TrimPrefix(clean, "$")
	}

	replacer := strings.NewReplacer("[", ".", "]", "", "//", "/")
	clean = replacer.Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Canonical normalises a raw path into the dotted form used as map keys
// throughout the library. Returns "" when the path carries no segments.
func Canonical(path string) string {
	return strings.Join(Parse(path), ".")
}

// Join concatenates a parent path and a child segment, tolerating blanks on
// either side.
func Join(parent, child string) string {
	parent = strings.TrimSpace(parent)
	child = strings.TrimSpace(child)
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}

// Segments splits an already-canonical dotted path. Unlike Parse it performs
// no pointer or bracket handling.
func Segments(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// Get resolves a path inside a nested tree. Numeric segments index into
// slices. The second return reports whether every segment resolved.
func Get(tree map[string]any, path string) (any, bool) {
	segments := Parse(path)
	if len(segments) == 0 || tree == nil {
		return nil, false
	}

	var current any = tree
	for _, segment := range segments {
		switch node := current.(type) {
		case map[string]any:
			value, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = value
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// Exists reports whether a path resolves inside the tree.
func Exists(tree map[string]any, path string) bool {
	_, ok := Get(tree, path)
	return ok
}

// Set writes a value at a path, creating intermediate maps as needed. An
// intermediate leaf of any other type is replaced by a map so the write
// always succeeds. Numeric segments inside existing slices assign in place
// when the index is in range.
func Set(tree map[string]any, path string, value any) {
	segments := Parse(path)
	if len(segments) == 0 || tree == nil {
		return
	}

	current := tree
	for i, segment := range segments[:len(segments)-1] {
		next, ok := current[segment]
		if list, isList := next.([]any); ok && isList {
			idx, err := strconv.Atoi(segments[i+1])
			if err == nil && idx >= 0 && idx < len(list) {
				setInSlice(list, segments[i+1:], value)
				return
			}
		}
		child, isMap := next.(map[string]any)
		if !ok || !isMap {
			child = make(map[string]any)
			current[segment] = child
		}
		current = child
	}
	current[segments[len(segments)-1]] = value
}

func setInSlice(list []any, segments []string, value any) {
	idx, err := strconv.Atoi(segments[0])
	if err != nil || idx < 0 || idx >= len(list) {
		return
	}
	if len(segments) == 1 {
		list[idx] = value
		return
	}
	child, ok := list[idx].(map[string]any)
	if !ok {
		child = make(map[string]any)
		list[idx] = child
	}
	rest := strings.Join(segments[1:], ".")
	Set(child, rest, value)
}

// Delete removes the leaf at path and prunes branches emptied by the
// removal. Missing paths are a no-op.
func Delete(tree map[string]any, path string) {
	segments := Parse(path)
	if len(segments) == 0 || tree == nil {
		return
	}
	deleteSegments(tree, segments)
}

func deleteSegments(tree map[string]any, segments []string) {
	if len(segments) == 1 {
		delete(tree, segments[0])
		return
	}
	child, ok := tree[segments[0]].(map[string]any)
	if !ok {
		return
	}
	deleteSegments(child, segments[1:])
	if len(child) == 0 {
		delete(tree, segments[0])
	}
}

// Leaves returns the canonical dotted path of every leaf in the tree,
// sorted order is not guaranteed. Slice elements are addressed by index.
func Leaves(tree map[string]any) []string {
	var out []string
	collectLeaves(tree, "", &out)
	return out
}

func collectLeaves(node any, prefix string, dest *[]string) {
	switch value := node.(type) {
	case map[string]any:
		if len(value) == 0 && prefix != "" {
			*dest = append(*dest, prefix)
			return
		}
		for key, child := range value {
			collectLeaves(child, Join(prefix, key), dest)
		}
	case []any:
		if len(value) == 0 && prefix != "" {
			*dest = append(*dest, prefix)
			return
		}
		for idx, child := range value {
			collectLeaves(child, Join(prefix, strconv.Itoa(idx)), dest)
		}
	default:
		if prefix != "" {
			*dest = append(*dest, prefix)
		}
	}
}
