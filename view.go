// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Statistics Norway

package nudbconfig

import (
	"fmt"
	"iter"
	"strings"
)

// View is a read-only window into one node of the configuration tree.
// A view over a mapping gives access to its children; a view over a leaf
// carries a scalar or sequence value, returned by [View.Value].
//
// Key lookup and method names live in separate namespaces, so a
// configuration key that happens to be called "get" (or any other method
// name) is always reachable through Get("get") or a dotted path; there is
// no shadowing to resolve.
type View struct {
	n *node
}

// Get returns a sub-view for the named child key.
// Absent keys, including any key on a leaf view, yield a [KeyNotFoundError].
func (v *View) Get(key string) (*View, error) {
	c, ok := v.n.child(key)
	if !ok {
		return nil, &KeyNotFoundError{Key: key}
	}
	return &View{n: c}, nil
}

// GetDefault returns the value for key if present, and def otherwise.
// For a leaf child the scalar (or sequence) value is returned; for a
// mapping child the sub-*View is returned. It is the only accessor that
// suppresses the key-not-found condition.
func (v *View) GetDefault(key string, def any) any {
	c, ok := v.n.child(key)
	if !ok {
		return def
	}
	if c.kind == leafNode {
		return c.value
	}
	return &View{n: c}
}

// Lookup resolves a dotted path such as "variables.fnr.dtype" by walking
// the tree one segment at a time; it is equivalent to chained [View.Get]
// calls. The empty path resolves to the view itself.
//
// An absent segment yields a [KeyNotFoundError] naming that segment, and a
// path that tries to descend through a scalar yields a [PathError].
func (v *View) Lookup(path string) (*View, error) {
	if path == "" {
		return v, nil
	}
	cur := v.n
	for _, seg := range strings.Split(path, ".") {
		if cur.kind != mappingNode {
			return nil, &PathError{Path: path, Segment: seg}
		}
		next, ok := cur.children[seg]
		if !ok {
			return nil, &KeyNotFoundError{Key: seg, Path: path}
		}
		cur = next
	}
	return &View{n: cur}, nil
}

// Value returns the raw value of the view: the scalar or sequence for a
// leaf, or a plain map[string]any rendering for a mapping.
func (v *View) Value() any {
	return v.n.toValue()
}

// IsLeaf reports whether the view wraps a scalar or sequence value rather
// than a mapping.
func (v *View) IsLeaf() bool {
	return v.n.kind == leafNode
}

// Has reports whether the view has a child with the given key.
func (v *View) Has(key string) bool {
	_, ok := v.n.child(key)
	return ok
}

// Len returns the number of child keys; zero for a leaf view.
func (v *View) Len() int {
	return len(v.n.keys)
}

// Keys returns the child keys in source-declaration order.
func (v *View) Keys() []string {
	keys := make([]string, len(v.n.keys))
	copy(keys, v.n.keys)
	return keys
}

// All returns an iterator over child keys and their sub-views, in
// source-declaration order. The sequence is lazy and can be ranged over
// any number of times. A leaf view yields nothing.
func (v *View) All() iter.Seq2[string, *View] {
	return func(yield func(string, *View) bool) {
		if v.n.kind != mappingNode {
			return
		}
		for _, k := range v.n.keys {
			if !yield(k, &View{n: v.n.children[k]}) {
				return
			}
		}
	}
}

// Equal reports structural equality: two views are equal when their
// underlying subtrees hold the same entries with equal values.
func (v *View) Equal(o *View) bool {
	if v == nil || o == nil {
		return v == o
	}
	return v.n.equal(o.n)
}

// Set always fails with [ErrReadOnly]: views never mutate the tree.
func (v *View) Set(key string, value any) error {
	return ErrReadOnly
}

// Delete always fails with [ErrReadOnly]: views never mutate the tree.
func (v *View) Delete(key string) error {
	return ErrReadOnly
}

// String resolves path and returns its value as a string.
func (v *View) String(path string) (string, error) {
	val, err := v.leaf(path)
	if err != nil {
		return "", err
	}
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%q: expected string, got %T", path, val)
	}
	return s, nil
}

// Int resolves path and returns its value as an int.
func (v *View) Int(path string) (int, error) {
	val, err := v.leaf(path)
	if err != nil {
		return 0, err
	}
	i, ok := val.(int)
	if !ok {
		return 0, fmt.Errorf("%q: expected integer, got %T", path, val)
	}
	return i, nil
}

// Float64 resolves path and returns its value as a float64. Integer values
// are converted.
func (v *View) Float64(path string) (float64, error) {
	val, err := v.leaf(path)
	if err != nil {
		return 0, err
	}
	switch x := val.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("%q: expected number, got %T", path, val)
	}
}

// Bool resolves path and returns its value as a bool.
func (v *View) Bool(path string) (bool, error) {
	val, err := v.leaf(path)
	if err != nil {
		return false, err
	}
	b, ok := val.(bool)
	if !ok {
		return false, fmt.Errorf("%q: expected boolean, got %T", path, val)
	}
	return b, nil
}

// Strings resolves path and returns its value as a []string.
func (v *View) Strings(path string) ([]string, error) {
	val, err := v.leaf(path)
	if err != nil {
		return nil, err
	}
	seq, ok := val.([]any)
	if !ok {
		return nil, fmt.Errorf("%q: expected sequence, got %T", path, val)
	}
	out := make([]string, len(seq))
	for i, e := range seq {
		s, ok := e.(string)
		if !ok {
			return nil, fmt.Errorf("%q: element %d: expected string, got %T", path, i, e)
		}
		out[i] = s
	}
	return out, nil
}

// Ints resolves path and returns its value as an []int.
func (v *View) Ints(path string) ([]int, error) {
	val, err := v.leaf(path)
	if err != nil {
		return nil, err
	}
	seq, ok := val.([]any)
	if !ok {
		return nil, fmt.Errorf("%q: expected sequence, got %T", path, val)
	}
	out := make([]int, len(seq))
	for i, e := range seq {
		n, ok := e.(int)
		if !ok {
			return nil, fmt.Errorf("%q: element %d: expected integer, got %T", path, i, e)
		}
		out[i] = n
	}
	return out, nil
}

func (v *View) leaf(path string) (any, error) {
	sub, err := v.Lookup(path)
	if err != nil {
		return nil, err
	}
	if sub.n.kind != leafNode {
		return nil, fmt.Errorf("%q: expected a value, got a mapping", path)
	}
	return sub.n.value, nil
}
