package nudbconfig

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type nodeKind int

const (
	leafNode nodeKind = iota
	mappingNode
)

// node is one element of the configuration tree: either a leaf carrying a
// scalar (or sequence) value, or a mapping of keys to child nodes. Keys keep
// the order in which they appeared in the source document. Nodes are only
// mutated while a load is in progress; once a *Config is returned the tree
// it owns is never touched again.
type node struct {
	kind     nodeKind
	value    any
	keys     []string
	children map[string]*node
}

func newMapping() *node {
	return &node{kind: mappingNode, children: map[string]*node{}}
}

func newLeaf(value any) *node {
	return &node{kind: leafNode, value: value}
}

// nodeFromYAML converts a parsed yaml.Node into the internal tree form,
// preserving mapping key order. Sequences and scalars both become leaves.
func nodeFromYAML(yn *yaml.Node) (*node, error) {
	switch yn.Kind {
	case yaml.DocumentNode:
		if len(yn.Content) == 0 {
			return newMapping(), nil
		}
		return nodeFromYAML(yn.Content[0])
	case yaml.AliasNode:
		return nodeFromYAML(yn.Alias)
	case yaml.MappingNode:
		n := newMapping()
		for i := 0; i+1 < len(yn.Content); i += 2 {
			key := yn.Content[i].Value
			child, err := nodeFromYAML(yn.Content[i+1])
			if err != nil {
				return nil, err
			}
			n.set(key, child)
		}
		return n, nil
	case yaml.ScalarNode, yaml.SequenceNode:
		var v any
		if err := yn.Decode(&v); err != nil {
			return nil, fmt.Errorf("error decoding yaml value at line %d: %w", yn.Line, err)
		}
		return newLeaf(v), nil
	default:
		return nil, fmt.Errorf("unsupported yaml node kind %d at line %d", yn.Kind, yn.Line)
	}
}

// set inserts or replaces a child, appending new keys at the end so
// declaration order is preserved.
func (n *node) set(key string, child *node) {
	if _, ok := n.children[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.children[key] = child
}

func (n *node) delete(key string) {
	if _, ok := n.children[key]; !ok {
		return
	}
	delete(n.children, key)
	for i, k := range n.keys {
		if k == key {
			n.keys = append(n.keys[:i], n.keys[i+1:]...)
			break
		}
	}
}

func (n *node) has(key string) bool {
	_, ok := n.child(key)
	return ok
}

func (n *node) child(key string) (*node, bool) {
	if n.kind != mappingNode {
		return nil, false
	}
	c, ok := n.children[key]
	return c, ok
}

// clone returns a deep copy. Leaf values are shared: they are either scalars
// or sequences that nothing ever mutates.
func (n *node) clone() *node {
	if n.kind == leafNode {
		return newLeaf(n.value)
	}
	c := newMapping()
	for _, k := range n.keys {
		c.set(k, n.children[k].clone())
	}
	return c
}

// equal reports structural, value-for-value equality of two subtrees.
// Key order is not part of equality: two mappings with the same entries in
// different order describe the same configuration.
func (n *node) equal(o *node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.kind != o.kind {
		return false
	}
	if n.kind == leafNode {
		return leafValueEqual(n.value, o.value)
	}
	if len(n.keys) != len(o.keys) {
		return false
	}
	for k, c := range n.children {
		oc, ok := o.children[k]
		if !ok || !c.equal(oc) {
			return false
		}
	}
	return true
}

func leafValueEqual(a, b any) bool {
	as, aok := a.([]any)
	bs, bok := b.([]any)
	if aok || bok {
		if !aok || !bok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !leafValueEqual(as[i], bs[i]) {
				return false
			}
		}
		return true
	}
	return a == b
}

// toValue renders the subtree as plain Go values: scalars and []any for
// leaves, map[string]any for mappings.
func (n *node) toValue() any {
	if n.kind == leafNode {
		return n.value
	}
	m := make(map[string]any, len(n.keys))
	for k, c := range n.children {
		m[k] = c.toValue()
	}
	return m
}
