package nudbconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNodeFromYAML_Kinds verifies scalars and sequences become leaves while
// mappings become internal nodes.
func TestNodeFromYAML_Kinds(t *testing.T) {
	tree, err := parseYAML("test", []byte(`
name: value
count: 3
list: [1, 2]
section:
  inner: true
`))
	require.NoError(t, err)
	require.Equal(t, mappingNode, tree.kind)

	name, ok := tree.child("name")
	require.True(t, ok)
	assert.Equal(t, leafNode, name.kind)
	assert.Equal(t, "value", name.value)

	list, ok := tree.child("list")
	require.True(t, ok)
	assert.Equal(t, leafNode, list.kind)
	assert.Equal(t, []any{1, 2}, list.value)

	section, ok := tree.child("section")
	require.True(t, ok)
	assert.Equal(t, mappingNode, section.kind)
}

// TestNodeClone_Independent verifies mutating a clone leaves the original
// untouched.
func TestNodeClone_Independent(t *testing.T) {
	tree, err := parseYAML("test", []byte("a: 1\nb:\n  c: 2\n"))
	require.NoError(t, err)

	dup := tree.clone()
	dup.set("a", newLeaf(99))
	sub, ok := dup.child("b")
	require.True(t, ok)
	sub.delete("c")

	a, ok := tree.child("a")
	require.True(t, ok)
	assert.Equal(t, 1, a.value)
	orig, ok := tree.child("b")
	require.True(t, ok)
	assert.True(t, orig.has("c"))
}

// TestNodeEqual_IgnoresKeyOrder verifies equality is value-based, not
// order-based.
func TestNodeEqual_IgnoresKeyOrder(t *testing.T) {
	a, err := parseYAML("a", []byte("x: 1\ny: 2\n"))
	require.NoError(t, err)
	b, err := parseYAML("b", []byte("y: 2\nx: 1\n"))
	require.NoError(t, err)

	assert.True(t, a.equal(b))
}

// TestLeafValueEqual_Sequences verifies element-wise comparison of sequence
// leaves.
func TestLeafValueEqual_Sequences(t *testing.T) {
	assert.True(t, leafValueEqual([]any{1, "a"}, []any{1, "a"}))
	assert.False(t, leafValueEqual([]any{1}, []any{1, 2}))
	assert.False(t, leafValueEqual([]any{1}, 1))
}

// TestNodeDelete_KeepsOrder verifies deletion removes the key from the
// ordering slice as well.
func TestNodeDelete_KeepsOrder(t *testing.T) {
	tree, err := parseYAML("test", []byte("a: 1\nb: 2\nc: 3\n"))
	require.NoError(t, err)

	tree.delete("b")
	v := &View{n: tree}
	assert.Equal(t, []string{"a", "c"}, v.Keys())
	assert.False(t, tree.has("b"))
}
