package nudbconfig

import (
	"errors"
	"fmt"
)

// Sentinel errors for matching with errors.Is. The concrete error types
// below carry the failing key or path segment.
var (
	// ErrKeyNotFound indicates that a requested key or path segment does
	// not exist in the configuration tree.
	ErrKeyNotFound = errors.New("key not found")
	// ErrInvalidPath indicates that dotted-path resolution reached a scalar
	// value before consuming all path segments.
	ErrInvalidPath = errors.New("invalid path")
	// ErrReadOnly is returned by any write-style operation on a view.
	// Settings are immutable after load.
	ErrReadOnly = errors.New("settings are read-only")
)

// KeyNotFoundError reports an absent key. When the lookup was part of a
// dotted-path resolution, Path holds the full path and Key the segment that
// failed.
type KeyNotFoundError struct {
	Key  string
	Path string
}

func (e *KeyNotFoundError) Error() string {
	if e.Path != "" && e.Path != e.Key {
		return fmt.Sprintf("key %q not found (resolving %q)", e.Key, e.Path)
	}
	return fmt.Sprintf("key %q not found", e.Key)
}

// Is reports whether target is [ErrKeyNotFound].
func (e *KeyNotFoundError) Is(target error) bool {
	return target == ErrKeyNotFound
}

// PathError reports a dotted path that tried to descend through a scalar
// value. Segment names the segment that resolved to a leaf.
type PathError struct {
	Path    string
	Segment string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("cannot descend into %q: segment %q is a scalar value", e.Path, e.Segment)
}

// Is reports whether target is [ErrInvalidPath].
func (e *PathError) Is(target error) bool {
	return target == ErrInvalidPath
}
