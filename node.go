// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/roadrunner/blob/master/LICENSE.txt.

package roadrunner

import (
	"slices"
	"strings"
)

type nodeType uint8

const (
	static nodeType = iota
	root
	param
	catchAll
)

// anonymousParam is the key of a parameter node converted from a "*" segment when segment wildcards
// are enabled. It cannot be produced by a valid route since a segment holds at most one marker.
const anonymousParam = ":*"

type node[V any] struct {
	// key represent a segment of a route which share a common prefix with it parent.
	// For param and catch-all node, key is the marker followed by the parameter name.
	key string

	// First char of each static child key sorted in ascending order, aligned with children.
	childKeys []byte

	// Static child nodes representing outgoing edges from this node sorted in ascending order.
	// Never populated when wild is set.
	children []*node[V]

	// The param or catch-all child node, if any. It is always the only child of this node.
	wild *node[V]

	// Parameter name of a param or catch-all node. Empty for anonymous wildcard.
	name string

	// The registered route pattern when the node is a leaf.
	pattern string

	// Wildcard names of pattern in path order, only set when parameter names may change between routes.
	paramNames []string

	// The value registered for pattern.
	value V

	leaf bool

	// Whether a catch-all leaf accepts an empty remainder.
	catchEmpty bool

	nType nodeType
}

func newNode[V any](key string, nType nodeType) *node[V] {
	n := &node[V]{nType: nType}
	n.setKey(key)
	return n
}

func (n *node[V]) isLeaf() bool {
	return n.leaf
}

func (n *node[V]) wildChild() bool {
	return n.wild != nil
}

func (n *node[V]) isWildcard() bool {
	return n.nType == param || n.nType == catchAll
}

func (n *node[V]) isEmpty() bool {
	return n.key == "" && len(n.children) == 0 && n.wild == nil && !n.leaf
}

// setKey replaces the key of n. For wildcard node, the parameter name is derived from the key.
func (n *node[V]) setKey(key string) {
	n.key = key
	if !n.isWildcard() {
		return
	}
	if key == anonymousParam || len(key) < 2 {
		n.name = ""
		return
	}
	n.name = key[1:]
}

// setLeaf attaches a value to n.
func (n *node[V]) setLeaf(pattern string, value V, catchEmpty bool) {
	n.pattern = pattern
	n.value = value
	n.leaf = true
	n.catchEmpty = catchEmpty && n.nType == catchAll
}

// setWild attaches the single wildcard child of n.
func (n *node[V]) setWild(child *node[V]) {
	assertNotNil(child)
	if !child.isWildcard() {
		panic("internal error: wildcard slot only accept param or catch-all node")
	}
	if len(n.children) > 0 {
		panic("internal error: a node cannot have both static and wildcard children")
	}
	if n.nType == catchAll {
		panic("internal error: a catch-all node cannot have children")
	}
	if n.wild != nil {
		panic("internal error: wildcard slot already assigned")
	}
	n.wild = child
}

// addChild inserts a static child, keeping children and childKeys sorted.
func (n *node[V]) addChild(child *node[V]) {
	assertNotNil(child)
	if child.key == "" || child.isWildcard() {
		panic("internal error: static child must have a non-empty key")
	}
	if n.wild != nil {
		panic("internal error: a node cannot have both static and wildcard children")
	}
	if n.nType == catchAll {
		panic("internal error: a catch-all node cannot have children")
	}

	id := binarySearch(n.childKeys, child.key[0])
	if id >= 0 {
		panic("internal error: an edge starting with the same char already exist")
	}
	pos := -(id + 1)
	n.childKeys = slices.Insert(n.childKeys, pos, child.key[0])
	n.children = slices.Insert(n.children, pos, child)
}

// split truncates the key of n at i. A new static child absorbs the remaining key, the children, the
// wildcard child and the value of n.
func (n *node[V]) split(i int) {
	if n.isWildcard() {
		panic("internal error: cannot split a wildcard node")
	}
	if i <= 0 || i >= len(n.key) {
		panic("internal error: split index out of range")
	}

	child := &node[V]{
		key:       n.key[i:],
		childKeys: n.childKeys,
		children:  n.children,
		wild:      n.wild,
		pattern:   n.pattern,
		value:     n.value,
		leaf:      n.leaf,
		nType:     static,
	}

	var zero V
	n.key = n.key[:i]
	n.childKeys = []byte{child.key[0]}
	n.children = []*node[V]{child}
	n.wild = nil
	n.pattern = ""
	n.value = zero
	n.leaf = false
}

func (n *node[V]) getEdge(s byte) *node[V] {
	if len(n.children) <= 4 {
		id := iterativeSearch(n.childKeys, s)
		if id < 0 {
			return nil
		}
		return n.children[id]
	}
	id := binarySearch(n.childKeys, s)
	if id < 0 {
		return nil
	}
	return n.children[id]
}

// iterativeSearch return the index of s in keys or -1, using a simple loop.
// Although binary search is a more efficient search algorithm,
// the small size of the child keys array (<= 4) means that the
// constant factor will dominate (cf Adaptive Radix Tree algorithm).
func iterativeSearch(keys []byte, s byte) int {
	for i := 0; i < len(keys); i++ {
		if keys[i] == s {
			return i
		}
	}
	return -1
}

// binarySearch return the index of s in keys or -(insertion point + 1).
func binarySearch(keys []byte, s byte) int {
	low, high := 0, len(keys)-1
	for low <= high {
		mid := int(uint(low+high) >> 1) // avoid overflow
		cmp := compare(keys[mid], s)
		if cmp < 0 {
			low = mid + 1
		} else if cmp > 0 {
			high = mid - 1
		} else {
			return mid
		}
	}
	return -(low + 1)
}

func compare(a, b byte) int {
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return +1
}

// patterns returns every registered pattern reachable from n, sorted.
func (n *node[V]) patterns() []string {
	var routes []string
	stack := []*node[V]{n}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current.leaf {
			routes = append(routes, current.pattern)
		}
		if current.wild != nil {
			stack = append(stack, current.wild)
		}
		stack = append(stack, current.children...)
	}
	slices.Sort(routes)
	return routes
}

// assertNotNil is a safeguard against attaching a nil node.
func assertNotNil[V any](n *node[V]) {
	if n == nil {
		panic("internal error: a node cannot be nil")
	}
}

func (n *node[V]) String() string {
	sb := strings.Builder{}
	n.string(&sb, 0)
	return sb.String()
}

func (n *node[V]) string(sb *strings.Builder, space int) {
	sb.WriteString(strings.Repeat(" ", space))
	switch n.nType {
	case root:
		sb.WriteString("root: ")
	case param:
		sb.WriteString("param: ")
	case catchAll:
		sb.WriteString("catchall: ")
	default:
		sb.WriteString("path: ")
	}
	sb.WriteString(n.key)
	if n.leaf {
		sb.WriteString(" (leaf")
		if n.catchEmpty {
			sb.WriteString(" & empty")
		}
		sb.WriteString(")")
	}
	sb.WriteByte('\n')

	if n.wild != nil {
		n.wild.string(sb, space+2)
	}
	for _, child := range n.children {
		child.string(sb, space+2)
	}
}
