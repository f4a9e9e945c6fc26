// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/roadrunner/blob/master/LICENSE.txt.

package roadrunner

import "strings"

// tree is the radix tree of a single bucket. Mutation must be serialized by the caller and must not overlap
// with lookups. Once built, a tree is safe for concurrent lookups.
type tree[V any] struct {
	root      *node[V]
	bucket    string
	maxParams int
}

func newTree[V any](bucket string) *tree[V] {
	return &tree[V]{
		root:   newNode[V]("", root),
		bucket: bucket,
	}
}

// insert registers rte in the tree. On error, the tree is left unchanged.
// insert is not safe for concurrent use.
func (t *tree[V]) insert(rte parsedRoute, value V, catchEmpty bool) error {
	if t.root.isEmpty() {
		t.registered(t.root.insertChild(rte.path, rte.pattern, value, catchEmpty), rte)
		return nil
	}

	path := rte.path
	n := t.root
	for {
		i := longestCommonPrefix(path, n.key)

		if i < len(n.key) {
			// After the split, n has a static child, a wildcard cannot be added next to it.
			// Checked before splitting so a rejected route leaves the tree untouched.
			if i < len(path) && isWildcardMarker(path[i]) {
				return newConflictErr(ErrRouteConflict, t.bucket, rte.pattern, path[i:segmentEnd(path, i)], n.patterns())
			}
			// e.g. matched until "s" for "st" node when inserting "tes" or "tess" key.
			// te
			// └── st
			//
			// After patching
			// te
			// └── s
			//     └── t
			n.split(i)
		}

		if i == len(path) {
			if n.leaf {
				return newConflictErr(ErrRouteExist, t.bucket, rte.pattern, "", []string{n.pattern})
			}
			n.setLeaf(rte.pattern, value, catchEmpty)
			t.registered(n, rte)
			return nil
		}

		path = path[i:]
		c := path[0]

		if n.wild != nil {
			// Static and wildcard children never share the same parent.
			if !isWildcardMarker(c) || !n.wild.matchWildcard(path) {
				return newConflictErr(ErrRouteConflict, t.bucket, rte.pattern, path[:segmentEnd(path, 0)], n.wild.patterns())
			}
			n = n.wild
			continue
		}

		if child := n.getEdge(c); child != nil {
			n = child
			continue
		}

		if isWildcardMarker(c) {
			if len(n.children) > 0 {
				return newConflictErr(ErrRouteConflict, t.bucket, rte.pattern, path[:segmentEnd(path, 0)], n.childPatterns())
			}
			t.registered(n.insertChild(path, rte.pattern, value, catchEmpty), rte)
			return nil
		}

		child := newNode[V](path, static)
		n.addChild(child)
		t.registered(child.insertChild(path, rte.pattern, value, catchEmpty), rte)
		return nil
	}
}

// insertChild builds the chain of node for path below n and returns the new leaf. The key of n is replaced, unless
// path start with a wildcard, in which case the wildcard is attached to n.
func (n *node[V]) insertChild(path, pattern string, value V, catchEmpty bool) *node[V] {
	for {
		i := strings.IndexAny(path, ":*")
		if i < 0 {
			n.setKey(path)
			break
		}

		// Split path at the beginning of the wildcard
		if i > 0 {
			n.setKey(path[:i])
			path = path[i:]
		}

		end := segmentEnd(path, 0)
		nType := param
		if path[0] == starDelim {
			nType = catchAll
		}

		wild := newNode[V](path[:end], nType)
		n.setWild(wild)
		n = wild

		path = path[end:]
		if path == "" {
			break
		}

		// The key is truncated on the next iteration if another wildcard follow.
		child := newNode[V](path, static)
		n.addChild(child)
		n = child
	}

	n.setLeaf(pattern, value, catchEmpty)
	return n
}

// matchWildcard reports whether path, starting with a wildcard, declares the same wildcard as n at the same
// position.
func (n *node[V]) matchWildcard(path string) bool {
	return strings.HasPrefix(path, n.key) && (len(path) == len(n.key) || path[len(n.key)] == slashDelim)
}

// childPatterns returns the registered patterns reachable from the children of n.
func (n *node[V]) childPatterns() []string {
	var routes []string
	for _, child := range n.children {
		routes = append(routes, child.patterns()...)
	}
	return routes
}

// lookup returns the leaf matching path or nil. When res is not nil, captured segments are recorded into it.
// lookup never mutate the tree.
func (t *tree[V]) lookup(path string, res *Result[V]) *node[V] {
	n := t.root
	for {
		if len(path) > len(n.key) && path[:len(n.key)] == n.key {
			path = path[len(n.key):]

			if n.wild != nil {
				n = n.wild
				if n.nType == catchAll {
					if res != nil {
						res.capture(n.name, path)
					}
					return n
				}

				end := strings.IndexByte(path, slashDelim)
				if end < 0 {
					end = len(path)
				}
				// A param cannot capture an empty segment.
				if end == 0 {
					return nil
				}
				if res != nil {
					res.capture(n.name, path[:end])
				}

				// We need to go deeper!
				if end < len(path) {
					if len(n.children) == 0 {
						return nil
					}
					path = path[end:]
					n = n.children[0]
					continue
				}

				if !n.leaf {
					return nil
				}
				return n
			}

			n = n.getEdge(path[0])
			if n == nil {
				return nil
			}
			continue
		}

		if path == n.key {
			if n.leaf {
				return n
			}
			if n.wild != nil && n.wild.catchEmpty {
				if res != nil {
					res.capture(n.wild.name, "")
				}
				return n.wild
			}
		}

		return nil
	}
}

// registered records the route metadata once leaf holds the value of rte.
func (t *tree[V]) registered(leaf *node[V], rte parsedRoute) {
	leaf.paramNames = rte.paramNames
	t.updateMaxParams(rte.params)
}

// updateMaxParams perform an update only if max is greater than the current
func (t *tree[V]) updateMaxParams(max int) {
	if max > t.maxParams {
		t.maxParams = max
	}
}

func longestCommonPrefix(k1, k2 string) int {
	minLength := min(len(k1), len(k2))
	for i := 0; i < minLength; i++ {
		if k1[i] != k2[i] {
			return i
		}
	}
	return minLength
}
