// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/roadrunner/blob/master/LICENSE.txt.

package roadrunner

import (
	"fmt"
	"strings"
)

const (
	slashDelim byte = '/'
	paramDelim byte = ':'
	starDelim  byte = '*'
)

type parsedRoute struct {
	// pattern is the route as provided by the caller.
	pattern string
	// path is the route inserted in the tree, after trailing slash handling and segment wildcards conversion.
	path string
	// params is the number of wildcard in the route.
	params int
	// catchAll is true when the route ends with a catch-all.
	catchAll bool
	// paramNames holds the wildcard names in path order when parameter names may change between routes.
	// Anonymous wildcards have an empty name.
	paramNames []string
}

// parseRoute validates the wildcard placement of pattern. It never touches the tree, so an invalid route
// is always rejected before any structural mutation.
func parseRoute(pattern string, c *config) (parsedRoute, error) {
	path := pattern
	rte := parsedRoute{pattern: pattern}

	var (
		sb   strings.Builder
		last int
	)

	for i := 0; i < len(path); i++ {
		ch := path[i]
		if !isWildcardMarker(ch) {
			continue
		}

		end := segmentEnd(path, i)
		seg := path[i:end]

		// /foo/test:bar, /foo*, *
		if i > 0 && path[i-1] != slashDelim || i == 0 && ch == starDelim && !c.segmentWildcards {
			if ch == starDelim {
				return parsedRoute{}, invalidRouteErr(ErrMalformedCatchAll, "missing '/' before catch-all '%s' in path '%s'", seg, pattern)
			}
			return parsedRoute{}, invalidRouteErr(ErrMalformedSegment, "param '%s' must be by itself in path '%s'", seg, pattern)
		}

		// /foo/:a:b, /foo/:a*b, /foo/*a:b
		if strings.IndexAny(seg[1:], ":*") >= 0 {
			return parsedRoute{}, invalidRouteErr(ErrMalformedSegment, "only one wildcard per path segment is allowed, has '%s' in path '%s'", seg, pattern)
		}

		if len(seg)-1 > c.maxParamKeyBytes {
			return parsedRoute{}, invalidRouteErr(ErrParamKeyTooLarge, "parameter key '%s' exceeds %d bytes in path '%s'", seg[1:], c.maxParamKeyBytes, pattern)
		}

		rte.params++
		if rte.params > c.maxParams {
			return parsedRoute{}, invalidRouteErr(ErrTooManyParams, "more than %d params in path '%s'", c.maxParams, pattern)
		}

		key, name := seg, seg[1:]
		switch {
		case ch == paramDelim:
			// /foo/:, /foo/:/bar
			if len(seg) < 2 {
				return parsedRoute{}, invalidRouteErr(ErrEmptyWildcardName, "wildcards must be named with a non-empty name in path '%s'", pattern)
			}
		case c.segmentWildcards:
			key, name = anonymousParam, ""
		default:
			// /foo/*args/, also rejected when trailing slashes are ignored.
			if end < len(path) {
				return parsedRoute{}, invalidRouteErr(ErrCatchAllNotLast, "catch-all '%s' must be the last segment in path '%s'", seg, pattern)
			}
			rte.catchAll = true
		}

		// Names are bound at the leaf, the tree only keeps the bare marker.
		if c.changingParamNames {
			key = key[:1]
			rte.paramNames = append(rte.paramNames, name)
		}

		if key != seg {
			sb.WriteString(path[last:i])
			sb.WriteString(key)
			last = end
		}

		i = end - 1
	}

	if last > 0 {
		sb.WriteString(path[last:])
		path = sb.String()
	}

	if c.ignoreTrailingSlash {
		path = trimTrailingSlash(path)
	}

	rte.path = path
	return rte, nil
}

func invalidRouteErr(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", ErrInvalidRoute, kind, fmt.Sprintf(format, args...))
}

func isWildcardMarker(c byte) bool {
	return c == paramDelim || c == starDelim
}

// segmentEnd returns the index of the next '/' after i, or len(path).
func segmentEnd(path string, i int) int {
	end := strings.IndexByte(path[i:], slashDelim)
	if end < 0 {
		return len(path)
	}
	return i + end
}

// trimTrailingSlash removes exactly one trailing slash. The root path is left untouched.
func trimTrailingSlash(path string) string {
	if len(path) > 1 && path[len(path)-1] == slashDelim {
		return path[:len(path)-1]
	}
	return path
}
