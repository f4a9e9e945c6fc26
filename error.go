// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/roadrunner/blob/master/LICENSE.txt.

package roadrunner

import (
	"errors"
	"strings"
)

// Input validation errors, reported before the routing tree is touched.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidBucket = errors.New("invalid bucket")
	ErrInvalidPath   = errors.New("invalid path")
)

// Path syntax errors. Every error of this group also match ErrInvalidRoute.
var (
	ErrInvalidRoute      = errors.New("invalid route")
	ErrMalformedSegment  = errors.New("malformed segment")
	ErrEmptyWildcardName = errors.New("empty wildcard name")
	ErrCatchAllNotLast   = errors.New("catch-all must be the last segment")
	ErrMalformedCatchAll = errors.New("malformed catch-all")
	ErrTooManyParams     = errors.New("too many params")
	ErrParamKeyTooLarge  = errors.New("parameter key too large")
)

// Structural conflicts. A RouteConflictError unwrap to one of them.
var (
	ErrRouteExist    = errors.New("route already registered")
	ErrRouteConflict = errors.New("route conflict")
)

var ErrInvalidConfig = errors.New("invalid config")

// RouteConflictError represents a conflict that occurred during route registration.
// It contains the route being registered, and the existing routes that caused the conflict.
type RouteConflictError struct {
	err error
	// Bucket is the bucket of the route being registered.
	Bucket string
	// Path is the route that was being registered when the conflict was detected.
	Path string
	// Segment is the part of Path that could not be inserted. Empty for duplicate route.
	Segment string
	// Conflicts contains the previously registered routes that conflict with Path.
	Conflicts []string
}

func newConflictErr(kind error, bucket, path, segment string, conflicts []string) *RouteConflictError {
	return &RouteConflictError{
		err:       kind,
		Bucket:    bucket,
		Path:      path,
		Segment:   segment,
		Conflicts: conflicts,
	}
}

func (e *RouteConflictError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.err.Error())
	sb.WriteString(": new route [")
	sb.WriteString(e.Bucket)
	sb.WriteString("] ")
	sb.WriteString(e.Path)
	if e.Segment != "" {
		sb.WriteString(" segment '")
		sb.WriteString(e.Segment)
		sb.WriteByte('\'')
	}
	sb.WriteString(" conflicts with")
	for _, route := range e.Conflicts {
		sb.WriteByte('\n')
		sb.WriteString("\t")
		sb.WriteString(route)
	}
	return sb.String()
}

// Unwrap returns the sentinel value ErrRouteExist or ErrRouteConflict.
func (e *RouteConflictError) Unwrap() error {
	return e.err
}
