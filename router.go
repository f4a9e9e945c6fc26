// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/roadrunner/blob/master/LICENSE.txt.

package roadrunner

import (
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"sync/atomic"
)

// Router resolves a bucket and a path to a registered value. Each bucket owns an independent radix tree created on
// the first registration for that bucket.
//
// Route registration is safe for concurrent use. By default, lookups are lock-free and must not overlap with
// registration: register every route first, then serve. Use WithLockedLookup to lift this restriction.
type Router[V any] struct {
	buckets atomic.Pointer[map[string]*tree[V]]
	cfg     *config
	mu      sync.RWMutex
}

// RouterInfo hold information on the configured global options.
type RouterInfo struct {
	MaxRouteParams        int
	MaxRouteParamKeyBytes int
	IgnoreTrailingSlash   bool
	SegmentWildcards      bool
	ChangingParamNames    bool
	LockedLookup          bool
}

// New returns a ready to use instance of Router.
func New[V any](opts ...Option) (*Router[V], error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt.applyGlob(cfg); err != nil {
			return nil, err
		}
	}

	r := &Router[V]{cfg: cfg}
	buckets := make(map[string]*tree[V])
	r.buckets.Store(&buckets)
	return r, nil
}

// AddRoute registers value for the given bucket and path. It returns an error that Is ErrInvalidInput if bucket or
// path is empty or if path does not start with '/' or '*', an error that Is ErrInvalidRoute if the path is malformed,
// and a RouteConflictError if the route is already registered or conflicts with another route of the bucket. A
// rejected route never modifies the router. This function is safe for concurrent use.
func (r *Router[V]) AddRoute(bucket, path string, value V, opts ...RouteOption) error {
	rte, rc, err := r.prepareRoute(bucket, path, opts)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addRoute(bucket, rte, value, rc)
}

// prepareRoute validates the input and parses the route. It never touches the routing tree.
func (r *Router[V]) prepareRoute(bucket, path string, opts []RouteOption) (parsedRoute, *routeConfig, error) {
	if err := validateInput(bucket, path); err != nil {
		return parsedRoute{}, nil, err
	}
	if path[0] != slashDelim && path[0] != starDelim {
		return parsedRoute{}, nil, fmt.Errorf("%w: %w: path must start with '/' or '*', got '%s'", ErrInvalidInput, ErrInvalidPath, path)
	}

	rc := new(routeConfig)
	for _, opt := range opts {
		if err := opt.applyRoute(rc); err != nil {
			return parsedRoute{}, nil, err
		}
	}

	rte, err := parseRoute(path, r.cfg)
	if err != nil {
		r.cfg.logger.Debug("route rejected", slog.String("bucket", bucket), slog.String("path", path), slog.Any("error", err))
		return parsedRoute{}, nil, err
	}
	if rc.catchEmpty && !rte.catchAll {
		return parsedRoute{}, nil, fmt.Errorf("%w: empty catch-all allowed on route '%s' without catch-all", ErrInvalidConfig, path)
	}

	return rte, rc, nil
}

// addRoute inserts rte in the bucket tree. The write lock must be held.
func (r *Router[V]) addRoute(bucket string, rte parsedRoute, value V, rc *routeConfig) error {
	t := r.getTree(bucket)
	isNew := t == nil
	if isNew {
		t = newTree[V](bucket)
	}
	if err := t.insert(rte, value, rc.catchEmpty); err != nil {
		r.cfg.logger.Debug("route rejected", slog.String("bucket", bucket), slog.String("path", rte.pattern), slog.Any("error", err))
		return err
	}
	if isNew {
		r.addBucket(t)
	}

	r.cfg.logger.Debug("route registered", slog.String("bucket", bucket), slog.String("path", rte.pattern), slog.Int("params", rte.params))
	return nil
}

// MustAddRoute registers value for the given bucket and path. This function is a convenience wrapper for the
// Router.AddRoute function and panics on error.
func (r *Router[V]) MustAddRoute(bucket, path string, value V, opts ...RouteOption) {
	if err := r.AddRoute(bucket, path, value, opts...); err != nil {
		panic(err)
	}
}

// FindRoute returns the Result of the route matching bucket and path, or nil if no route match. A non-nil error is
// only returned for an empty bucket or path, and Is ErrInvalidInput. The returned Result is owned by the caller.
func (r *Router[V]) FindRoute(bucket, path string) (*Result[V], error) {
	if r.cfg.lockedLookup {
		r.mu.RLock()
		defer r.mu.RUnlock()
	}
	return r.findRoute(bucket, path)
}

// Match reports whether a route match bucket and path. Unlike FindRoute, it does not record captures and returns
// false for invalid input.
func (r *Router[V]) Match(bucket, path string) bool {
	if r.cfg.lockedLookup {
		r.mu.RLock()
		defer r.mu.RUnlock()
	}
	return r.match(bucket, path)
}

func (r *Router[V]) findRoute(bucket, path string) (*Result[V], error) {
	if err := validateInput(bucket, path); err != nil {
		return nil, err
	}

	t := r.getTree(bucket)
	if t == nil {
		return nil, nil
	}

	res := new(Result[V])
	if t.maxParams > 0 {
		res.Captures = make([]string, 0, t.maxParams)
	}
	n := r.lookup(t, path, res)
	if n == nil {
		return nil, nil
	}

	res.Value = n.value
	res.Pattern = n.pattern
	if n.paramNames != nil {
		res.bindParams(n.paramNames)
	}
	if len(res.Captures) == 0 {
		res.Captures = nil
	}
	return res, nil
}

func (r *Router[V]) match(bucket, path string) bool {
	if bucket == "" || path == "" {
		return false
	}

	t := r.getTree(bucket)
	if t == nil {
		return false
	}

	return r.lookup(t, path, nil) != nil
}

// Stats returns information on the configured global option.
func (r *Router[V]) Stats() RouterInfo {
	return RouterInfo{
		MaxRouteParams:        r.cfg.maxParams,
		MaxRouteParamKeyBytes: r.cfg.maxParamKeyBytes,
		IgnoreTrailingSlash:   r.cfg.ignoreTrailingSlash,
		SegmentWildcards:      r.cfg.segmentWildcards,
		ChangingParamNames:    r.cfg.changingParamNames,
		LockedLookup:          r.cfg.lockedLookup,
	}
}

// lookup resolves path in t. When trailing slashes are ignored, the trimmed path is tried first, then the
// original path so that an empty catch-all still match its bare prefix (e.g. /static/ for /static/*filepath).
func (r *Router[V]) lookup(t *tree[V], path string, res *Result[V]) *node[V] {
	if !r.cfg.ignoreTrailingSlash {
		return t.lookup(path, res)
	}

	trimmed := trimTrailingSlash(path)
	if n := t.lookup(trimmed, res); n != nil || len(trimmed) == len(path) {
		return n
	}

	if res != nil {
		res.Captures = res.Captures[:0]
		res.Params = nil
	}
	return t.lookup(path, res)
}

// getTree load the bucket tree atomically.
func (r *Router[V]) getTree(bucket string) *tree[V] {
	buckets := r.buckets.Load()
	return (*buckets)[bucket]
}

// addBucket publishes t in a copy of the bucket table, so a concurrent getTree never observe a map under
// mutation. The write lock must be held.
func (r *Router[V]) addBucket(t *tree[V]) {
	buckets := r.buckets.Load()
	newBuckets := maps.Clone(*buckets)
	newBuckets[t.bucket] = t
	r.buckets.Store(&newBuckets)
	r.cfg.logger.Debug("bucket created", slog.String("bucket", t.bucket))
}

func validateInput(bucket, path string) error {
	if bucket == "" {
		return fmt.Errorf("%w: %w: bucket is required", ErrInvalidInput, ErrInvalidBucket)
	}
	if path == "" {
		return fmt.Errorf("%w: %w: path is required", ErrInvalidInput, ErrInvalidPath)
	}
	return nil
}
