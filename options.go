// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/roadrunner/blob/master/LICENSE.txt.

package roadrunner

import (
	"fmt"
	"log/slog"
	"math"
)

// Option configures a Router.
type Option interface {
	applyGlob(*config) error
}

// RouteOption configures a single route at registration time.
type RouteOption interface {
	applyRoute(*routeConfig) error
}

type config struct {
	logger              *slog.Logger
	maxParams           int
	maxParamKeyBytes    int
	ignoreTrailingSlash bool
	segmentWildcards    bool
	changingParamNames  bool
	lockedLookup        bool
}

func defaultConfig() *config {
	return &config{
		logger:           slog.New(slog.DiscardHandler),
		maxParams:        math.MaxUint8,
		maxParamKeyBytes: math.MaxUint8,
	}
}

type routeConfig struct {
	catchEmpty bool
}

type globOptionFunc func(*config) error

func (o globOptionFunc) applyGlob(c *config) error {
	return o(c)
}

type routeOptionFunc func(*routeConfig) error

func (o routeOptionFunc) applyRoute(c *routeConfig) error {
	return o(c)
}

// IgnoreTrailingSlash makes /foo and /foo/ equivalent. When enabled, exactly one trailing slash is removed from
// the path before registration and before lookup. The root path "/" is never trimmed.
func IgnoreTrailingSlash(enable bool) Option {
	return globOptionFunc(func(c *config) error {
		c.ignoreTrailingSlash = enable
		return nil
	})
}

// WithSegmentWildcards turns every "*" or "*name" segment into an anonymous parameter that captures exactly one
// segment, and may appear anywhere in the route (e.g. /foo/*/baz/*). Anonymous captures are not part of
// Result.Params, only of Result.Captures. When disabled (default), "*" declares a catch-all which must be the last
// segment of the route.
func WithSegmentWildcards(enable bool) Option {
	return globOptionFunc(func(c *config) error {
		c.segmentWildcards = enable
		return nil
	})
}

// WithChangingParamNames allows routes to use different parameter names at the same position, e.g. /user/:id
// and /user/:name/posts. Names are resolved from the matched route, so /user/42 yields id=42 while /user/42/posts
// yields name=42. Two routes only differing by their parameter names are duplicates. When disabled (default),
// such routes conflict.
func WithChangingParamNames(enable bool) Option {
	return globOptionFunc(func(c *config) error {
		c.changingParamNames = enable
		return nil
	})
}

// WithMaxRouteParams set the maximum number of parameters allowed in a route. The default max is math.MaxUint8.
// Routes exceeding this limit will fail with an error that Is ErrInvalidRoute and ErrTooManyParams.
func WithMaxRouteParams(max int) Option {
	return globOptionFunc(func(c *config) error {
		if max < 1 {
			return fmt.Errorf("%w: max route params must be greater than zero", ErrInvalidConfig)
		}
		c.maxParams = max
		return nil
	})
}

// WithMaxRouteParamKeyBytes set the maximum number of bytes allowed per parameter key in a route. The default max is
// math.MaxUint8. Routes with parameter keys exceeding this limit will fail with an error that Is ErrInvalidRoute and
// ErrParamKeyTooLarge.
func WithMaxRouteParamKeyBytes(max int) Option {
	return globOptionFunc(func(c *config) error {
		if max < 1 {
			return fmt.Errorf("%w: max route param key bytes must be greater than zero", ErrInvalidConfig)
		}
		c.maxParamKeyBytes = max
		return nil
	})
}

// WithLogger sets the logger used to report route registration. By default, nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return globOptionFunc(func(c *config) error {
		if logger == nil {
			return fmt.Errorf("%w: logger cannot be nil", ErrInvalidConfig)
		}
		c.logger = logger
		return nil
	})
}

// WithLockedLookup makes every lookup acquire a read lock, so routes can be registered while lookups are ongoing.
// By default, lookups are lock-free and all routes must be registered before the first lookup.
func WithLockedLookup(enable bool) Option {
	return globOptionFunc(func(c *config) error {
		c.lockedLookup = enable
		return nil
	})
}

// AllowEmptyCatchAll allows the catch-all parameter of the route to capture an empty remainder, e.g. /static/*path
// also match /static/ with path="". The route must end with a catch-all, or the registration fail with an error
// that Is ErrInvalidConfig.
func AllowEmptyCatchAll() RouteOption {
	return routeOptionFunc(func(c *routeConfig) error {
		c.catchEmpty = true
		return nil
	})
}
