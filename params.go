// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/roadrunner/blob/master/LICENSE.txt.

package roadrunner

import "maps"

// Params holds the named captures of a matched route.
type Params map[string]string

// Get the matching wildcard segment by name.
func (p Params) Get(name string) string {
	return p[name]
}

// Has checks whether the parameter exists by name.
func (p Params) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// Clone make a copy of Params.
func (p Params) Clone() Params {
	return maps.Clone(p)
}

// Result is the outcome of a successful lookup. It is built for every call and owned by the caller.
type Result[V any] struct {
	// Value is the value registered for the matched route.
	Value V
	// Params holds the named captures. Nil when the route has no named wildcard.
	Params Params
	// Captures holds every captured value in path order, including anonymous ones.
	Captures []string
	// Pattern is the registered route that matched.
	Pattern string
}

func (r *Result[V]) capture(name, value string) {
	r.Captures = append(r.Captures, value)
	if name == "" {
		return
	}
	if r.Params == nil {
		r.Params = make(Params, 1)
	}
	r.Params[name] = value
}

// bindParams names the captures with the parameter names of the matched route.
func (r *Result[V]) bindParams(names []string) {
	for i, name := range names {
		if name == "" || i >= len(r.Captures) {
			continue
		}
		if r.Params == nil {
			r.Params = make(Params, len(names))
		}
		r.Params[name] = r.Captures[i]
	}
}
