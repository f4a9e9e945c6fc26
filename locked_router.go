// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/roadrunner/blob/master/LICENSE.txt.

package roadrunner

// LockedRouter holds the router write lock, which allow to register many routes without
// acquiring the lock for each of them. LockedRouter's holder must always ensure to call Release in order
// to unlock the router. A LockedRouter is NOT safe for concurrent use by multiple goroutine.
type LockedRouter[V any] struct {
	r      *Router[V]
	locked bool
}

// LockRouter acquire the write lock on the router. While held, concurrent AddRoute calls block, and so do lookups
// when WithLockedLookup is enabled.
func (r *Router[V]) LockRouter() *LockedRouter[V] {
	r.mu.Lock()
	return &LockedRouter[V]{
		r:      r,
		locked: true,
	}
}

// AddRoute registers value for the given bucket and path, with the same semantic as Router.AddRoute.
// This function panic if called after lr.Release().
func (lr *LockedRouter[V]) AddRoute(bucket, path string, value V, opts ...RouteOption) error {
	lr.assertLock()
	rte, rc, err := lr.r.prepareRoute(bucket, path, opts)
	if err != nil {
		return err
	}
	return lr.r.addRoute(bucket, rte, value, rc)
}

// FindRoute perform a lookup with the same semantic as Router.FindRoute. It's safe to call while the lock is held.
func (lr *LockedRouter[V]) FindRoute(bucket, path string) (*Result[V], error) {
	return lr.r.findRoute(bucket, path)
}

// Match perform a lazy lookup and return true if the requested bucket and path match a registered route.
func (lr *LockedRouter[V]) Match(bucket, path string) bool {
	return lr.r.match(bucket, path)
}

// Release unlock the router. Calling this function on a released LockedRouter is a noop.
func (lr *LockedRouter[V]) Release() {
	if !lr.locked {
		return
	}
	lr.locked = false
	lr.r.mu.Unlock()
}

func (lr *LockedRouter[V]) assertLock() {
	if !lr.locked {
		panic("lock already released")
	}
}
