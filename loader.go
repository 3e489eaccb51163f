package spaview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

var errNilView = errors.New("loader returned no view")

// LoadError is returned when a deferred view fails to load.
type LoadError struct {
	Path string
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("load view %s (%s): %v", e.Name, e.Path, e.Err)
	}
	return fmt.Sprintf("load view %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// callLoader runs load, turning panics and empty results into errors.
func callLoader(ctx context.Context, load Loader) (v *View, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, fmt.Errorf("loader panicked: %v", r)
		}
	}()
	v, err = load(ctx)
	if err == nil && (v == nil || v.Component == nil) {
		err = errNilView
	}
	return v, err
}

// loaderCache memoises successful loads per node. Concurrent loads of the same
// node share one call; failures are not cached.
type loaderCache struct {
	group singleflight.Group
	mu    sync.RWMutex
	views map[*RouteNode]*View
}

func newLoaderCache() *loaderCache {
	return &loaderCache{views: make(map[*RouteNode]*View)}
}

func (c *loaderCache) get(n *RouteNode) (*View, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.views[n]
	return v, ok
}

// load returns the cached view for n or fetches it. The shared fetch is detached
// from ctx so that one caller giving up does not fail the others; ctx only bounds
// how long this caller waits.
func (c *loaderCache) load(ctx context.Context, n *RouteNode, load Loader) (*View, error) {
	if v, ok := c.get(n); ok {
		return v, nil
	}
	ch := c.group.DoChan(fmt.Sprintf("%p", n), func() (any, error) {
		v, err := callLoader(context.WithoutCancel(ctx), load)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.views[n] = v
		c.mu.Unlock()
		return v, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*View), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (nv *Navigator) load(ctx context.Context, n *RouteNode, load Loader) (*View, error) {
	start := time.Now()
	var (
		v   *View
		err error
	)
	if nv.cache != nil {
		v, err = nv.cache.load(ctx, n, load)
	} else {
		v, err = callLoader(ctx, load)
	}
	nv.observer.ViewLoaded(n, time.Since(start), err)
	if err != nil {
		return nil, &LoadError{Path: n.FullPath(), Name: n.Name, Err: err}
	}
	return v, nil
}
