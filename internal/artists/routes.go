// Package artists wires the artist management views into a route table.
package artists

import (
	"context"
	"time"

	"github.com/jackielii/spaview"
)

// Route names, usable with spaview.URLFor.
const (
	RouteRoot   = "Root"
	RouteCreate = "ArtistCreate"
	RouteDetail = "ArtistDetail"
	RouteEdit   = "ArtistEdit"
)

// Options tune the simulated module fetch of the deferred views.
type Options struct {
	// Latency is how long each deferred view takes to load.
	Latency time.Duration
}

// Routes returns the route tree: the Home layout with ArtistMain as its index,
// and the create, detail and edit views loaded on demand.
func Routes(opts Options) *spaview.RouteNode {
	return &spaview.RouteNode{
		Name:  RouteRoot,
		Path:  "/",
		View:  spaview.Eager{View: Home},
		Index: ArtistMain,
		Children: []*spaview.RouteNode{
			{Name: RouteCreate, Path: "artists/new", View: spaview.Deferred{Load: fetch(opts.Latency, artistCreate)}},
			{Name: RouteDetail, Path: "artists/:id", View: spaview.Deferred{Load: fetch(opts.Latency, artistDetail)}},
			{Name: RouteEdit, Path: "artists/:id/edit", View: spaview.Deferred{Load: fetch(opts.Latency, artistEdit)}},
		},
	}
}

// Table builds the route table.
func Table(opts Options) (*spaview.RouteTable, error) {
	return spaview.NewRouteTable(Routes(opts))
}

// fetch simulates loading a view module that takes latency to arrive.
func fetch(latency time.Duration, view func() *spaview.View) spaview.Loader {
	return func(ctx context.Context) (*spaview.View, error) {
		if latency > 0 {
			t := time.NewTimer(latency)
			defer t.Stop()
			select {
			case <-t.C:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return view(), nil
	}
}
