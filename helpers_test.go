package spaview

import (
	"context"
	"io"
	"sync/atomic"
	"testing"

	"github.com/a-h/templ"
)

func textView(name, html string) *View {
	return &View{
		Name: name,
		Component: templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, err := io.WriteString(w, html)
			return err
		}),
	}
}

// layoutView renders its children wrapped in <tag>...</tag>.
func layoutView(tag string) *View {
	return &View{
		Name: tag,
		Component: templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			if _, err := io.WriteString(w, "<"+tag+">"); err != nil {
				return err
			}
			if err := templ.GetChildren(ctx).Render(ctx, w); err != nil {
				return err
			}
			_, err := io.WriteString(w, "</"+tag+">")
			return err
		}),
	}
}

func staticLoader(v *View) Loader {
	return func(context.Context) (*View, error) { return v, nil }
}

// gate is a loader whose completion the test controls.
type gate struct {
	view      *View
	err       error
	release   chan struct{}
	ignoreCtx bool
	calls     atomic.Int32
}

func newGate(v *View) *gate {
	return &gate{view: v, release: make(chan struct{})}
}

func (g *gate) Load(ctx context.Context) (*View, error) {
	g.calls.Add(1)
	if g.ignoreCtx {
		<-g.release
		return g.view, g.err
	}
	select {
	case <-g.release:
		return g.view, g.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *gate) open() { close(g.release) }

func artistTree(create, detail, edit Loader) *RouteNode {
	return &RouteNode{
		Name:  "Root",
		Path:  "/",
		View:  Eager{View: layoutView("home")},
		Index: textView("ArtistMain", "<main/>"),
		Children: []*RouteNode{
			{Name: "ArtistCreate", Path: "artists/new", View: Deferred{Load: create}},
			{Name: "ArtistDetail", Path: "artists/:id", View: Deferred{Load: detail}},
			{Name: "ArtistEdit", Path: "artists/:id/edit", View: Deferred{Load: edit}},
		},
	}
}

func artistTable(t *testing.T, create, detail, edit Loader) *RouteTable {
	t.Helper()
	tbl, err := NewRouteTable(artistTree(create, detail, edit))
	if err != nil {
		t.Fatalf("NewRouteTable() error = %v", err)
	}
	return tbl
}

func defaultArtistTable(t *testing.T) *RouteTable {
	t.Helper()
	return artistTable(t,
		staticLoader(textView("ArtistCreate", "<create/>")),
		staticLoader(textView("ArtistDetail", "<detail/>")),
		staticLoader(textView("ArtistEdit", "<edit/>")),
	)
}
