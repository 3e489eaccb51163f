package spaview

import (
	"context"
	"fmt"
	"iter"
	"path"
	"strings"

	"github.com/a-h/templ"
)

// View is a renderable view. A view used as a layout renders the matched child
// view through templ's children, see [templ.GetChildren].
type View struct {
	Name      string
	Component templ.Component
}

// Loader fetches a view on demand. ctx carries the navigation being resolved,
// see [StateFrom] and [ParamsFrom]. It should return promptly once ctx is done.
type Loader func(ctx context.Context) (*View, error)

// ViewSource is either [Eager] or [Deferred].
type ViewSource interface {
	viewSource()
}

// Eager is a view that is available immediately.
type Eager struct {
	View *View
}

// Deferred is a view fetched by Load every time it is navigated to, unless the
// navigator caches loads.
type Deferred struct {
	Load Loader
}

func (Eager) viewSource()    {}
func (Deferred) viewSource() {}

// RouteNode is one entry of the route tree. Path is a "/" separated pattern of
// literal segments and ":name" parameters; "/" or "" consumes nothing.
// Children are tried in declaration order, except that a literal segment is
// preferred over a parameter at the same position.
type RouteNode struct {
	Name     string
	Path     string
	View     ViewSource
	Index    *View
	Children []*RouteNode

	// Parent is set by NewRouteTable.
	Parent *RouteNode

	segments []segment
	ordered  []*RouteNode
}

// FullPath joins the node's pattern with those of its ancestors.
func (n *RouteNode) FullPath() string {
	if n.Parent == nil {
		return path.Join("/", n.Path)
	}
	return path.Join(n.Parent.FullPath(), n.Path)
}

// Deferred reports whether the node's view is loaded on demand.
func (n *RouteNode) Deferred() bool {
	_, ok := n.View.(Deferred)
	return ok
}

// All iterates over the node and its descendants depth first, in declaration order.
func (n *RouteNode) All() iter.Seq[*RouteNode] {
	return func(yield func(*RouteNode) bool) {
		walk(n, yield)
	}
}

func walk(n *RouteNode, yield func(*RouteNode) bool) bool {
	if !yield(n) {
		return false
	}
	for _, child := range n.Children {
		if !walk(child, yield) {
			return false
		}
	}
	return true
}

func (n *RouteNode) kind() string {
	switch v := n.View.(type) {
	case Eager:
		if v.View != nil {
			return "eager " + v.View.Name
		}
		return "eager"
	case Deferred:
		return "deferred"
	default:
		return "-"
	}
}

func (n RouteNode) String() string {
	var sb strings.Builder
	sb.WriteString("RouteNode{")
	sb.WriteString("\n  name: " + n.Name)
	sb.WriteString("\n  path: " + n.Path)
	sb.WriteString("\n  view: " + n.kind())
	if n.Index != nil {
		sb.WriteString("\n  index: " + n.Index.Name)
	}
	for i, child := range n.Children {
		fmt.Fprintf(&sb, "\n  child %d:", i+1)
		childStr := strings.TrimRight(child.String(), "\n")
		for _, line := range strings.SplitAfter(childStr, "\n") {
			sb.WriteString("  " + line)
		}
	}
	sb.WriteString("\n}")
	return sb.String()
}
