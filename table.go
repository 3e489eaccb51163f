package spaview

import (
	"errors"
	"fmt"
	"slices"
)

// ConfigError reports a malformed route tree.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("route %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

var (
	ErrDuplicateRoute  = errors.New("duplicate or ambiguous sibling route")
	ErrDuplicateParam  = errors.New("parameter bound twice on one branch")
	ErrEmptyView       = errors.New("view has no component")
	ErrNilRouteNode    = errors.New("nil route node")
	ErrEmptyRouteTable = errors.New("route table has no root")
	ErrSharedRouteNode = errors.New("route node appears more than once in the tree")
)

// RouteTable is an immutable route tree. It is safe for concurrent use.
type RouteTable struct {
	root *RouteNode
}

// Match is the result of matching a path.
type Match struct {
	// Node is the deepest matched node.
	Node *RouteNode
	// Branch holds the matched nodes from the root down to Node.
	Branch []*RouteNode
	Params Params
	// Index is set when Node matched exactly and its index view is rendered.
	Index bool
}

// NewRouteTable validates the tree rooted at root and freezes it.
// The nodes must not be modified afterwards.
func NewRouteTable(root *RouteNode) (*RouteTable, error) {
	if root == nil {
		return nil, ErrEmptyRouteTable
	}
	root.Parent = nil
	seen := map[*RouteNode]bool{root: true}
	if err := prepare(root, map[string]bool{}, seen); err != nil {
		return nil, err
	}
	return &RouteTable{root: root}, nil
}

// MustRouteTable is like NewRouteTable but panics on error.
func MustRouteTable(root *RouteNode) *RouteTable {
	t, err := NewRouteTable(root)
	if err != nil {
		panic(err)
	}
	return t
}

// Root returns the root node.
func (t *RouteTable) Root() *RouteNode { return t.root }

// prepare validates n and its subtree. seen holds every node visited so far;
// a node met twice, such as an ancestor listed as a child, is rejected before
// its Parent is touched.
func prepare(n *RouteNode, bound map[string]bool, seen map[*RouteNode]bool) error {
	segments, err := parsePattern(n.Path)
	if err != nil {
		return &ConfigError{Path: n.FullPath(), Err: err}
	}
	n.segments = segments

	var added []string
	defer func() {
		for _, name := range added {
			delete(bound, name)
		}
	}()
	for _, s := range segments {
		if !s.param {
			continue
		}
		if bound[s.name] {
			return &ConfigError{Path: n.FullPath(), Err: fmt.Errorf("%w: %s", ErrDuplicateParam, s.name)}
		}
		bound[s.name] = true
		added = append(added, s.name)
	}

	switch v := n.View.(type) {
	case Eager:
		if v.View == nil || v.View.Component == nil {
			return &ConfigError{Path: n.FullPath(), Err: ErrEmptyView}
		}
	case Deferred:
		if v.Load == nil {
			return &ConfigError{Path: n.FullPath(), Err: errors.New("deferred view has no loader")}
		}
	}
	if n.Index != nil && n.Index.Component == nil {
		return &ConfigError{Path: n.FullPath(), Err: fmt.Errorf("index: %w", ErrEmptyView)}
	}

	shapes := make(map[string]*RouteNode, len(n.Children))
	for i, child := range n.Children {
		if child == nil {
			return &ConfigError{Path: n.FullPath(), Err: fmt.Errorf("%w at child %d", ErrNilRouteNode, i)}
		}
		if seen[child] {
			return &ConfigError{Path: n.FullPath(), Err: fmt.Errorf("%w at child %d", ErrSharedRouteNode, i)}
		}
		seen[child] = true
		child.Parent = n
		if err := prepare(child, bound, seen); err != nil {
			return err
		}
		key := shapeKey(child.segments)
		if prev, ok := shapes[key]; ok {
			return &ConfigError{
				Path: child.FullPath(),
				Err:  fmt.Errorf("%w: conflicts with %s", ErrDuplicateRoute, prev.FullPath()),
			}
		}
		shapes[key] = child
	}

	n.ordered = slices.Clone(n.Children)
	slices.SortStableFunc(n.ordered, func(a, b *RouteNode) int {
		return comparePrecedence(a.segments, b.segments)
	})
	return nil
}

// Match finds the node matching path and the parameters it binds. Empty
// segments are ignored; every other segment, "?" and "#" included, is matched
// as is. Callers holding a full location strip its query and fragment first,
// as [Navigator.Navigate] does.
func (t *RouteTable) Match(path string) (*Match, bool) {
	params := make(Params)
	branch, index, ok := t.root.match(splitPath(path), params)
	if !ok {
		return nil, false
	}
	return &Match{
		Node:   branch[len(branch)-1],
		Branch: branch,
		Params: params,
		Index:  index,
	}, true
}

// match consumes n's pattern from segments and then tries its children.
// Bindings made by a failed attempt are removed before returning.
func (n *RouteNode) match(segments []string, params Params) ([]*RouteNode, bool, bool) {
	if len(segments) < len(n.segments) {
		return nil, false, false
	}
	for i, s := range n.segments {
		if !s.param && s.name != segments[i] {
			return nil, false, false
		}
	}
	for i, s := range n.segments {
		if s.param {
			params[s.name] = segments[i]
		}
	}
	rest := segments[len(n.segments):]

	if len(rest) == 0 {
		if n.Index != nil {
			return []*RouteNode{n}, true, true
		}
		if n.View != nil {
			return []*RouteNode{n}, false, true
		}
	}
	for _, child := range n.ordered {
		if branch, index, ok := child.match(rest, params); ok {
			return append([]*RouteNode{n}, branch...), index, true
		}
	}

	for _, s := range n.segments {
		if s.param {
			delete(params, s.name)
		}
	}
	return nil, false, false
}

// slot pairs a matched node with the view it contributes.
type slot struct {
	node   *RouteNode
	source ViewSource
}

// slots lists the views of the match from the outermost layout to the leaf.
func (m *Match) slots() []slot {
	var out []slot
	for _, n := range m.Branch {
		if n.View != nil {
			out = append(out, slot{node: n, source: n.View})
		}
	}
	if m.Index {
		out = append(out, slot{node: m.Node, source: Eager{View: m.Node.Index}})
	}
	return out
}

// Deferred reports whether any view of the match must be loaded.
func (m *Match) Deferred() bool {
	for _, s := range m.slots() {
		if _, ok := s.source.(Deferred); ok {
			return true
		}
	}
	return false
}
