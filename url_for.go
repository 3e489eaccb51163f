package spaview

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// URLFor returns the path of a route of the table being rendered, see
// [RouteTable.URLFor]. It is meant to be called from views.
func URLFor(ctx context.Context, target any, args ...any) (string, error) {
	t := tableCtx.Value(ctx)
	if t == nil {
		return "", errors.New("urlfor: route table not found in context")
	}
	return t.URLFor(ctx, target, args...)
}

// URLFor returns the path of the route identified by target and fills in its
// parameters. target is a node name, a *RouteNode or a func(*RouteNode) bool;
// the first node in depth first order wins.
//
// Parameters are taken from args, which may be positional values, name/value
// pairs or a single map[string]any. Parameters not given in args are taken from
// the navigation in ctx, so a detail view can link to its edit view with
//
//	URLFor(ctx, "ArtistEdit")
func (t *RouteTable) URLFor(ctx context.Context, target any, args ...any) (string, error) {
	n, err := t.find(target)
	if err != nil {
		return "", err
	}
	var segments []segment
	for p := n; p != nil; p = p.Parent {
		segments = append(slices.Clone(p.segments), segments...)
	}
	path, err := formatPathSegments(ctx, segments, args...)
	if err != nil {
		return "", fmt.Errorf("urlfor: %w", err)
	}
	return path, nil
}

func (t *RouteTable) find(target any) (*RouteNode, error) {
	var pred func(*RouteNode) bool
	switch v := target.(type) {
	case string:
		pred = func(n *RouteNode) bool { return n.Name == v }
	case *RouteNode:
		pred = func(n *RouteNode) bool { return n == v }
	case func(*RouteNode) bool:
		pred = v
	default:
		return nil, fmt.Errorf("urlfor: unsupported target %T", target)
	}
	for n := range t.root.All() {
		if pred(n) {
			return n, nil
		}
	}
	return nil, fmt.Errorf("urlfor: no route found for %v", target)
}

// formatPathSegments fills the parameter segments and joins them into a path.
//
//nolint:gocognit,gocyclo // handles the different ways arguments can be passed
func formatPathSegments(ctx context.Context, segments []segment, args ...any) (string, error) {
	pattern := joinSegments(segments)
	var indices []int
	for i, s := range segments {
		if s.param {
			indices = append(indices, i)
		}
	}
	if len(indices) == 0 {
		return pattern, nil
	}

	current := ParamsFrom(ctx)
	for _, idx := range indices {
		segments[idx].value = current[segments[idx].name]
	}
	set := func(idx int, v any) error {
		s := fmt.Sprint(v)
		if s == "" || strings.Contains(s, "/") {
			return fmt.Errorf("pattern %s: invalid value %q for %s", pattern, s, segments[idx].name)
		}
		segments[idx].value = s
		return nil
	}

	m, isMap := map[string]any(nil), false
	if len(args) == 1 {
		m, isMap = args[0].(map[string]any)
	}
	switch {
	case len(args) == 0:
	case isMap:
		for _, idx := range indices {
			if v, ok := m[segments[idx].name]; ok {
				if err := set(idx, v); err != nil {
					return pattern, err
				}
			}
		}
	case len(args) == len(indices):
		for i, idx := range indices {
			if err := set(idx, args[i]); err != nil {
				return pattern, err
			}
		}
	case isPairs(args, segments, indices):
		pairs := make(map[string]any, len(args)/2)
		for i := 0; i < len(args); i += 2 {
			pairs[args[i].(string)] = args[i+1]
		}
		for _, idx := range indices {
			if v, ok := pairs[segments[idx].name]; ok {
				if err := set(idx, v); err != nil {
					return pattern, err
				}
			}
		}
	default:
		next := 0
		for _, idx := range indices {
			if segments[idx].value != "" {
				continue
			}
			if next >= len(args) {
				break
			}
			if err := set(idx, args[next]); err != nil {
				return pattern, err
			}
			next++
		}
	}

	var missing []string
	for _, idx := range indices {
		if segments[idx].value == "" {
			missing = append(missing, segments[idx].name)
		}
	}
	if len(missing) > 0 {
		return pattern, fmt.Errorf("pattern %s: missing arguments for %s", pattern, strings.Join(missing, ", "))
	}
	return joinSegments(segments), nil
}

// isPairs reports whether args look like name/value pairs: an even number of
// them, every name a string, and at least one name a parameter of the pattern.
func isPairs(args []any, segments []segment, indices []int) bool {
	if len(args) < 2 || len(args)%2 != 0 {
		return false
	}
	matched := false
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			return false
		}
		for _, idx := range indices {
			if segments[idx].name == key {
				matched = true
			}
		}
	}
	return matched
}
