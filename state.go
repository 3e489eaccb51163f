package spaview

import (
	"context"
	"maps"
	"slices"

	"github.com/jackielii/ctxkey"
)

var (
	stateCtx = ctxkey.New[*NavigationState]("spaview.navigationState", nil)
	tableCtx = ctxkey.New[*RouteTable]("spaview.routeTable", nil)
)

// Params maps parameter names to the raw path segments they matched.
type Params map[string]string

// Get returns the value bound to name, or "" if there is none.
func (p Params) Get(name string) string {
	return p[name]
}

// NavigationState describes one navigation. It is created when the navigation
// starts and never modified afterwards.
type NavigationState struct {
	Generation uint64
	// Path is the location as navigated to, query and fragment included.
	Path string
	// Segments are the path segments matched against the route table.
	Segments []string
	Params   Params
	// Match is nil when no route matched.
	Match *Match
}

func newNavigationState(gen uint64, path string, m *Match) *NavigationState {
	s := &NavigationState{
		Generation: gen,
		Path:       path,
		Segments:   slices.Clone(splitPath(trimQuery(path))),
		Match:      m,
	}
	if m != nil {
		s.Params = maps.Clone(m.Params)
	} else {
		s.Params = Params{}
	}
	return s
}

// Matched reports whether the navigation found a route.
func (s *NavigationState) Matched() bool {
	return s != nil && s.Match != nil
}

// WithState returns a context carrying the navigation state and route table that
// views read through [StateFrom], [ParamsFrom] and [URLFor].
func WithState(ctx context.Context, t *RouteTable, s *NavigationState) context.Context {
	ctx = stateCtx.WithValue(ctx, s)
	if t != nil {
		ctx = tableCtx.WithValue(ctx, t)
	}
	return ctx
}

// StateFrom returns the navigation state being rendered, or nil.
func StateFrom(ctx context.Context) *NavigationState {
	return stateCtx.Value(ctx)
}

// ParamsFrom returns the parameters of the navigation being rendered. It never
// returns nil.
func ParamsFrom(ctx context.Context) Params {
	if s := stateCtx.Value(ctx); s != nil && s.Params != nil {
		return s.Params
	}
	return Params{}
}
