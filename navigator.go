package spaview

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/a-h/templ"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Phase is the state a navigation is rendered in.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseFailed
	PhaseNotFound
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	case PhaseNotFound:
		return "not-found"
	default:
		return "unknown"
	}
}

// ErrSuperseded is reported by [Navigation.Wait] when a newer navigation
// started before the deferred views of this one were loaded.
var ErrSuperseded = errors.New("navigation superseded")

// Frame is what the navigator asks a [Renderer] to display.
type Frame struct {
	State     *NavigationState
	Phase     Phase
	Component templ.Component
	// Err is set for PhaseFailed.
	Err error
}

// Renderer displays frames. Calls are serialised by the navigator.
type Renderer interface {
	Render(ctx context.Context, f Frame) error
}

// RenderFunc adapts a function to [Renderer].
type RenderFunc func(ctx context.Context, f Frame) error

func (fn RenderFunc) Render(ctx context.Context, f Frame) error {
	return fn(ctx, f)
}

// Navigator matches navigations against a route table and renders the result,
// resolving deferred views in the background. The most recent navigation
// always wins: results for older ones are discarded on arrival.
type Navigator struct {
	table     *RouteTable
	renderer  Renderer
	logger    *zap.Logger
	observer  Observer
	loading   templ.Component
	notFound  templ.Component
	errorView func(error) templ.Component
	cache     *loaderCache

	gen     atomic.Uint64
	current atomic.Pointer[NavigationState]

	// mu serialises rendering and guards cancel. The generation only changes
	// while mu is held.
	mu     sync.Mutex
	cancel context.CancelFunc
}

type NavigatorOption func(*Navigator)

// WithLoadingView sets the view shown while deferred views load.
func WithLoadingView(c templ.Component) NavigatorOption {
	return func(nv *Navigator) {
		nv.loading = c
	}
}

// WithNotFoundView sets the view shown when no route matches.
func WithNotFoundView(c templ.Component) NavigatorOption {
	return func(nv *Navigator) {
		nv.notFound = c
	}
}

// WithErrorView sets the view shown when a deferred view fails to load.
func WithErrorView(fn func(error) templ.Component) NavigatorOption {
	return func(nv *Navigator) {
		nv.errorView = fn
	}
}

// WithLoaderCache keeps successfully loaded views for the lifetime of the
// navigator instead of loading them on every navigation.
// A cached loader runs once, with the state of the navigation that first
// needed it, so its view should read parameters at render time.
func WithLoaderCache() NavigatorOption {
	return func(nv *Navigator) {
		nv.cache = newLoaderCache()
	}
}

func WithLogger(logger *zap.Logger) NavigatorOption {
	return func(nv *Navigator) {
		nv.logger = logger
	}
}

func WithObserver(o Observer) NavigatorOption {
	return func(nv *Navigator) {
		nv.observer = o
	}
}

func NewNavigator(table *RouteTable, r Renderer, opts ...NavigatorOption) *Navigator {
	nv := &Navigator{
		table:     table,
		renderer:  r,
		logger:    zap.NewNop(),
		observer:  nopObserver{},
		loading:   defaultLoadingView,
		notFound:  defaultNotFoundView,
		errorView: defaultErrorView,
	}
	for _, opt := range opts {
		opt(nv)
	}
	return nv
}

// Current returns the state of the latest navigation, or nil before the first.
func (nv *Navigator) Current() *NavigationState {
	return nv.current.Load()
}

// Generation returns the generation of the latest navigation.
func (nv *Navigator) Generation() uint64 {
	return nv.gen.Load()
}

// Navigate starts a navigation to path. The first frame is rendered before
// Navigate returns; when deferred views are involved the final frame follows
// once they are loaded, see [Navigation.Done].
func (nv *Navigator) Navigate(ctx context.Context, path string) *Navigation {
	nv.mu.Lock()
	defer nv.mu.Unlock()

	gen := nv.gen.Add(1)
	if nv.cancel != nil {
		nv.cancel()
		nv.cancel = nil
	}
	m, _ := nv.table.Match(trimQuery(path))
	state := newNavigationState(gen, path, m)
	nv.current.Store(state)
	nav := &Navigation{state: state, done: make(chan struct{})}
	nv.observer.NavigationStarted(state)
	nv.logger.Debug("navigate", zap.String("path", path), zap.Uint64("generation", gen))

	if m == nil {
		nv.finish(ctx, nav, Frame{State: state, Phase: PhaseNotFound, Component: nv.notFound})
		return nav
	}

	slots := m.slots()
	views := eagerViews(slots)
	if !m.Deferred() {
		nv.finish(ctx, nav, Frame{State: state, Phase: PhaseReady, Component: partial(views, nil)})
		return nav
	}

	if err := nv.render(ctx, Frame{State: state, Phase: PhaseLoading, Component: partial(views, nv.loading)}); err != nil {
		nv.logger.Warn("render interim view", zap.String("path", path), zap.Error(err))
		// Fall back to the bare loading view so the previous navigation does
		// not stay mounted.
		if err := nv.render(ctx, Frame{State: state, Phase: PhaseLoading, Component: nv.loading}); err != nil {
			nv.logger.Warn("render loading view", zap.String("path", path), zap.Error(err))
		}
	}
	// Loaders see the navigation through StateFrom, ParamsFrom and URLFor.
	loadCtx, cancel := context.WithCancel(WithState(ctx, nv.table, state))
	nv.cancel = cancel
	go nv.resolve(loadCtx, cancel, nav, slots)
	return nav
}

// Close cancels the in-flight resolution, if any. Its result is discarded.
func (nv *Navigator) Close() {
	nv.mu.Lock()
	defer nv.mu.Unlock()
	nv.gen.Add(1)
	if nv.cancel != nil {
		nv.cancel()
		nv.cancel = nil
	}
}

func (nv *Navigator) resolve(ctx context.Context, cancel context.CancelFunc, nav *Navigation, slots []slot) {
	defer cancel()
	views, err := nv.resolveSlots(ctx, slots)

	nv.mu.Lock()
	defer nv.mu.Unlock()
	state := nav.state
	if state.Generation != nv.gen.Load() {
		nv.logger.Debug("discard stale navigation",
			zap.String("path", state.Path), zap.Uint64("generation", state.Generation))
		nv.observer.NavigationDiscarded(state)
		nav.complete(PhaseLoading, ErrSuperseded)
		return
	}
	nv.cancel = nil

	rctx := context.WithoutCancel(ctx)
	if err != nil {
		nv.logger.Warn("load view", zap.String("path", state.Path), zap.Error(err))
		nv.finish(rctx, nav, Frame{
			State:     state,
			Phase:     PhaseFailed,
			Component: partial(views, nv.errorView(err)),
			Err:       err,
		})
		return
	}
	nv.finish(rctx, nav, Frame{State: state, Phase: PhaseReady, Component: partial(views, nil)})
}

// resolveSlots loads the deferred views of slots concurrently. On failure the
// returned views hold whatever was resolved and the first error is returned.
func (nv *Navigator) resolveSlots(ctx context.Context, slots []slot) ([]*View, error) {
	views := eagerViews(slots)
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range slots {
		d, ok := s.source.(Deferred)
		if !ok {
			continue
		}
		g.Go(func() error {
			v, err := nv.load(gctx, s.node, d.Load)
			if err != nil {
				return err
			}
			views[i] = v
			return nil
		})
	}
	err := g.Wait()
	return views, err
}

// finish renders the final frame of nav. mu must be held.
func (nv *Navigator) finish(ctx context.Context, nav *Navigation, f Frame) {
	err := f.Err
	if rerr := nv.render(ctx, f); rerr != nil {
		nv.logger.Warn("render view", zap.String("path", f.State.Path), zap.Error(rerr))
		if err == nil {
			err = rerr
		}
	}
	nv.observer.NavigationFinished(f.State, f.Phase)
	nav.complete(f.Phase, err)
}

func (nv *Navigator) render(ctx context.Context, f Frame) error {
	return nv.renderer.Render(WithState(ctx, nv.table, f.State), f)
}

func eagerViews(slots []slot) []*View {
	views := make([]*View, len(slots))
	for i, s := range slots {
		if e, ok := s.source.(Eager); ok {
			views[i] = e.View
		}
	}
	return views
}

// partial composes the leading resolved views, stopping at the first missing
// one, with placeholder innermost. A nil placeholder is omitted.
func partial(views []*View, placeholder templ.Component) templ.Component {
	comps := make([]templ.Component, 0, len(views)+1)
	for _, v := range views {
		if v == nil {
			break
		}
		comps = append(comps, v.Component)
	}
	if placeholder != nil {
		comps = append(comps, placeholder)
	}
	return compose(comps...)
}

// Navigation tracks one call to [Navigator.Navigate].
type Navigation struct {
	state *NavigationState
	done  chan struct{}
	phase Phase
	err   error
}

func (n *Navigation) complete(phase Phase, err error) {
	n.phase, n.err = phase, err
	close(n.done)
}

// State returns the navigation's state.
func (n *Navigation) State() *NavigationState { return n.state }

// Done is closed once the final frame has been rendered or the navigation
// was superseded.
func (n *Navigation) Done() <-chan struct{} { return n.done }

// Wait blocks until the navigation is done and returns its final phase. The
// error is the load or render error, or [ErrSuperseded].
func (n *Navigation) Wait(ctx context.Context) (Phase, error) {
	select {
	case <-n.done:
		return n.phase, n.err
	case <-ctx.Done():
		return PhaseLoading, ctx.Err()
	}
}
