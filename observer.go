package spaview

import "time"

// Observer is notified about navigation progress. Implementations must be safe
// for concurrent use; ViewLoaded is called from loader goroutines.
type Observer interface {
	NavigationStarted(s *NavigationState)
	NavigationFinished(s *NavigationState, phase Phase)
	NavigationDiscarded(s *NavigationState)
	ViewLoaded(n *RouteNode, elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) NavigationStarted(*NavigationState) {}
func (nopObserver) NavigationFinished(*NavigationState, Phase) {}
func (nopObserver) NavigationDiscarded(*NavigationState) {}
func (nopObserver) ViewLoaded(*RouteNode, time.Duration, error) {}
