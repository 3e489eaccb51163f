package spaview

import (
	"context"
	"fmt"
	"sync"
)

const mountHistory = 32

// Mount is a [Renderer] that keeps the HTML of the last rendered frame. A frame
// replaces the mounted content only if it renders completely.
type Mount struct {
	mu      sync.RWMutex
	html    string
	frame   Frame
	history []Frame
}

func NewMount() *Mount {
	return &Mount{}
}

func (m *Mount) Render(ctx context.Context, f Frame) error {
	buf := getBuffer()
	defer releaseBuffer(buf)
	if f.Component != nil {
		if err := f.Component.Render(ctx, buf); err != nil {
			return fmt.Errorf("render %s frame for %s: %w", f.Phase, f.State.Path, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.html = buf.String()
	m.frame = f
	m.history = append(m.history, f)
	if len(m.history) > mountHistory {
		m.history = m.history[len(m.history)-mountHistory:]
	}
	return nil
}

// HTML returns the mounted content.
func (m *Mount) HTML() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.html
}

// Frame returns the last frame that was mounted.
func (m *Mount) Frame() Frame {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.frame
}

// History returns the most recently mounted frames, oldest first.
func (m *Mount) History() []Frame {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Frame, len(m.history))
	copy(out, m.history)
	return out
}
