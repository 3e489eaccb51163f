package shell

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	reloadPath     = "/__reload"
	reloadDebounce = 100 * time.Millisecond

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

const reloadScript = `<script>(function(){var p=location.protocol==="https:"?"wss:":"ws:";` +
	`var ws=new WebSocket(p+"//"+location.host+"` + reloadPath + `");` +
	`ws.onmessage=function(e){try{if(JSON.parse(e.data).type==="reload"){location.reload()}}catch(_){}};})();</script>`

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // development only
	},
}

type reloadMessage struct {
	Type string `json:"type"`
	Path string `json:"path,omitempty"`
}

// reloadHub tells connected browsers to reload when the assets change.
type reloadHub struct {
	logger  *zap.Logger
	mu      sync.Mutex
	clients map[*reloadClient]struct{}
	closed  bool
}

type reloadClient struct {
	conn *websocket.Conn
	send chan []byte
}

func newReloadHub(logger *zap.Logger) *reloadHub {
	return &reloadHub{logger: logger, clients: make(map[*reloadClient]struct{})}
}

// Reload broadcasts a reload message naming the changed path.
func (h *reloadHub) Reload(changed string) {
	data, err := json.Marshal(reloadMessage{Type: "reload", Path: changed})
	if err != nil {
		h.logger.Warn("marshal reload message", zap.Error(err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.removeLocked(c)
		}
	}
}

// Clients returns the number of connected browsers.
func (h *reloadHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *reloadHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *reloadHub) removeLocked(c *reloadClient) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *reloadHub) remove(c *reloadClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *reloadHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	c := &reloadClient{conn: conn, send: make(chan []byte, 16)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

// readPump discards client messages; it exists to notice disconnects.
func (h *reloadHub) readPump(c *reloadClient) {
	defer h.remove(c)
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("websocket read", zap.Error(err))
			}
			return
		}
	}
}

func (h *reloadHub) writePump(c *reloadClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// distWatcher watches the asset directory and calls onChange once changes
// have settled for the debounce interval.
type distWatcher struct {
	dir      string
	debounce time.Duration
	onChange func(path string)
	logger   *zap.Logger
}

func newDistWatcher(dir string, debounce time.Duration, onChange func(string), logger *zap.Logger) (*distWatcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch %s: not a directory", dir)
	}
	return &distWatcher{dir: dir, debounce: debounce, onChange: onChange, logger: logger}, nil
}

// Run watches until ctx is done.
func (dw *distWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := dw.addRecursive(watcher, dw.dir); err != nil {
		return err
	}

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ignoreEvent(event) {
				continue
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = dw.addRecursive(watcher, event.Name)
				}
			}
			pending = event.Name
			if timer == nil {
				timer = time.NewTimer(dw.debounce)
			} else {
				timer.Reset(dw.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			rel, err := filepath.Rel(dw.dir, pending)
			if err != nil {
				rel = pending
			}
			dw.logger.Debug("assets changed", zap.String("path", rel))
			dw.onChange(filepath.ToSlash(rel))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			dw.logger.Warn("file watcher", zap.Error(err))
		}
	}
}

func (dw *distWatcher) addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				dw.logger.Warn("watch directory", zap.String("path", path), zap.Error(err))
			}
		}
		return nil
	})
}

func ignoreEvent(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return true
	}
	return event.Op == fsnotify.Chmod
}
