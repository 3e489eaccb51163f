package shell

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/jackielii/spaview"
	"go.uber.org/zap"
)

const indexFile = "index.html"

type cacheMode int

const (
	cacheNone cacheMode = iota
	cacheProduction
)

type staticOptions struct {
	cache  cacheMode
	table  *spaview.RouteTable
	strict bool
	logger *zap.Logger
	// injectReload adds the live reload client to the index document and
	// rereads it on every request.
	injectReload bool
}

// staticHandler serves files from a directory and answers every other GET or
// HEAD with the index document.
type staticHandler struct {
	fsys fs.FS
	opts staticOptions

	// index is read once unless opts.injectReload is set.
	index []byte
}

func newStaticHandler(dir string, opts staticOptions) (*staticHandler, error) {
	if opts.logger == nil {
		opts.logger = zap.NewNop()
	}
	h := &staticHandler{fsys: os.DirFS(dir), opts: opts}
	index, err := fs.ReadFile(h.fsys, indexFile)
	switch {
	case err == nil:
		h.index = index
	case opts.cache == cacheProduction:
		return nil, fmt.Errorf("read %s: %w", filepath.Join(dir, indexFile), err)
	default:
		opts.logger.Warn("index document not found yet", zap.String("dir", dir), zap.Error(err))
	}
	return h, nil
}

func (h *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if rel, ok := staticRelPath(r.URL.Path); ok && rel != indexFile {
		if h.serveFile(w, r, rel) {
			return
		}
	}
	h.serveIndex(w, r)
}

// serveFile serves rel if it is a regular file and reports whether it did.
func (h *staticHandler) serveFile(w http.ResponseWriter, r *http.Request, rel string) bool {
	f, err := h.fsys.Open(rel)
	if err != nil {
		return false
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}
	rs, ok := f.(io.ReadSeeker)
	if !ok {
		return false
	}
	h.applyCacheHeaders(w, rel)
	http.ServeContent(w, r, rel, info.ModTime(), rs)
	return true
}

func (h *staticHandler) serveIndex(w http.ResponseWriter, r *http.Request) {
	index, err := h.indexDocument()
	if err != nil {
		h.opts.logger.Error("read index document", zap.Error(err))
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}
	status := http.StatusOK
	if h.opts.strict && h.opts.table != nil {
		if _, ok := h.opts.table.Match(r.URL.Path); !ok {
			status = http.StatusNotFound
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_, _ = w.Write(index)
	}
}

func (h *staticHandler) indexDocument() ([]byte, error) {
	if !h.opts.injectReload {
		if h.index == nil {
			return nil, errors.New("index document not loaded")
		}
		return h.index, nil
	}
	index, err := fs.ReadFile(h.fsys, indexFile)
	if err != nil {
		return nil, err
	}
	return injectReloadScript(index), nil
}

func (h *staticHandler) applyCacheHeaders(w http.ResponseWriter, rel string) {
	switch h.opts.cache {
	case cacheNone:
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	case cacheProduction:
		if isFingerprinted(rel) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
		}
	}
}

// staticRelPath maps a URL path to a path inside the asset directory. It
// rejects anything that could escape the directory.
func staticRelPath(urlPath string) (string, bool) {
	rel := strings.TrimPrefix(urlPath, "/")
	if rel == "" || strings.HasPrefix(rel, "/") {
		return "", false
	}
	if strings.IndexByte(rel, 0) != -1 || strings.Contains(rel, "\\") {
		return "", false
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." {
			return "", false
		}
	}
	clean := path.Clean(rel)
	if !fs.ValidPath(clean) || clean == "." {
		return "", false
	}
	return clean, true
}

// isFingerprinted reports whether a file name carries a content hash, such as
// "bundle.a1b2c3d4.js".
func isFingerprinted(filePath string) bool {
	parts := strings.Split(path.Base(filePath), ".")
	if len(parts) < 3 {
		return false
	}
	hash := parts[len(parts)-2]
	if len(hash) < 8 {
		return false
	}
	for _, c := range hash {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

func injectReloadScript(index []byte) []byte {
	script := []byte(reloadScript)
	if i := bytes.LastIndex(index, []byte("</body>")); i >= 0 {
		out := make([]byte, 0, len(index)+len(script))
		out = append(out, index[:i]...)
		out = append(out, script...)
		return append(out, index[i:]...)
	}
	return append(bytes.Clone(index), script...)
}
