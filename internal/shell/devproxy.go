package shell

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"go.uber.org/zap"
)

// newDevProxy forwards requests to the bundler dev server, which rebuilds on
// change and serves its own index document.
func newDevProxy(target string, logger *zap.Logger) (http.Handler, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("dev proxy target: %w", err)
	}
	proxy := httputil.NewSingleHostReverseProxy(u)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Warn("dev proxy", zap.String("target", target), zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "Bad Gateway: bundler dev server unavailable", http.StatusBadGateway)
	}
	return proxy, nil
}
