package shell

import (
	"encoding/json"
	"net/http"

	"github.com/jackielii/spaview"
	"go.uber.org/zap"
)

type routeInfo struct {
	Name  string `json:"name,omitempty"`
	Path  string `json:"path"`
	View  string `json:"view,omitempty"`
	Index string `json:"index,omitempty"`
}

func (s *Server) hello(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"hi": "there"})
}

func (s *Server) listRoutes(w http.ResponseWriter, r *http.Request) {
	routes := []routeInfo{}
	if s.table != nil {
		for n := range s.table.Root().All() {
			info := routeInfo{Name: n.Name, Path: n.FullPath()}
			switch n.View.(type) {
			case spaview.Eager:
				info.View = "eager"
			case spaview.Deferred:
				info.View = "deferred"
			}
			if n.Index != nil {
				info.Index = n.Index.Name
			}
			routes = append(routes, info)
		}
	}
	s.writeJSON(w, http.StatusOK, routes)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", zap.Error(err))
	}
}
