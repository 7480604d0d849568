package main

import (
	"net/http"
	"strings"

	"github.com/choralworks/medialib/internal/config"
	"github.com/choralworks/medialib/pkg/middleware"
)

func buildRouter(rt *Runtime, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mountBlobDir(mux, cfg.Storage)

	modules := NewModules(rt, cfg)
	modules.Mount(mux)

	handler := middleware.TrimSlash()(mux)
	handler = middleware.CORS(&cfg.CORS)(handler)
	handler = middleware.Logger(rt.Logger)(handler)
	return handler
}

// mountBlobDir serves the filesystem blob directory under the public base
// URL. Skipped when blobs live behind an external URL instead of a path.
func mountBlobDir(mux *http.ServeMux, cfg config.StorageConfig) {
	if strings.Contains(cfg.PublicBaseURL, "://") {
		return
	}

	prefix := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	fs := http.FileServer(http.Dir(cfg.BasePath))
	mux.Handle("GET "+prefix+"/", http.StripPrefix(prefix+"/", fs))
}
