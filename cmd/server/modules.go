package main

import (
	"net/http"

	"github.com/choralworks/medialib/internal/assets"
	"github.com/choralworks/medialib/internal/config"
	"github.com/choralworks/medialib/pkg/routes"
)

// Modules holds the domain modules mounted on the API surface.
type Modules struct {
	Assets *assets.Handler
}

// NewModules wires the domain modules over the shared runtime.
func NewModules(rt *Runtime, cfg *config.Config) *Modules {
	store := assets.NewRepository(rt.Database.DB(), rt.Logger)
	library := assets.NewLibrary(store, rt.Blobs, rt.Logger, cfg.Storage.UploadConcurrency)

	return &Modules{
		Assets: assets.NewHandler(library, rt.Logger, cfg.Pagination, cfg.Storage.MaxUploadSizeBytes()),
	}
}

// Mount registers every module's routes under the API base path.
func (m *Modules) Mount(mux *http.ServeMux) {
	routes.Mount(mux, "/api", routes.Group{
		Prefix:      "",
		Description: "Media library API",
		Children: []routes.Group{
			m.Assets.Routes(),
		},
	})
}
