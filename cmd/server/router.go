package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/vigil-api/internal/api/scan"
	"github.com/phrazzld/vigil-api/internal/api/status"
)

// setupRouter creates the router mounted under /api.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	status.NewHandler(app.dataSource, app.scanner).RegisterRoutes(r)
	scan.NewHandler(app.scanner, app.logger).RegisterRoutes(r)

	return r
}
