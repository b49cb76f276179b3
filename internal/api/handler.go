package api

import (
	"net/http"

	"github.com/phrazzld/vigil-api/internal/api/shared"
)

// HandlerFunc is an HTTP handler that reports failure by returning an error.
// Returned errors go to the error stage of the request.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ServeHTTP implements http.Handler.
func (h HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h(w, r); err != nil {
		shared.RespondError(w, r, err)
	}
}
