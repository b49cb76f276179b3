package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/vigil-api/internal/api/shared"
	"github.com/phrazzld/vigil-api/internal/apperror"
)

// ErrorStage makes t the recovery point for everything downstream. Handlers
// report failures with shared.RespondError; panics are recovered and
// translated as unclassified failures. Exactly one response is sent.
func ErrorStage(t *shared.ErrorTranslator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww, ok := w.(middleware.WrapResponseWriter)
			if !ok {
				ww = middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			}
			r = r.WithContext(shared.WithErrorStage(r.Context(), t, ww))

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					// net/http uses this panic to abort the connection on purpose.
					panic(rec)
				}
				shared.RespondError(ww, r, apperror.FromPanic(rec))
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
