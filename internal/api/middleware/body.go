package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/phrazzld/vigil-api/internal/api/shared"
	"github.com/phrazzld/vigil-api/internal/apperror"
)

// JSONBody buffers and validates JSON request bodies up to maxBytes. The raw
// body is stored in the request context and replayed to the next handler.
// Requests without a body or with a non-JSON content type pass through.
func JSONBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody || !isJSON(r.Header.Get("Content-Type")) {
				next.ServeHTTP(w, r)
				return
			}

			data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					shared.RespondError(w, r, apperror.PayloadTooLarge("request body too large"))
					return
				}
				shared.RespondError(w, r, apperror.BadRequest("failed to read request body"))
				return
			}

			if len(bytes.TrimSpace(data)) > 0 {
				if !json.Valid(data) {
					shared.RespondError(w, r, apperror.BadRequest("invalid JSON body"))
					return
				}
				r = r.WithContext(shared.WithBody(r.Context(), json.RawMessage(data)))
			}

			r.Body = io.NopCloser(bytes.NewReader(data))
			r.ContentLength = int64(len(data))
			next.ServeHTTP(w, r)
		})
	}
}

// isJSON accepts application/json and any +json structured suffix.
func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
