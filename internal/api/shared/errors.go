package shared

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/vigil-api/internal/apperror"
	"github.com/phrazzld/vigil-api/internal/platform/logger"
	"github.com/phrazzld/vigil-api/internal/redact"
)

// ErrorTranslator turns request failures into JSON error responses. It is the
// only place request errors become responses.
type ErrorTranslator struct {
	logger *slog.Logger
	redact bool
}

// NewErrorTranslator creates a translator. With redactInternal set, the
// client-visible message of an unclassified failure is redacted; the log line
// always carries the full error.
func NewErrorTranslator(l *slog.Logger, redactInternal bool) *ErrorTranslator {
	if l == nil {
		l = slog.Default()
	}
	return &ErrorTranslator{logger: l, redact: redactInternal}
}

type stageKey struct{}

// errorStage ties a translator to the response writer it guards.
type errorStage struct {
	translator *ErrorTranslator
	writer     middleware.WrapResponseWriter
}

// WithErrorStage installs t as the error stage of the request. ww must be the
// writer every downstream handler writes through.
func WithErrorStage(ctx context.Context, t *ErrorTranslator, ww middleware.WrapResponseWriter) context.Context {
	return context.WithValue(ctx, stageKey{}, &errorStage{translator: t, writer: ww})
}

var fallbackTranslator = NewErrorTranslator(nil, false)

// RespondError hands err to the error stage of the request. Outside a
// pipeline it falls back to a default translator.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	if st, ok := r.Context().Value(stageKey{}).(*errorStage); ok {
		st.translator.translate(w, r, err, st.writer)
		return
	}
	ww, _ := w.(middleware.WrapResponseWriter)
	fallbackTranslator.translate(w, r, err, ww)
}

// Translate writes the response for err. Application failures use their own
// status and are not logged; anything else is logged and becomes a 500.
func (t *ErrorTranslator) Translate(w http.ResponseWriter, r *http.Request, err error) {
	ww, _ := w.(middleware.WrapResponseWriter)
	t.translate(w, r, err, ww)
}

func (t *ErrorTranslator) translate(
	w http.ResponseWriter,
	r *http.Request,
	err error,
	guard middleware.WrapResponseWriter,
) {
	f := apperror.Classify(err)
	log := logger.FromContextOrDefault(r.Context(), t.logger).With("component", "error_stage")
	message := f.Message
	started := guard != nil && guard.Status() != 0

	// Each failure produces at most one log line.
	if f.Kind == apperror.KindUnclassified {
		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"trace_id", GetTraceID(r.Context()),
			"error", err,
			"error_type", fmt.Sprintf("%T", err),
		}
		if started {
			attrs = append(attrs, "status_code", guard.Status(), "response_started", true)
		}
		log.Error("unhandled request error", attrs...)
		if t.redact {
			message = redact.String(message)
		}
	}

	if started {
		if f.Kind == apperror.KindApplication {
			log.Error("response already started, error not sent",
				"status_code", guard.Status(),
				"failure_kind", f.Kind.String(),
				"path", r.URL.Path)
		}
		return
	}

	RespondWithError(w, f.Code, message)
}
