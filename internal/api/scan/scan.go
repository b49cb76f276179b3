// Package scan exposes the signature scanner over HTTP.
package scan

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/vigil-api/internal/api"
	"github.com/phrazzld/vigil-api/internal/api/shared"
	"github.com/phrazzld/vigil-api/internal/apperror"
	"github.com/phrazzld/vigil-api/internal/scanner"
)

// Content encodings accepted by ScanRequest.
const (
	EncodingText   = "text"
	EncodingBase64 = "base64"
)

// Scanner matches content against signature rules.
type Scanner interface {
	Scan(ctx context.Context, data []byte) ([]scanner.Match, error)
}

// ScanRequest is the body of POST /scan.
type ScanRequest struct {
	Content  string `json:"content" validate:"required"`
	Encoding string `json:"encoding" validate:"omitempty,oneof=text base64"`
}

// ScanResponse lists the rules that matched.
type ScanResponse struct {
	Clean   bool            `json:"clean"`
	Matches []scanner.Match `json:"matches"`
}

// Handler serves content scans.
type Handler struct {
	scanner Scanner
	logger  *slog.Logger
}

// NewHandler creates a scan handler.
func NewHandler(s Scanner, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{scanner: s, logger: logger.With("component", "scan_handler")}
}

// RegisterRoutes adds the scan endpoint to r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Method(http.MethodPost, "/scan", api.HandlerFunc(h.PostScan))
}

// PostScan handles POST /scan.
func (h *Handler) PostScan(w http.ResponseWriter, r *http.Request) error {
	var req ScanRequest
	if err := shared.DecodeBody(r, &req); err != nil {
		return err
	}

	data := []byte(req.Content)
	if req.Encoding == EncodingBase64 {
		decoded, err := base64.StdEncoding.DecodeString(req.Content)
		if err != nil {
			return apperror.BadRequest("content is not valid base64")
		}
		data = decoded
	}

	matches, err := h.scanner.Scan(r.Context(), data)
	if err != nil {
		if errors.Is(err, scanner.ErrNotActive) {
			return apperror.Unavailable("scanner unavailable")
		}
		return err
	}

	if len(matches) > 0 {
		h.logger.Info("content matched signatures",
			"trace_id", shared.GetTraceID(r.Context()),
			"matches", len(matches),
			"bytes", len(data))
	}

	shared.RespondWithJSON(w, http.StatusOK, ScanResponse{
		Clean:   len(matches) == 0,
		Matches: matches,
	})
	return nil
}
