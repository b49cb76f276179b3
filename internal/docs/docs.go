// Package docs serves the static API document and an interactive viewer.
package docs

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
)

// SpecFile is the document path relative to the docs mount.
const SpecFile = "swagger.json"

//go:embed swagger.json
var bundledSpec []byte

//go:embed index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

// Load returns the document at path, or the bundled document when path is
// empty. Contents are served as-is.
func Load(path string) ([]byte, error) {
	if path == "" {
		return bundledSpec, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read API document: %w", err)
	}
	return data, nil
}

// Handler serves the viewer at the mount root and the document at SpecFile.
// It is meant to be mounted with chi's Mount at prefix, which the viewer uses
// to locate the document.
func Handler(spec []byte, title, prefix string) (http.Handler, error) {
	var page bytes.Buffer
	err := indexTemplate.Execute(&page, struct {
		Title   string
		SpecURL string
	}{Title: title, SpecURL: strings.TrimSuffix(prefix, "/") + "/" + SpecFile})
	if err != nil {
		return nil, fmt.Errorf("failed to render docs page: %w", err)
	}
	html := page.Bytes()

	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(html)
	})
	r.Get("/"+SpecFile, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(spec)
	})
	return r, nil
}
