// Package web serves the embedded dashboard page and its offline worker.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"text/template"
)

//go:embed static/*
var staticFS embed.FS

const cachePrefix = "novaspeak-v"

// CacheName is the offline cache name for an asset version.
func CacheName(version string) string {
	return cachePrefix + version
}

type assets struct {
	files    http.Handler
	worker   []byte
	manifest []byte
}

// New renders the offline worker for version and returns a handler for the
// whole asset tree.
func New(version string) (http.Handler, error) {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}

	tmpl, err := template.ParseFS(sub, "sw.js")
	if err != nil {
		return nil, fmt.Errorf("parse worker: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ CacheName string }{CacheName(version)}); err != nil {
		return nil, fmt.Errorf("render worker: %w", err)
	}

	manifest, err := fs.ReadFile(sub, "manifest.json")
	if err != nil {
		return nil, err
	}

	return &assets{
		files:    http.FileServer(http.FS(sub)),
		worker:   buf.Bytes(),
		manifest: manifest,
	}, nil
}

func (a *assets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/sw.js":
		// the browser must see a new worker as soon as the version changes
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(a.worker)
	case "/manifest.json":
		w.Header().Set("Content-Type", "application/manifest+json")
		w.Write(a.manifest)
	default:
		a.files.ServeHTTP(w, r)
	}
}
