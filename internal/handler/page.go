package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// errorFragment is what the navigation shim shows when a fragment cannot be loaded.
const errorFragment = "<p>Error loading content.</p>"

// pageName matches the fragment names the shim asks for, e.g. "calendar".
var pageName = regexp.MustCompile(`^[a-zA-Z_]+$`)

// PageHandler serves the static front-end: the index shell, the HTML fragments
// the navigation shim swaps into <main>, and assets such as app.js.
//
// A fragment URL like /calendar.html is requested twice in that design: once by
// the browser when the user opens or reloads the link, and once by the shim's
// fetch(). The first must get the shell (which then loads the fragment), the
// second the fragment itself. Sec-Fetch-Mode tells them apart.
type PageHandler struct {
	dir    string
	files  http.Handler
	logger *slog.Logger
}

// NewPageHandler serves files from staticDir, which must contain index.html.
func NewPageHandler(staticDir string, logger *slog.Logger) (*PageHandler, error) {
	index := filepath.Join(staticDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		return nil, fmt.Errorf("handler: static dir %s has no index.html: %w", staticDir, err)
	}

	return &PageHandler{
		dir:    staticDir,
		files:  http.FileServer(http.Dir(staticDir)),
		logger: logger,
	}, nil
}

// ServeHTTP implements http.Handler.
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/" || path == "/index.html" {
		h.serveIndex(w, r)
		return
	}

	name, ok := fragmentName(path)
	if !ok {
		h.files.ServeHTTP(w, r)
		return
	}

	if r.Header.Get("Sec-Fetch-Mode") == "navigate" {
		h.serveIndex(w, r)
		return
	}

	file := filepath.Join(h.dir, name+".html")
	if _, err := os.Stat(file); err != nil {
		h.logger.Warn("fragment not found", slog.String("page", name))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, errorFragment)
		return
	}
	http.ServeFile(w, r, file)
}

// serveIndex writes the shell with ServeContent. http.ServeFile would answer
// any path ending in /index.html with a redirect to "./".
func (h *PageHandler) serveIndex(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(filepath.Join(h.dir, "index.html"))
	if err != nil {
		h.logger.Error("opening index", slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.logger.Error("reading index", slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.ServeContent(w, r, "index.html", info.ModTime(), f)
}

// fragmentName extracts "calendar" from "/calendar.html".
func fragmentName(path string) (string, bool) {
	name, ok := strings.CutSuffix(strings.TrimPrefix(path, "/"), ".html")
	if !ok || !pageName.MatchString(name) {
		return "", false
	}
	return name, true
}
