// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render parses the site's HTML templates and renders full pages,
// htmx fragments and flash toasts.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
)

const flashKey = "flashes"

// Flash types map to toast styles.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

// Flash is one toast message.
type Flash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Renderer handles template rendering with caching.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	siteName       string
	isDev          bool
	now            func() time.Time
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	SiteName       string
	IsDev          bool
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		siteName:       cfg.SiteName,
		isDev:          cfg.IsDev,
		now:            time.Now,
	}

	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}

	return r, nil
}

// parseTemplates builds one template set per page. Public pages get the
// base layout; admin pages are wrapped in the dashboard layout as well.
func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := getTemplateFiles(templatesFS, "partials")
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	groups := []struct {
		dir     string
		layouts []string
	}{
		{"pages", []string{"layouts/base.html"}},
		{"admin", []string{"layouts/base.html", "layouts/admin.html"}},
	}

	for _, g := range groups {
		pages, err := getTemplateFiles(templatesFS, g.dir)
		if err != nil {
			return fmt.Errorf("getting %s templates: %w", g.dir, err)
		}

		for _, tmplPath := range pages {
			name := g.dir + "/" + strings.TrimSuffix(path.Base(tmplPath), ".html")

			files := append([]string{}, g.layouts...)
			files = append(files, partials...)
			files = append(files, tmplPath)

			tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templatesFS, files...)
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", name, err)
			}
			r.templates[name] = tmpl
		}
	}

	return nil
}

// getTemplateFiles returns all .html files in a directory. A missing
// directory yields no files.
func getTemplateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	var files []string

	entries, err := fs.ReadDir(templatesFS, dir)
	if err != nil {
		return files, nil
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}

	return files, nil
}

// Has reports whether a page template was parsed.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	SiteName    string
	Data        any
	Flashes     []Flash
	CurrentYear int
	Path        string
	LoggedIn    bool
	IsAdmin     bool
	IsDev       bool
}

func (r *Renderer) prepare(req *http.Request, data *TemplateData) {
	data.CurrentYear = r.now().Year()
	if data.SiteName == "" {
		data.SiteName = r.siteName
	}
	if data.Path == "" {
		data.Path = req.URL.Path
	}
	data.IsDev = r.isDev
	data.Flashes = append(data.Flashes, r.PopFlashes(req)...)
}

// Render renders a full page with the given data.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.execute(w, req, name, "base", http.StatusOK, data)
}

// RenderStatus renders a full page with a non-200 status.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	return r.execute(w, req, name, "base", status, data)
}

// RenderPartial renders one named block of a page for htmx swaps. Pending
// flashes are appended as out-of-band toasts.
func (r *Renderer) RenderPartial(w http.ResponseWriter, req *http.Request, name, block string, data TemplateData) error {
	return r.execute(w, req, name, block, http.StatusOK, data)
}

func (r *Renderer) execute(w http.ResponseWriter, req *http.Request, name, block string, status int, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	r.prepare(req, &data)

	// Render to buffer first to catch errors
	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, block, data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}
	if block != "base" && len(data.Flashes) > 0 {
		if err := tmpl.ExecuteTemplate(buf, "toasts_oob", data); err != nil {
			return fmt.Errorf("executing toasts for %s: %w", name, err)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

// AddFlash queues a toast for the next rendered page.
func (r *Renderer) AddFlash(req *http.Request, flashType, message string) {
	if r.sessionManager == nil || message == "" {
		return
	}
	flashes := r.peekFlashes(req)
	flashes = append(flashes, Flash{Type: flashType, Message: message})
	raw, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	r.sessionManager.Put(req.Context(), flashKey, string(raw))
}

// PopFlashes returns and clears the queued toasts.
func (r *Renderer) PopFlashes(req *http.Request) []Flash {
	if r.sessionManager == nil {
		return nil
	}
	flashes := r.peekFlashes(req)
	if len(flashes) > 0 {
		r.sessionManager.Remove(req.Context(), flashKey)
	}
	return flashes
}

func (r *Renderer) peekFlashes(req *http.Request) []Flash {
	raw := r.sessionManager.GetString(req.Context(), flashKey)
	if raw == "" {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal([]byte(raw), &flashes); err != nil {
		slog.Warn("dropping unreadable flashes", "error", err)
		return nil
	}
	return flashes
}
