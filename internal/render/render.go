// Package render provides HTML template rendering for the admin back
// office and the public site. Templates are embedded at compile time.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"errsite/internal/auth"
	"errsite/internal/middleware"
)

//go:embed templates/admin/*.html templates/public/*.html
var templateFS embed.FS

// PageData holds all data passed to admin templates.
type PageData struct {
	Title     string         // Page title for <title> tag
	Section   string         // Active sidebar section (e.g. "news", "localities")
	Identity  *auth.Identity // Current user (nil if unauthenticated)
	CSRFToken string         // CSRF token for forms
	Error     string         // One-shot error message shown above the form
	Data      map[string]any // Page-specific data
}

// Renderer handles template parsing and execution.
type Renderer struct {
	admin  map[string]*template.Template
	public map[string]*template.Template
}

// standaloneTemplates render as full HTML pages without the admin base
// layout (they have their own <html>, <head>, etc.).
var standaloneTemplates = map[string]bool{
	"login": true,
}

var funcMap = template.FuncMap{
	// deref safely dereferences a string pointer for use in templates.
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

// New creates a Renderer by parsing all admin and public templates from
// the embedded filesystem. Each page template is paired with its base
// layout.
func New() (*Renderer, error) {
	r := &Renderer{
		admin:  make(map[string]*template.Template),
		public: make(map[string]*template.Template),
	}
	if err := r.parseDir("templates/admin", r.admin, standaloneTemplates); err != nil {
		return nil, err
	}
	if err := r.parseDir("templates/public", r.public, nil); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) parseDir(dir string, dst map[string]*template.Template, standalone map[string]bool) error {
	entries, err := templateFS.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read templates %s: %w", dir, err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" {
			continue
		}
		tmplName := name[:len(name)-len(".html")]

		var tmpl *template.Template
		var parseErr error
		if standalone[tmplName] {
			tmpl, parseErr = template.New(name).Funcs(funcMap).ParseFS(templateFS, dir+"/"+name)
		} else {
			tmpl, parseErr = template.New("base.html").Funcs(funcMap).ParseFS(templateFS, dir+"/base.html", dir+"/"+name)
		}
		if parseErr != nil {
			return fmt.Errorf("parse template %s: %w", name, parseErr)
		}
		dst[tmplName] = tmpl
	}
	return nil
}

// Page renders an admin page with the base layout (or standalone for the
// login page). The CSRF token and identity are injected from the request
// context when not already set.
func (r *Renderer) Page(w http.ResponseWriter, req *http.Request, name string, data *PageData) {
	tmpl, ok := r.admin[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = &PageData{}
	}
	data.CSRFToken = middleware.CSRFTokenFromCtx(req.Context())
	if data.Identity == nil {
		data.Identity = middleware.IdentityFromCtx(req.Context())
	}

	execName := "base.html"
	if standaloneTemplates[name] {
		execName = name + ".html"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, execName, data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// Public renders a public page into a byte slice so the caller can both
// serve and cache it.
func (r *Renderer) Public(name string, data map[string]any) ([]byte, error) {
	tmpl, ok := r.public[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
