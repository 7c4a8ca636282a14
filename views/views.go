package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"path"
	"strings"

	"notekeeper/i18n"

	"github.com/gorilla/csrf"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer holds one parsed template set per page, each joined with the
// shared layout.
type Renderer struct {
	AppName string
	pages   map[string]*template.Template
}

// placeholder funcs so pages parse; Render swaps in the per-request ones.
var baseFuncs = template.FuncMap{
	"T": func(key string) string { return key },
}

func New(appName string) (*Renderer, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	pages := map[string]*template.Template{}
	for _, page := range names {
		if path.Base(page) == "layout.html" {
			continue
		}
		t, err := template.New(path.Base(page)).Funcs(baseFuncs).ParseFS(templateFS, "templates/layout.html", page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		pages[strings.TrimSuffix(path.Base(page), ".html")] = t
	}
	return &Renderer{AppName: appName, pages: pages}, nil
}

// Render executes page with data and writes it with status. AppName, Lang
// and csrfField are added to data.
func (v *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]any) {
	base, ok := v.pages[page]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	lang := i18n.DetectLanguage(r)
	tmpl, err := base.Clone()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	tmpl.Funcs(template.FuncMap{
		"T": func(key string) string { return i18n.T(lang, key) },
	})

	if data == nil {
		data = map[string]any{}
	}
	data["AppName"] = v.AppName
	data["Lang"] = lang
	data["csrfField"] = csrf.TemplateField(r)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Printf("render %s: %v", page, err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
