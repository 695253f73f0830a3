package httpserver

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/retail_shop/internal/middleware/csrf"
	"github.com/Skotchmaster/retail_shop/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// View is what every page template receives.
type View struct {
	Title string
	User  *session.Principal
	CSRF  string
	Data  any
}

type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"join":  strings.Join,
	"has": func(list []string, v string) bool {
		for _, s := range list {
			if s == v {
				return true
			}
		}
		return false
	},
}

// NewRenderer parses every page together with the shared layout.
func NewRenderer() (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, f := range files {
		name := strings.TrimSuffix(path.Base(f), ".html")
		if name == "layout" {
			continue
		}
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", f)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

func render(c echo.Context, status int, name, title string, data any) error {
	return c.Render(status, name, View{
		Title: title,
		User:  session.FromContext(c.Request().Context()),
		CSRF:  csrf.Token(c),
		Data:  data,
	})
}
