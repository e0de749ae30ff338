// Package view renders the embedded html/template pages. Every page is
// parsed together with layout.html and the shared partials; the parsed set
// is cached and cloned per request so the request-bound funcs (t, lang,
// can) see the right request.
package view

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/diewo77/sp-admin/auth"
	"github.com/diewo77/sp-admin/i18n"
	"github.com/diewo77/sp-admin/internal/format"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Context key for theme
type themeKey struct{}

// WithTheme returns a new context with the given theme.
func WithTheme(ctx context.Context, theme string) context.Context {
	return context.WithValue(ctx, themeKey{}, theme)
}

// ThemeFromContext retrieves the theme from context, defaulting to "light".
func ThemeFromContext(ctx context.Context) string {
	if theme, ok := ctx.Value(themeKey{}).(string); ok {
		return theme
	}
	return "light"
}

// Flash is a one-shot toast carried across a redirect.
type Flash struct {
	Level string
	Code  string
}

var (
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}

	devMode bool

	langResolver  = func(r *http.Request) string { return i18n.LangFromContext(r.Context()) }
	themeResolver = func(r *http.Request) string { return ThemeFromContext(r.Context()) }
	flashResolver = func(*http.Request) (Flash, bool) { return Flash{}, false }
	// canResolver lets templates hide navigation the admin may not enter.
	canResolver func(*http.Request, string, string) bool
)

// SetDevMode disables the template cache.
func SetDevMode(dev bool) { devMode = dev }

// SetLangResolver allows the host app to provide a custom language resolver.
func SetLangResolver(f func(*http.Request) string) {
	if f != nil {
		langResolver = f
	}
}

// SetThemeResolver allows the host app to provide a custom theme resolver.
func SetThemeResolver(f func(*http.Request) string) {
	if f != nil {
		themeResolver = f
	}
}

// SetFlashResolver provides the pending flash of a request.
func SetFlashResolver(f func(*http.Request) (Flash, bool)) {
	if f != nil {
		flashResolver = f
	}
}

// SetCanResolver sets a callback used by templates to check permissions.
func SetCanResolver(f func(*http.Request, string, string) bool) {
	if f != nil {
		canResolver = f
	}
}

// Static serves the embedded stylesheet and images under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}

// ResetForTests clears the template cache.
func ResetForTests() {
	tplCache.Lock()
	tplCache.m = map[string]*template.Template{}
	tplCache.Unlock()
}

// baseFuncs are the request-independent helpers; request-bound entries are
// placeholders replaced by Funcs.
func baseFuncs() template.FuncMap {
	return template.FuncMap{
		"t":     func(code string) string { return code },
		"lang":  func() string { return i18n.Default },
		"theme": func() string { return "light" },
		"can":   func(string, string) bool { return false },
		"year":  func() int { return time.Now().Year() },
		// dict creates a map from key-value pairs for passing to sub-templates.
		// Usage: {{ template "partial" (dict "Key1" val1 "Key2" val2) }}
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
		// rich renders editor HTML after sanitizing it.
		"rich": func(s string) template.HTML { return template.HTML(format.SafeHTML(s)) },
		"add":  func(a, b int) int { return a + b },
	}
}

// Funcs returns the func map bound to r.
func Funcs(r *http.Request) template.FuncMap {
	lang := langResolver(r)
	theme := themeResolver(r)
	return template.FuncMap{
		"t":     func(code string) string { return i18n.T(lang, code) },
		"lang":  func() string { return lang },
		"theme": func() string { return theme },
		"can": func(resource, action string) bool {
			if canResolver == nil {
				return false
			}
			return canResolver(r, resource, action)
		},
	}
}

func parse(name string) (*template.Template, error) {
	content, err := fs.ReadFile(templateFS, "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("view: %s: %w", name, err)
	}
	// Full documents (no layout) are parsed alone.
	if bytes.Contains(bytes.ToLower(content), []byte("<!doctype")) {
		return template.New(name).Funcs(baseFuncs()).Parse(string(content))
	}
	partials, err := fs.Glob(templateFS, "templates/partials/*.html")
	if err != nil {
		return nil, err
	}
	files := append([]string{"templates/layout.html", "templates/" + name}, partials...)
	return template.New("layout.html").Funcs(baseFuncs()).ParseFS(templateFS, files...)
}

func lookup(name string) (*template.Template, error) {
	if !devMode {
		tplCache.RLock()
		t, ok := tplCache.m[name]
		tplCache.RUnlock()
		if ok {
			return t, nil
		}
	}
	t, err := parse(name)
	if err != nil {
		return nil, err
	}
	if !devMode {
		tplCache.Lock()
		tplCache.m[name] = t
		tplCache.Unlock()
	}
	return t, nil
}

// Render executes page name with status 200.
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	return RenderStatus(w, r, http.StatusOK, name, data)
}

// RenderStatus executes page name into a buffer and writes it with status.
// Nothing is written when execution fails.
func RenderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["Year"]; !exists {
		data["Year"] = time.Now().Year()
	}
	if _, exists := data["IsLoggedIn"]; !exists {
		sess, loggedIn := auth.FromContext(r.Context())
		data["IsLoggedIn"] = loggedIn
		data["Session"] = sess
	}
	if _, exists := data["Flash"]; !exists {
		if f, ok := flashResolver(r); ok {
			data["Flash"] = f
		}
	}
	if _, exists := data["Path"]; !exists {
		data["Path"] = r.URL.Path
	}

	base, err := lookup(name)
	if err != nil {
		return err
	}
	t, err := base.Clone()
	if err != nil {
		return err
	}
	t = t.Funcs(Funcs(r))

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Errorf("view: execute %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}
