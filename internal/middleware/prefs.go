package middleware

import (
	"net/http"

	"github.com/diewo77/sp-admin/i18n"
	"github.com/diewo77/sp-admin/view"
)

const prefsMaxAge = 86400 * 30

// Prefs extracts language/theme preferences (query > cookie > header) and
// stores them in context. Query-provided prefs are persisted in cookies.
func Prefs(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := ""
		if c, err := r.Cookie("lang"); err == nil {
			lang = c.Value
		}
		if ql := r.URL.Query().Get("lang"); ql != "" && i18n.Supported(ql) {
			lang = ql
			http.SetCookie(w, &http.Cookie{Name: "lang", Value: lang, Path: "/", MaxAge: prefsMaxAge, SameSite: http.SameSiteLaxMode})
		}
		if !i18n.Supported(lang) {
			lang = i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		}

		theme := "light"
		if c, err := r.Cookie("theme"); err == nil && validTheme(c.Value) {
			theme = c.Value
		}
		if qt := r.URL.Query().Get("theme"); validTheme(qt) {
			theme = qt
			http.SetCookie(w, &http.Cookie{Name: "theme", Value: theme, Path: "/", MaxAge: prefsMaxAge, SameSite: http.SameSiteLaxMode})
		}

		ctx := i18n.WithLang(r.Context(), lang)
		ctx = view.WithTheme(ctx, theme)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func validTheme(t string) bool { return t == "light" || t == "dark" }

// LangFrom returns language preference from context or fallback.
func LangFrom(r *http.Request) string { return i18n.LangFromContext(r.Context()) }
