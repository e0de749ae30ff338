package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/diewo77/sp-admin/view"
)

const flashCookie = "flash"

// SetFlash stores a toast for the next page. code is a catalog key, kept
// untranslated so the next page renders it in its own language.
func SetFlash(w http.ResponseWriter, level, code string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(level + ":" + code),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

type flashKey struct{}

// Flash consumes the flash cookie of a request and exposes it through
// FlashFrom.
func Flash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(flashCookie)
		if err == nil && c.Value != "" {
			http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})
			if f, ok := decodeFlash(c.Value); ok {
				r = r.WithContext(context.WithValue(r.Context(), flashKey{}, f))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func decodeFlash(raw string) (view.Flash, bool) {
	v, err := url.QueryUnescape(raw)
	if err != nil {
		return view.Flash{}, false
	}
	level, code, ok := strings.Cut(v, ":")
	if !ok || code == "" {
		return view.Flash{}, false
	}
	return view.Flash{Level: level, Code: code}, true
}

// FlashFrom returns the flash consumed for r.
func FlashFrom(r *http.Request) (view.Flash, bool) {
	f, ok := r.Context().Value(flashKey{}).(view.Flash)
	return f, ok
}
