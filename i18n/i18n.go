// Package i18n serves the dashboard's message catalogs.
package i18n

import (
	"context"
	"embed"
	"fmt"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Default is the fallback language.
const Default = "en"

//go:embed locales/*.yaml
var localeFS embed.FS

var (
	loadOnce sync.Once
	catalogs map[string]map[string]string
	loadErr  error
)

func load() {
	catalogs = map[string]map[string]string{}
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		loadErr = err
		return
	}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".yaml") {
			continue
		}
		b, err := localeFS.ReadFile(path.Join("locales", name))
		if err != nil {
			loadErr = err
			return
		}
		m := map[string]string{}
		if err := yaml.Unmarshal(b, &m); err != nil {
			loadErr = fmt.Errorf("i18n: %s: %w", name, err)
			return
		}
		catalogs[strings.TrimSuffix(name, ".yaml")] = m
	}
}

// Err reports a catalog that failed to load; T then returns codes verbatim.
func Err() error {
	loadOnce.Do(load)
	return loadErr
}

// Supported lists the languages with a catalog.
func Supported(lang string) bool {
	loadOnce.Do(load)
	_, ok := catalogs[lang]
	return ok
}

// T translates code for lang, falling back to the default language and
// then to the code itself.
func T(lang, code string) string {
	loadOnce.Do(load)
	if m, ok := catalogs[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := catalogs[Default][code]; ok {
		return s
	}
	return code
}

// DetectLanguage picks the first supported language of an Accept-Language
// header.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		base := strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		if base != "" && Supported(base) {
			return base
		}
	}
	return Default
}

type langKey struct{}

func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

func LangFromContext(ctx context.Context) string {
	if l, ok := ctx.Value(langKey{}).(string); ok && l != "" {
		return l
	}
	return Default
}
