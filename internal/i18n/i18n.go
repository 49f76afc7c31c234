// Package i18n serves the message catalogues bundled with the binary.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed locales/*.json
var embeddedLocales embed.FS

// Locales is the bundled message catalogue, one JSON file per language.
func Locales() fs.FS {
	sub, err := fs.Sub(embeddedLocales, "locales")
	if err != nil {
		panic(err)
	}
	return sub
}

const (
	LangRU = "ru"
	LangEN = "en"
)

var requiredLanguages = []string{LangEN, LangRU}

// Manager resolves language tags and looks up messages. Each catalogue is
// merged over the default language once at load time, so a key missing from
// one language falls back to the default text.
type Manager struct {
	defaultLanguage string
	catalogues      map[string]map[string]string
	merged          map[string]map[string]string
	supported       []string
}

func NewManager(defaultLanguage string, locales fs.FS) (*Manager, error) {
	catalogues, err := loadCatalogues(locales)
	if err != nil {
		return nil, err
	}
	for _, language := range requiredLanguages {
		if _, ok := catalogues[language]; !ok {
			return nil, fmt.Errorf("required locale %q missing", language)
		}
	}

	manager := &Manager{
		defaultLanguage: LangEN,
		catalogues:      catalogues,
		merged:          make(map[string]map[string]string, len(catalogues)),
	}
	for language := range catalogues {
		manager.supported = append(manager.supported, language)
	}
	sort.Strings(manager.supported)

	if requested := normalizeLanguageTag(defaultLanguage); manager.isSupported(requested) {
		manager.defaultLanguage = requested
	}

	base := catalogues[manager.defaultLanguage]
	for language, messages := range catalogues {
		merged := make(map[string]string, len(base)+len(messages))
		for key, value := range base {
			merged[key] = value
		}
		for key, value := range messages {
			if strings.TrimSpace(value) != "" {
				merged[key] = value
			}
		}
		manager.merged[language] = merged
	}
	return manager, nil
}

func loadCatalogues(locales fs.FS) (map[string]map[string]string, error) {
	names, err := fs.Glob(locales, "*.json")
	if err != nil {
		return nil, fmt.Errorf("list locales: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no locales found")
	}

	catalogues := make(map[string]map[string]string, len(names))
	for _, name := range names {
		language := strings.ToLower(strings.TrimSuffix(name, path.Ext(name)))
		content, err := fs.ReadFile(locales, name)
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", language, err)
		}

		messages := map[string]string{}
		if err := json.Unmarshal(content, &messages); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", language, err)
		}
		if len(messages) == 0 {
			return nil, fmt.Errorf("locale %s is empty", language)
		}
		catalogues[language] = messages
	}
	return catalogues, nil
}

func (manager *Manager) DefaultLanguage() string {
	return manager.defaultLanguage
}

func (manager *Manager) SupportedLanguages() []string {
	return append([]string(nil), manager.supported...)
}

// NormalizeLanguage reduces a tag such as "ru_RU" to a supported base
// language, or the default when it is not supported.
func (manager *Manager) NormalizeLanguage(raw string) string {
	if language := normalizeLanguageTag(raw); manager.isSupported(language) {
		return language
	}
	return manager.defaultLanguage
}

// DetectFromAcceptLanguage picks the first supported language in header
// order. Quality values are ignored.
func (manager *Manager) DetectFromAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag, _, _ := strings.Cut(part, ";")
		if language := normalizeLanguageTag(tag); manager.isSupported(language) {
			return language
		}
	}
	return manager.defaultLanguage
}

// Messages returns the merged catalogue for language. Callers must not modify it.
func (manager *Manager) Messages(language string) map[string]string {
	return manager.merged[manager.NormalizeLanguage(language)]
}

// Translate returns the message for key, or key itself when no catalogue has it.
func (manager *Manager) Translate(language string, key string) string {
	if value, ok := manager.Messages(language)[key]; ok {
		return value
	}
	return key
}

func (manager *Manager) Translatef(language string, key string, args ...any) string {
	return fmt.Sprintf(manager.Translate(language, key), args...)
}

// Has reports whether key exists in the default catalogue.
func (manager *Manager) Has(key string) bool {
	_, ok := manager.catalogues[manager.defaultLanguage][key]
	return ok
}

func (manager *Manager) isSupported(language string) bool {
	_, ok := manager.catalogues[language]
	return language != "" && ok
}

func normalizeLanguageTag(raw string) string {
	language := strings.ToLower(strings.TrimSpace(raw))
	language = strings.ReplaceAll(language, "_", "-")
	language, _, _ = strings.Cut(language, "-")
	return language
}
