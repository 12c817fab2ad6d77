package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed locales/*.json
var localesFS embed.FS

// DefaultLanguage is used whenever a key or language is missing.
const DefaultLanguage = "en"

// Localizer handles translation for different languages.
type Localizer struct {
	translations map[string]map[string]string
	mu           sync.RWMutex
}

// NewLocalizer creates a new Localizer instance and loads all translations.
func NewLocalizer() (*Localizer, error) {
	locale := &Localizer{
		translations: make(map[string]map[string]string),
	}

	entries, err := localesFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to list locales: %w", err)
	}

	for _, entry := range entries {
		lang := strings.TrimSuffix(entry.Name(), ".json")
		if err = locale.loadLanguage(lang); err != nil {
			return nil, fmt.Errorf("failed to load language %s: %w", lang, err)
		}
	}

	if _, ok := locale.translations[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("default language %s is not bundled", DefaultLanguage)
	}

	return locale, nil
}

// loadLanguage loads translations for a specific language from embedded JSON files.
func (l *Localizer) loadLanguage(lang string) error {
	filename := fmt.Sprintf("locales/%s.json", lang)
	data, err := localesFS.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read locale file %s: %w", filename, err)
	}

	var translations map[string]string
	if err = json.Unmarshal(data, &translations); err != nil {
		return fmt.Errorf("failed to unmarshal locale file %s: %w", filename, err)
	}

	l.mu.Lock()
	l.translations[lang] = translations
	l.mu.Unlock()

	return nil
}

// Languages returns the bundled language codes.
func (l *Localizer) Languages() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	langs := make([]string, 0, len(l.translations))
	for lang := range l.translations {
		langs = append(langs, lang)
	}
	return langs
}

// Get returns the translation for the given key in the specified language.
// If the translation is not found, it returns the key itself.
func (l *Localizer) Get(lang, key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if langTranslations, ok := l.translations[lang]; ok {
		if translation, exists := langTranslations[key]; exists {
			return translation
		}
	}

	// Fallback to English if translation not found
	if lang != DefaultLanguage {
		if enTranslations, ok := l.translations[DefaultLanguage]; ok {
			if translation, exists := enTranslations[key]; exists {
				return translation
			}
		}
	}

	return key
}

// GetWithData returns the translation for the given key with placeholder replacement.
// Example: GetWithData("en", "phone.ask", map[string]interface{}{"name": "Alex"}).
func (l *Localizer) GetWithData(lang, key string, data map[string]interface{}) string {
	translation := l.Get(lang, key)

	for k, v := range data {
		translation = strings.ReplaceAll(translation, "{"+k+"}", fmt.Sprintf("%v", v))
	}

	return translation
}

// NormalizeLanguageCode maps codes like "en-ZA" to a bundled language, defaulting to English.
func (l *Localizer) NormalizeLanguageCode(code string) string {
	const langCodeShortLength = 2
	if len(code) < langCodeShortLength {
		return DefaultLanguage
	}

	short := strings.ToLower(code[:langCodeShortLength])

	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, ok := l.translations[short]; ok {
		return short
	}
	return DefaultLanguage
}
