package localization

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed translations/*.yaml
var translationsFS embed.FS

var languages = []string{"ru", "en"}

// Service resolves dotted keys against the embedded translation files.
// Unknown languages fall back to the default one, unknown keys are
// returned as is.
type Service struct {
	defaultLang  string
	translations map[string]map[string]interface{}
}

func NewService(defaultLang string) (*Service, error) {
	s := &Service{
		defaultLang:  defaultLang,
		translations: make(map[string]map[string]interface{}),
	}

	for _, lang := range languages {
		data, err := translationsFS.ReadFile(fmt.Sprintf("translations/%s.yaml", lang))
		if err != nil {
			return nil, fmt.Errorf("read %s translations: %w", lang, err)
		}

		var translations map[string]interface{}
		if err := yaml.Unmarshal(data, &translations); err != nil {
			return nil, fmt.Errorf("parse %s translations: %w", lang, err)
		}

		s.translations[lang] = translations
	}

	if _, ok := s.translations[defaultLang]; !ok {
		return nil, fmt.Errorf("unsupported default language %q", defaultLang)
	}

	return s, nil
}

// Get retrieves a translation by key for the given language.
// Params fill {{name}} placeholders.
func (s *Service) Get(lang, key string, params map[string]interface{}) string {
	text, ok := s.lookup(lang, key).(string)
	if !ok {
		return key
	}
	return replacePlaceholders(text, params)
}

// List returns a string list stored under key, or nil.
func (s *Service) List(lang, key string) []string {
	items, ok := s.lookup(lang, key).([]interface{})
	if !ok {
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, fmt.Sprint(item))
	}
	return out
}

func (s *Service) lookup(lang, key string) interface{} {
	if lang == "" {
		lang = s.defaultLang
	}

	langTranslations, ok := s.translations[lang]
	if !ok {
		langTranslations = s.translations[s.defaultLang]
	}

	var current interface{} = langTranslations
	for _, part := range strings.Split(key, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current = m[part]
	}
	return current
}

func replacePlaceholders(text string, params map[string]interface{}) string {
	for key, value := range params {
		text = strings.ReplaceAll(text, "{{"+key+"}}", fmt.Sprint(value))
	}
	return text
}
