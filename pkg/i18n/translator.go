package i18n

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Translator resolves display strings (notifier names, email subjects) by
// key for a fixed language. Hosts embedding the engine load their own YAML
// translation documents on top of the built-in defaults.
type Translator struct {
	lang         string
	translations map[string]map[string]string // lang -> key -> value
}

// NewTranslator parses one or more YAML documents of the form
//
//	en:
//	  notifiers.email.human_name: by email
//
// and returns a translator for the given language. Later documents override
// earlier ones key by key.
func NewTranslator(lang string, yamlDocs ...string) (*Translator, error) {
	if lang == "" {
		return nil, ErrLanguageRequired
	}

	translations := make(map[string]map[string]string)
	for _, doc := range yamlDocs {
		var parsed map[string]map[string]string
		if err := yaml.Unmarshal([]byte(doc), &parsed); err != nil {
			return nil, errors.Join(ErrFailedToParseYAML, err)
		}
		for docLang, keys := range parsed {
			if translations[docLang] == nil {
				translations[docLang] = make(map[string]string)
			}
			for k, v := range keys {
				translations[docLang][k] = v
			}
		}
	}

	if _, ok := translations[lang]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrLanguageNotFound, lang)
	}

	return &Translator{lang: lang, translations: translations}, nil
}

// MustNewTranslator is NewTranslator that panics on error; for built-in
// defaults that are validated at process start.
func MustNewTranslator(lang string, yamlDocs ...string) *Translator {
	t, err := NewTranslator(lang, yamlDocs...)
	if err != nil {
		panic(err)
	}
	return t
}

// T returns the translation for key, falling back to the key itself so a
// missing translation is visible rather than empty.
func (t *Translator) T(key string) string {
	if v, ok := t.translations[t.lang][key]; ok {
		return v
	}
	return key
}

// Lang returns the translator's language code.
func (t *Translator) Lang() string { return t.lang }
