package i18n

import "errors"

var (
	// ErrLanguageRequired is returned when no language code is provided.
	ErrLanguageRequired = errors.New("language code is required")

	// ErrLanguageNotFound is returned when no translations exist for the
	// requested language.
	ErrLanguageNotFound = errors.New("no translations for language")

	// ErrFailedToParseYAML is returned when a translation document is not
	// valid YAML of the expected shape.
	ErrFailedToParseYAML = errors.New("failed to parse translations YAML")
)
