// Package i18n provides a minimal YAML-backed translator for the engine's
// user-facing strings: notifier display names and email subjects.
//
// It is deliberately small: a flat key->string table per language, merged
// from one or more YAML documents, with the key itself as the fallback so
// missing translations surface in the UI instead of rendering empty.
package i18n
