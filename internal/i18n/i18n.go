// Package i18n serves the UI translation catalogs from an embedded
// filesystem, restricted to a fixed allow-list of languages.
package i18n

import (
	"embed"
	"errors"
	"fmt"
)

//go:embed locales/*.json
var localesFS embed.FS

var ErrUnsupportedLanguage = errors.New("unsupported language")

var supported = map[string]bool{
	"en": true,
	"fr": true,
}

// Supported reports whether lang is on the allow-list. Only exact
// lowercase codes match.
func Supported(lang string) bool { return supported[lang] }

// Catalog returns the raw JSON catalog for lang.
func Catalog(lang string) ([]byte, error) {
	if !Supported(lang) {
		return nil, ErrUnsupportedLanguage
	}
	data, err := localesFS.ReadFile(fmt.Sprintf("locales/%s.json", lang))
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", lang, err)
	}
	return data, nil
}
