// Package uast loads tree-sitter grammars and parses source into syntax trees.
package uast

import (
	"maps"
	"slices"
	"strings"
	"sync"
	"unsafe"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	golang "github.com/alexaandru/go-sitter-forest/go"
	"github.com/alexaandru/go-sitter-forest/python"
)

// Language names.
const (
	LanguageGo     = "go"
	LanguagePython = "python"
)

// languageFuncs maps language names to their tree-sitter GetLanguage functions.
var languageFuncs = map[string]func() unsafe.Pointer{
	LanguageGo:     golang.GetLanguage,
	LanguagePython: python.GetLanguage,
}

// languageExtensions maps file extensions to language names.
var languageExtensions = map[string]string{
	".go":  LanguageGo,
	".py":  LanguagePython,
	".pyi": LanguagePython,
}

var languageCache sync.Map

// GetLanguage returns the tree-sitter Language for the given name, or nil if not supported.
func GetLanguage(name string) *sitter.Language {
	if cached, ok := languageCache.Load(name); ok {
		lang, castOK := cached.(*sitter.Language)
		if castOK {
			return lang
		}
	}

	fn, ok := languageFuncs[name]
	if !ok {
		return nil
	}

	lang := sitter.NewLanguage(fn())
	languageCache.Store(name, lang)

	return lang
}

// LanguageForExtension returns the language registered for ext (with leading dot).
func LanguageForExtension(ext string) (string, bool) {
	name, ok := languageExtensions[strings.ToLower(ext)]

	return name, ok
}

// ExtensionsFor returns the extensions registered for a language.
func ExtensionsFor(language string) []string {
	var exts []string

	for _, ext := range slices.Sorted(maps.Keys(languageExtensions)) {
		if languageExtensions[ext] == language {
			exts = append(exts, ext)
		}
	}

	return exts
}
