package analyze

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Registry errors.
var (
	// ErrDuplicateAnalyzerID is returned when registry receives duplicate IDs.
	ErrDuplicateAnalyzerID = errors.New("duplicate analyzer id")
	// ErrEmptyAnalyzerID is returned for analyzers without an ID.
	ErrEmptyAnalyzerID = errors.New("empty analyzer id")
	// ErrNoExtensions is returned for analyzers that claim no file extension.
	ErrNoExtensions = errors.New("analyzer claims no extensions")
)

// Registry stores analyzers with deterministic registration ordering and an
// extension index. Lookups are pure.
type Registry struct {
	ordered []Analyzer
	index   map[string]Analyzer
	byExt   map[string][]string
}

// NewRegistry creates a registry and registers the given analyzers in order.
func NewRegistry(analyzers ...Analyzer) (*Registry, error) {
	r := &Registry{
		index: make(map[string]Analyzer, len(analyzers)),
		byExt: make(map[string][]string),
	}

	for _, a := range analyzers {
		err := r.Register(a)
		if err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register appends an analyzer. Its extensions are indexed after every
// previously registered analyzer claiming the same extension.
func (r *Registry) Register(a Analyzer) error {
	descriptor := a.Descriptor()

	if descriptor.ID == "" {
		return ErrEmptyAnalyzerID
	}

	if _, exists := r.index[descriptor.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAnalyzerID, descriptor.ID)
	}

	exts := make([]string, 0, len(descriptor.Extensions))
	seen := make(map[string]struct{}, len(descriptor.Extensions))

	for _, raw := range descriptor.Extensions {
		ext := NormalizeExtension(raw)
		if ext == "" {
			continue
		}

		if _, dup := seen[ext]; dup {
			continue
		}

		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}

	if len(exts) == 0 {
		return fmt.Errorf("%w: %s", ErrNoExtensions, descriptor.ID)
	}

	r.index[descriptor.ID] = a
	r.ordered = append(r.ordered, a)

	for _, ext := range exts {
		r.byExt[ext] = append(r.byExt[ext], descriptor.ID)
	}

	return nil
}

// Applicable returns the IDs of analyzers claiming ext, in registration order.
// The lookup is case-insensitive and the leading dot is optional. Unknown
// extensions yield an empty slice.
func (r *Registry) Applicable(ext string) []string {
	ids := r.byExt[NormalizeExtension(ext)]

	out := make([]string, len(ids))
	copy(out, ids)

	return out
}

// IsApplicable reports whether analyzer id claims ext.
func (r *Registry) IsApplicable(id, ext string) bool {
	for _, candidate := range r.byExt[NormalizeExtension(ext)] {
		if candidate == id {
			return true
		}
	}

	return false
}

// Analyzers returns all analyzers in registration order.
func (r *Registry) Analyzers() []Analyzer {
	out := make([]Analyzer, len(r.ordered))
	copy(out, r.ordered)

	return out
}

// IDs returns all analyzer IDs in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.ordered))
	for _, a := range r.ordered {
		ids = append(ids, a.Descriptor().ID)
	}

	return ids
}

// Lookup returns the analyzer registered under id.
func (r *Registry) Lookup(id string) (Analyzer, bool) {
	a, ok := r.index[id]

	return a, ok
}

// Extensions returns every claimed extension, sorted by first registration.
func (r *Registry) Extensions() []string {
	var out []string

	seen := make(map[string]struct{})

	for _, a := range r.ordered {
		for _, raw := range a.Descriptor().Extensions {
			ext := NormalizeExtension(raw)
			if _, ok := seen[ext]; ok || ext == "" {
				continue
			}

			seen[ext] = struct{}{}
			out = append(out, ext)
		}
	}

	return out
}

// NormalizeExtension lower-cases ext and ensures a leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}

	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	return ext
}

// ExtensionOf returns the lower-cased extension of path, including the dot.
func ExtensionOf(path string) string {
	return NormalizeExtension(filepath.Ext(path))
}
