package normalize

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// TaxonomyEntry is one canonical agent and its known textual variants
// (aliases, legal-suffix forms, abbreviations).
type TaxonomyEntry struct {
	Canonical string
	Variants  []string
}

// Taxonomy is the reference mapping of canonical agent names to variants.
// It is loaded once per run and read-only afterwards. Entry order follows
// the reference file, which makes fuzzy-match tie-breaking deterministic.
type Taxonomy struct {
	entries []TaxonomyEntry
}

// LoadTaxonomy reads the reference YAML. A missing or malformed file is
// fatal to the run: canonicalization determinism depends on the complete
// candidate pool, so there is no partial-taxonomy mode.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open taxonomy: %w", err)
	}
	defer func() { _ = f.Close() }()

	tax, err := ParseTaxonomy(f)
	if err != nil {
		return nil, fmt.Errorf("taxonomy %s: %w", path, err)
	}
	return tax, nil
}

// ParseTaxonomy decodes a canonical-name -> variants mapping. It goes
// through the yaml node tree instead of a map so file order survives.
func ParseTaxonomy(r io.Reader) (*Taxonomy, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping of canonical name to variants")
	}

	var entries []TaxonomyEntry
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode := root.Content[i]
		valNode := root.Content[i+1]

		var variants []string
		if err := valNode.Decode(&variants); err != nil {
			return nil, fmt.Errorf("variants for %q: %w", keyNode.Value, err)
		}
		if keyNode.Value == "" {
			return nil, fmt.Errorf("empty canonical name at line %d", keyNode.Line)
		}
		entries = append(entries, TaxonomyEntry{Canonical: keyNode.Value, Variants: variants})
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no canonical agents defined")
	}
	return &Taxonomy{entries: entries}, nil
}

// Entries returns the taxonomy in file order
func (t *Taxonomy) Entries() []TaxonomyEntry {
	return t.entries
}

// Len returns the number of canonical agents
func (t *Taxonomy) Len() int {
	return len(t.entries)
}

// CanonicalNames returns the canonical agent names in file order
func (t *Taxonomy) CanonicalNames() []string {
	names := make([]string, len(t.entries))
	for i, e := range t.entries {
		names[i] = e.Canonical
	}
	return names
}
