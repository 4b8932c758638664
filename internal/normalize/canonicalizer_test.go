package normalize

import (
	"strings"
	"testing"

	"github.com/renwave/tashare/internal/model"
)

func testTaxonomy(t *testing.T, yml string) *Taxonomy {
	t.Helper()
	tax, err := ParseTaxonomy(strings.NewReader(yml))
	if err != nil {
		t.Fatalf("parse taxonomy: %v", err)
	}
	return tax
}

func newTestCanonicalizer(t *testing.T, yml string, threshold float64) *Canonicalizer {
	t.Helper()
	cfg := model.DefaultConfig().Normalize
	cfg.SimilarityThreshold = threshold
	return NewCanonicalizer(testTaxonomy(t, yml), cfg)
}

const agentsYML = `
Computershare Trust Company, N.A.:
  - Computershare
  - Computershare Trust Co
  - Computershare Investor Services
Broadridge Corporate Issuer Solutions, LLC:
  - Broadridge
  - Broadridge Corporate Issuer Solutions
Equiniti Trust Company:
  - Equiniti
  - EQ Shareowner Services
`

func TestCanonicalize_ExactVariant(t *testing.T) {
	c := newTestCanonicalizer(t, agentsYML, 80)

	name, score := c.Canonicalize("Computershare Trust Co")
	if name != "Computershare Trust Company, N.A." {
		t.Errorf("expected canonical owner, got %q", name)
	}
	if score != 100 {
		t.Errorf("expected score 100 for exact variant, got %v", score)
	}
}

func TestCanonicalize_Deterministic(t *testing.T) {
	c := newTestCanonicalizer(t, agentsYML, 80)

	n1, s1 := c.Canonicalize("Computershare Trust Co")
	n2, s2 := c.Canonicalize("Computershare Trust Co")
	if n1 != n2 || s1 != s2 {
		t.Errorf("canonicalization not deterministic: (%q,%v) vs (%q,%v)", n1, s1, n2, s2)
	}
}

func TestCanonicalize_TooShort(t *testing.T) {
	c := newTestCanonicalizer(t, agentsYML, 80)

	for _, raw := range []string{"", "  ", "ab", " a "} {
		name, score := c.Canonicalize(raw)
		if name != model.UnknownAgent || score != 0 {
			t.Errorf("Canonicalize(%q) = (%q,%v), want (UNKNOWN,0)", raw, name, score)
		}
	}
}

func TestCanonicalize_ThresholdBoundary(t *testing.T) {
	// "abcdefghij" with two substituted characters scores exactly 80.0
	c := newTestCanonicalizer(t, "Alpha Agent:\n  - abcdefghij\n", 80)

	name, score := c.Canonicalize("abcdefghXY")
	if name != "Alpha Agent" {
		t.Errorf("score equal to threshold must be accepted, got %q (score %v)", name, score)
	}
	if score != 80 {
		t.Errorf("expected score exactly 80, got %v", score)
	}
}

func TestCanonicalize_BelowThreshold(t *testing.T) {
	// one substitution in a 4-char candidate scores 75
	c := newTestCanonicalizer(t, "Alpha Agent:\n  - abcd\n", 80)

	name, score := c.Canonicalize("abcX")
	if name != model.UnknownAgent || score != 0 {
		t.Errorf("expected UNKNOWN below threshold, got (%q,%v)", name, score)
	}
}

func TestCanonicalize_TieBreaksByPoolOrder(t *testing.T) {
	yml := `
Alpha Transfer:
  - agent one
Beta Transfer:
  - agent onx
`
	c := newTestCanonicalizer(t, yml, 80)

	// "agent onz" is one substitution from both candidates; the earlier
	// taxonomy entry must win every run.
	for i := 0; i < 20; i++ {
		name, _ := c.Canonicalize("agent onz")
		if name != "Alpha Transfer" {
			t.Fatalf("tie resolved to %q, want earliest candidate Alpha Transfer", name)
		}
	}
}

func TestCanonicalize_RecordsUnknownForReview(t *testing.T) {
	c := newTestCanonicalizer(t, agentsYML, 80)

	c.Canonicalize("Acme Totally Unrelated Services")
	c.Canonicalize("acme totally unrelated services") // case-insensitive dup
	c.Canonicalize("Another Mystery Registrar Ltd")

	unknown := c.Unknown()
	if len(unknown) != 2 {
		t.Fatalf("expected 2 review entries, got %d: %v", len(unknown), unknown)
	}
	if unknown[0] != "Acme Totally Unrelated Services" {
		t.Errorf("expected first-seen order, got %v", unknown)
	}

	// Too-short inputs are rejected before matching and not reviewable
	c.Canonicalize("ab")
	if len(c.Unknown()) != 2 {
		t.Error("short input should not land on the review list")
	}
}

func TestLoadTaxonomy_PreservesOrder(t *testing.T) {
	tax := testTaxonomy(t, agentsYML)

	entries := tax.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Canonical != "Computershare Trust Company, N.A." ||
		entries[2].Canonical != "Equiniti Trust Company" {
		t.Errorf("file order not preserved: %+v", entries)
	}
	if len(entries[0].Variants) != 3 {
		t.Errorf("expected 3 variants, got %v", entries[0].Variants)
	}
}

func TestParseTaxonomy_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"not-mapping": "- a\n- b\n",
		"bad-variant": "Agent:\n  nested: map\n",
	}
	for name, yml := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseTaxonomy(strings.NewReader(yml)); err == nil {
				t.Error("expected error for malformed taxonomy")
			}
		})
	}
}
