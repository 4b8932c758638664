package normalize

import "strings"

// BrandRule maps entity names onto a reporting brand. A rule fires when
// the lowercased name contains any of Contains, or starts with Prefix.
type BrandRule struct {
	Brand    string
	Contains []string
	Prefix   string
}

// DefaultBrandRules is the pinned rule order. Order is part of the
// contract: a name matching two rules always resolves via the earlier
// one (so "JPMorgan Equiniti Services" is BNY Mellon, not Equiniti).
func DefaultBrandRules() []BrandRule {
	return []BrandRule{
		{Brand: "Computershare", Contains: []string{"computershare"}},
		{Brand: "State Street", Contains: []string{"state street"}},
		{Brand: "BNY Mellon", Contains: []string{"bny mellon", "pershing", "jpmorgan"}},
		{Brand: "Equiniti", Contains: []string{"equiniti"}},
		{Brand: "Fidelity", Contains: []string{"fidelity"}},
		{Brand: "Vanguard", Contains: []string{"vanguard"}},
		{Brand: "American Funds", Contains: []string{"american funds", "capital group"}},
		{Brand: "DST", Prefix: "dst "},
	}
}

// Collapser is the rule-based normalizer for already-structured registrant
// names. It is much coarser than the Canonicalizer and exists for registry
// rows where the name is clean but the legal entity fragments across
// subsidiaries.
type Collapser struct {
	rules []BrandRule
}

// NewCollapser builds a collapser; nil rules means the default order
func NewCollapser(rules []BrandRule) *Collapser {
	if rules == nil {
		rules = DefaultBrandRules()
	}
	return &Collapser{rules: rules}
}

// Collapse returns the brand for a registrant name. First matching rule
// wins; a name matching no rule keeps its original form verbatim, which
// is the deliberate fallback rather than an error.
func (c *Collapser) Collapse(name string) string {
	lower := strings.ToLower(name)

	for _, rule := range c.rules {
		for _, sub := range rule.Contains {
			if strings.Contains(lower, sub) {
				return rule.Brand
			}
		}
		if rule.Prefix != "" && strings.HasPrefix(lower, rule.Prefix) {
			return rule.Brand
		}
	}
	return name
}
