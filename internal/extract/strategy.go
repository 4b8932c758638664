package extract

import (
	"sort"
	"strings"
)

// span is one vocabulary occurrence found by a strategy. Offsets index
// into the scanned text.
type span struct {
	brand string // vocabulary term, original casing
	start int
	end   int
}

// Strategy finds candidate agent-name occurrences in lowercased text.
// Strategies are independent; the extractor runs them in order, pools
// their results, and deduplicates. Order matters only for traceability of
// which strategy produced a mention.
type Strategy interface {
	Name() string
	Find(lower string) []span
}

// vocabTerm pairs a vocabulary entry with its lowercased form
type vocabTerm struct {
	term  string
	lower string
}

func lowerVocab(vocabulary []string) []vocabTerm {
	terms := make([]vocabTerm, 0, len(vocabulary))
	for _, v := range vocabulary {
		terms = append(terms, vocabTerm{term: v, lower: asciiLower(v)})
	}
	return terms
}

// occurrences finds every phrase-boundary occurrence of term in lower,
// sorted by position.
func occurrences(lower, term string) []int {
	var positions []int
	for from := 0; ; {
		idx := strings.Index(lower[from:], term)
		if idx < 0 {
			break
		}
		pos := from + idx
		if boundaryAt(lower, pos, pos+len(term)) {
			positions = append(positions, pos)
		}
		from = pos + 1
	}
	return positions
}

// boundaryAt reports whether [start,end) sits on word boundaries, so
// "DST" does not match inside "midstream".
func boundaryAt(s string, start, end int) bool {
	if start > 0 && isWordByte(s[start-1]) {
		return false
	}
	if end < len(s) && isWordByte(s[end]) {
		return false
	}
	return true
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// asciiLower lowercases ASCII letters only, preserving byte offsets so
// match positions remain valid in the original text.
func asciiLower(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}

// findVocab collects occurrences of every vocabulary term in determinate
// order: ascending position, then vocabulary order for co-located terms.
func findVocab(lower string, terms []vocabTerm) []span {
	var spans []span
	order := make(map[string]int, len(terms))
	for i, t := range terms {
		order[t.term] = i
		for _, pos := range occurrences(lower, t.lower) {
			spans = append(spans, span{brand: t.term, start: pos, end: pos + len(t.lower)})
		}
	}
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return order[spans[i].brand] < order[spans[j].brand]
	})
	return spans
}

// triggerBeforeBrand matches a vocabulary term preceded by a trigger
// phrase ("transfer agent", "registrar", ...) within maxGap characters.
type triggerBeforeBrand struct {
	terms    []vocabTerm
	triggers []string
	maxGap   int
}

func (s *triggerBeforeBrand) Name() string { return "trigger_before_brand" }

func (s *triggerBeforeBrand) Find(lower string) []span {
	var out []span
	for _, sp := range findVocab(lower, s.terms) {
		from := sp.start - s.maxGap
		if from < 0 {
			from = 0
		}
		window := lower[from:sp.start]
		for _, trig := range s.triggers {
			if strings.Contains(window, trig) {
				out = append(out, sp)
				break
			}
		}
	}
	return out
}

// brandBeforeTrigger is the mirror image: the vocabulary term comes
// first, the trigger phrase follows within maxGap characters.
type brandBeforeTrigger struct {
	terms    []vocabTerm
	triggers []string
	maxGap   int
}

func (s *brandBeforeTrigger) Name() string { return "brand_before_trigger" }

func (s *brandBeforeTrigger) Find(lower string) []span {
	var out []span
	for _, sp := range findVocab(lower, s.terms) {
		to := sp.end + s.maxGap
		if to > len(lower) {
			to = len(lower)
		}
		window := lower[sp.end:to]
		for _, trig := range s.triggers {
			if strings.Contains(window, trig) {
				out = append(out, sp)
				break
			}
		}
	}
	return out
}

// directBrand matches bare vocabulary occurrences with no anchor. It runs
// last; anchored matches of the same fact win the dedup slot first.
type directBrand struct {
	terms []vocabTerm
}

func (s *directBrand) Name() string { return "direct_brand" }

func (s *directBrand) Find(lower string) []span {
	return findVocab(lower, s.terms)
}
