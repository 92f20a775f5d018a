package text

import "sort"

// Set is a keyword set
type Set map[string]struct{}

// NewSet builds a set from words
func NewSet(words ...string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Has reports membership
func (s Set) Has(word string) bool {
	_, ok := s[word]
	return ok
}

// Sorted returns the members in lexical order
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Expander enriches keyword sets with domain synonyms. A keyword that is
// either a domain keyword or one of its synonyms pulls in the whole group.
type Expander struct {
	groups [][]string
	index  map[string][]int
}

// NewExpander builds an expander from a domain-keyword -> synonyms table.
// Entries are folded and stemmed the same way keywords are.
func NewExpander(table map[string][]string) *Expander {
	e := &Expander{index: make(map[string][]int)}

	// Sort domain keys so group numbering is stable across runs
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		seen := make(map[string]bool)
		var group []string
		for _, raw := range append([]string{key}, table[key]...) {
			for _, w := range Words(Fold(raw)) {
				stem := Stem(w)
				if len(stem) < 3 || seen[stem] {
					continue
				}
				seen[stem] = true
				group = append(group, stem)
			}
		}
		if len(group) == 0 {
			continue
		}
		id := len(e.groups)
		e.groups = append(e.groups, group)
		for _, w := range group {
			e.index[w] = append(e.index[w], id)
		}
	}
	return e
}

// Expand returns keywords plus every synonym group they belong to
func (e *Expander) Expand(keywords []string) Set {
	out := NewSet(keywords...)
	for _, kw := range keywords {
		for _, id := range e.index[kw] {
			for _, w := range e.groups[id] {
				out[w] = struct{}{}
			}
		}
	}
	return out
}

// Groups returns the number of synonym groups
func (e *Expander) Groups() int {
	return len(e.groups)
}
