package entity

import "strings"

// minTokenLength drops short noise tokens ("of", "a", initials) before
// computing Jaccard similarity.
const minTokenLength = 2

// Matcher decides whether two names or two addresses denote the same
// real-world entity or location.
type Matcher struct {
	// NameThreshold is the minimum Jaccard similarity for two non-equal
	// normalized names to count as a match.
	NameThreshold float64
}

// NewMatcher returns a matcher with the given fuzzy-name threshold.
func NewMatcher(threshold float64) Matcher {
	return Matcher{NameThreshold: threshold}
}

// NamesMatch reports whether two raw names refer to the same entity.
// Exact match after normalization wins; otherwise token-set Jaccard
// similarity must reach the threshold.
func (m Matcher) NamesMatch(a, b string) bool {
	na := NormalizeName(a)
	nb := NormalizeName(b)

	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}

	ta := tokenSet(na)
	tb := tokenSet(nb)
	if len(ta) == 0 || len(tb) == 0 {
		return false
	}

	return jaccard(ta, tb) >= m.NameThreshold
}

// AddressesMatch reports whether two raw addresses refer to the same
// location. Substring containment tolerates a fuller address (with a city
// or zip tail) containing a partial one.
func (m Matcher) AddressesMatch(a, b string) bool {
	na := NormalizeAddress(a)
	nb := NormalizeAddress(b)

	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}

	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

func tokenSet(val string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(val) {
		if len(tok) > minTokenLength {
			set[tok] = true
		}
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	intersection := 0
	for tok := range a {
		if b[tok] {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}
