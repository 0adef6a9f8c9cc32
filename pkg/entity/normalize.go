// Package entity implements the record-linkage core: name and address
// normalization, fuzzy matching, cross-dataset linking, ownership-network
// construction, rapid-formation detection, and composite risk scoring.
//
// Every operation in this package is pure and side-effect free: identical
// inputs always produce identical outputs, input collections are never
// mutated, and no function returns an error. Missing or malformed fields
// degrade to "no match" or "no contribution" rather than failing, which
// means callers cannot distinguish absent data from absent signal. That
// trade-off is deliberate; do not "fix" it by surfacing errors here.
package entity

import (
	"regexp"
	"strings"
)

var (
	nameCharRegex    = regexp.MustCompile(`[^a-z0-9\s]+`)
	addressPunctuation = regexp.MustCompile(`[.,#]+`)
	unitDesignator   = regexp.MustCompile(`\b(?:unit|suite|ste|apt|apartment|floor|fl)\s+[0-9]+[a-z]?\b`)

	// Legal-entity suffixes removed as whole words during name normalization.
	nameSuffixNoise = map[string]bool{
		"llc":         true,
		"inc":         true,
		"corp":        true,
		"corporation": true,
		"company":     true,
		"co":          true,
		"limited":     true,
		"ltd":         true,
		"lp":          true,
		"llp":         true,
		"pllc":        true,
	}

	streetTypeNoise = map[string]bool{
		"street":    true,
		"st":        true,
		"avenue":    true,
		"ave":       true,
		"road":      true,
		"rd":        true,
		"drive":     true,
		"dr":        true,
		"lane":      true,
		"ln":        true,
		"court":     true,
		"ct":        true,
		"boulevard": true,
		"blvd":      true,
		"way":       true,
		"circle":    true,
		"cir":       true,
		"place":     true,
		"pl":        true,
	}

	directionalNoise = map[string]bool{
		"north": true,
		"south": true,
		"east":  true,
		"west":  true,
		"n":     true,
		"s":     true,
		"e":     true,
		"w":     true,
	}
)

// NormalizeName canonicalizes an entity or owner name for comparison:
// lower-case, alphanumerics only, legal-entity suffixes dropped as whole
// words, whitespace collapsed. Empty input yields an empty string.
func NormalizeName(name string) string {
	if name == "" {
		return ""
	}

	val := strings.ToLower(name)
	val = nameCharRegex.ReplaceAllString(val, "")

	parts := make([]string, 0)
	for _, part := range strings.Fields(val) {
		if !nameSuffixNoise[part] {
			parts = append(parts, part)
		}
	}

	return strings.Join(parts, " ")
}

// NormalizeAddress canonicalizes a street address for comparison:
// lower-case, punctuation stripped, unit/suite designators with their
// numbers removed, street-type and directional words dropped as whole
// words. Empty input yields an empty string.
func NormalizeAddress(address string) string {
	if address == "" {
		return ""
	}

	val := strings.ToLower(address)
	val = addressPunctuation.ReplaceAllString(val, " ")
	val = strings.Join(strings.Fields(val), " ")
	val = unitDesignator.ReplaceAllString(val, " ")

	parts := make([]string, 0)
	for _, part := range strings.Fields(val) {
		if streetTypeNoise[part] || directionalNoise[part] {
			continue
		}
		parts = append(parts, part)
	}

	return strings.Join(parts, " ")
}
