// Package normalize provides canonical tag name normalization.
package normalize

import (
	"regexp"
	"strings"
)

var (
	// Matches whitespace runs (for replacement with underscores).
	whitespaceRe = regexp.MustCompile(`\s+`)
	// Matches characters outside the tag alphabet.
	invalidCharRe = regexp.MustCompile(`[^a-z0-9_:().-]`)
	// Matches multiple consecutive underscores.
	multiUnderscoreRe = regexp.MustCompile(`_+`)
)

// TagName converts user input to the canonical tag form used for storage
// and search matching. Normalization is idempotent: applying it to an
// already-normalized name is a no-op.
//
// Rules:
//  1. Trim whitespace and lowercase
//  2. Replace interior whitespace with underscores
//  3. Drop characters outside [a-z0-9_:().-]
//  4. Collapse repeated underscores
//  5. Trim leading/trailing underscores
//
// Examples:
//
//	"Blue Sky"     → "blue_sky"
//	"BLUE_SKY"     → "blue_sky"
//	"  blue sky  " → "blue_sky"
//	"rating:safe"  → "rating:safe"
func TagName(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = whitespaceRe.ReplaceAllString(s, "_")
	s = invalidCharRe.ReplaceAllString(s, "")
	s = multiUnderscoreRe.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// TagNames normalizes a slice of names, dropping entries that normalize to
// the empty string and de-duplicating while preserving first-seen order.
func TagNames(inputs []string) []string {
	seen := make(map[string]struct{}, len(inputs))
	out := make([]string, 0, len(inputs))
	for _, in := range inputs {
		n := TagName(in)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
