// Package query parses boolean tag expressions into their required and
// excluded term sets.
//
// The grammar is a whitespace-separated list of terms. A bare term requires
// the tag; a "-" prefix excludes it. "rating:x" terms filter by content
// rating instead of tag membership. There is no OR or grouping.
package query

import (
	"sort"
	"strings"

	"github.com/pictorapp/pictor-server/internal/domain"
	"github.com/pictorapp/pictor-server/internal/normalize"
)

// Term prefixes.
const (
	NegativePrefix = "-"
	RatingPrefix   = "rating:"
)

// Expression is the compiled two-set form of a tag search.
// All terms are conjunctive; a post matches when it carries every Required
// tag, none of the Excluded tags, and passes the rating filters.
type Expression struct {
	Required       []string
	Excluded       []string
	IncludeRatings []domain.Rating
	ExcludeRatings []domain.Rating
}

// Parse compiles a raw expression string. Terms are normalized with the
// same rules as stored tag names, so matching is case- and
// format-insensitive. Parse never fails: unknown ratings and empty terms
// are dropped.
func Parse(raw string) Expression {
	var expr Expression
	required := make(map[string]struct{})
	excluded := make(map[string]struct{})
	includeRatings := make(map[domain.Rating]struct{})
	excludeRatings := make(map[domain.Rating]struct{})

	for _, field := range strings.Fields(raw) {
		term := normalize.TagName(field)
		negated := false
		if rest, ok := strings.CutPrefix(term, NegativePrefix); ok {
			negated = true
			term = rest
		}
		if rest, ok := strings.CutPrefix(term, RatingPrefix); ok {
			r := ratingTerm(rest)
			if r == "" {
				continue
			}
			if negated {
				excludeRatings[r] = struct{}{}
			} else {
				includeRatings[r] = struct{}{}
			}
			continue
		}
		if term == "" {
			continue
		}
		if negated {
			excluded[term] = struct{}{}
		} else {
			required[term] = struct{}{}
		}
	}

	expr.Required = sortedKeys(required)
	expr.Excluded = sortedKeys(excluded)
	for _, r := range domain.Ratings() {
		if _, ok := includeRatings[r]; ok {
			expr.IncludeRatings = append(expr.IncludeRatings, r)
		}
		if _, ok := excludeRatings[r]; ok {
			expr.ExcludeRatings = append(expr.ExcludeRatings, r)
		}
	}
	return expr
}

// Empty reports whether the expression has no constraints at all,
// meaning every post is a candidate.
func (e Expression) Empty() bool {
	return len(e.Required) == 0 && len(e.Excluded) == 0 &&
		len(e.IncludeRatings) == 0 && len(e.ExcludeRatings) == 0
}

// Unsatisfiable reports whether the expression is a direct contradiction:
// a tag that is both required and excluded, or a rating that is both
// included and excluded. Such queries are valid and simply match nothing.
func (e Expression) Unsatisfiable() bool {
	ex := make(map[string]struct{}, len(e.Excluded))
	for _, t := range e.Excluded {
		ex[t] = struct{}{}
	}
	for _, t := range e.Required {
		if _, ok := ex[t]; ok {
			return true
		}
	}
	exr := make(map[domain.Rating]struct{}, len(e.ExcludeRatings))
	for _, r := range e.ExcludeRatings {
		exr[r] = struct{}{}
	}
	for _, r := range e.IncludeRatings {
		if _, ok := exr[r]; ok {
			return true
		}
	}
	return false
}

// ratingTerm maps a rating term to its stored code. Both the single-letter
// codes and the full names are accepted ("s" and "safe").
func ratingTerm(s string) domain.Rating {
	switch s {
	case "u", "unrated":
		return domain.RatingUnrated
	case "s", "safe":
		return domain.RatingSafe
	case "q", "questionable":
		return domain.RatingQuestionable
	case "e", "explicit":
		return domain.RatingExplicit
	default:
		return ""
	}
}

func sortedKeys(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
