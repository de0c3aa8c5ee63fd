package query

import (
	"reflect"
	"testing"

	"github.com/pictorapp/pictor-server/internal/domain"
)

func TestParseBasic(t *testing.T) {
	expr := Parse("blue_sky -cloud dragon")

	if !reflect.DeepEqual(expr.Required, []string{"blue_sky", "dragon"}) {
		t.Errorf("Required: got %v", expr.Required)
	}
	if !reflect.DeepEqual(expr.Excluded, []string{"cloud"}) {
		t.Errorf("Excluded: got %v", expr.Excluded)
	}
}

func TestParseNormalizes(t *testing.T) {
	expr := Parse("  Blue Sky ")
	// "Blue" and "Sky" are separate whitespace-delimited terms.
	if !reflect.DeepEqual(expr.Required, []string{"blue", "sky"}) {
		t.Errorf("Required: got %v", expr.Required)
	}

	expr = Parse("DRAGON -DRAGON")
	if !expr.Unsatisfiable() {
		t.Error("expected contradiction to be unsatisfiable")
	}
}

func TestParseRatings(t *testing.T) {
	expr := Parse("rating:safe -rating:e dragon")

	if !reflect.DeepEqual(expr.IncludeRatings, []domain.Rating{domain.RatingSafe}) {
		t.Errorf("IncludeRatings: got %v", expr.IncludeRatings)
	}
	if !reflect.DeepEqual(expr.ExcludeRatings, []domain.Rating{domain.RatingExplicit}) {
		t.Errorf("ExcludeRatings: got %v", expr.ExcludeRatings)
	}
	if !reflect.DeepEqual(expr.Required, []string{"dragon"}) {
		t.Errorf("Required: got %v", expr.Required)
	}
}

func TestParseUnknownRatingDropped(t *testing.T) {
	expr := Parse("rating:bogus")
	if !expr.Empty() {
		t.Errorf("expected empty expression, got %+v", expr)
	}
}

func TestParseDuplicatesCollapse(t *testing.T) {
	expr := Parse("a a -b -b")
	if len(expr.Required) != 1 || len(expr.Excluded) != 1 {
		t.Errorf("duplicates not collapsed: %+v", expr)
	}
}

func TestUnsatisfiableRating(t *testing.T) {
	expr := Parse("rating:s -rating:s")
	if !expr.Unsatisfiable() {
		t.Error("expected rating contradiction to be unsatisfiable")
	}
}

func TestEmpty(t *testing.T) {
	if !Parse("").Empty() {
		t.Error("empty input should produce empty expression")
	}
	if !Parse("   ").Empty() {
		t.Error("blank input should produce empty expression")
	}
	if Parse("a").Empty() {
		t.Error("non-empty input should not be empty")
	}
}
