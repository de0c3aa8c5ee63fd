package domain

// Rating is the content rating attached to every post.
// Stored as a single-letter code; posts start out unrated.
type Rating string

// Content ratings, ordered from least to most restricted.
const (
	RatingUnrated      Rating = "u"
	RatingSafe         Rating = "s"
	RatingQuestionable Rating = "q"
	RatingExplicit     Rating = "e"
)

// Ratings lists all valid rating codes.
func Ratings() []Rating {
	return []Rating{RatingUnrated, RatingSafe, RatingQuestionable, RatingExplicit}
}

// ParseRating maps a stored code to a Rating, defaulting to unrated.
func ParseRating(code string) Rating {
	switch Rating(code) {
	case RatingSafe, RatingQuestionable, RatingExplicit:
		return Rating(code)
	default:
		return RatingUnrated
	}
}

// Valid reports whether the rating is a known code.
func (r Rating) Valid() bool {
	switch r {
	case RatingUnrated, RatingSafe, RatingQuestionable, RatingExplicit:
		return true
	}
	return false
}

// String returns the human-readable rating name.
func (r Rating) String() string {
	switch r {
	case RatingSafe:
		return "Safe"
	case RatingQuestionable:
		return "Questionable"
	case RatingExplicit:
		return "Explicit"
	default:
		return "Unrated"
	}
}
