package route

// Path quality ratings.
const (
	RatingExcellent = "excellent"
	RatingGood      = "good"
	RatingModerate  = "moderate"
	RatingPoor      = "poor"
)

// Rate buckets an average path quality for display.
func Rate(quality int) string {
	switch {
	case quality >= 80:
		return RatingExcellent
	case quality >= 60:
		return RatingGood
	case quality >= 40:
		return RatingModerate
	default:
		return RatingPoor
	}
}
