package ndwi

// Quality scores assigned per NDWI range.
const (
	QualityNonWater  = 10 // ndwi < 0
	QualityPoor      = 30 // [0, 0.1)
	QualityModerate  = 60 // [0.1, 0.3)
	QualityGood      = 80 // [0.3, 0.5)
	QualityExcellent = 95 // >= 0.5
)

// NDWI display bands.
const (
	BandLand      = "land"
	BandPoor      = "poor"
	BandModerate  = "moderate"
	BandGood      = "good"
	BandExcellent = "excellent"
)

// ToQuality maps an NDWI value to a 0-100 water quality score.
// Lower bounds are inclusive: 0.1 is moderate, 0.5 is excellent.
func ToQuality(ndwi float64) int {
	switch {
	case ndwi < 0:
		return QualityNonWater
	case ndwi < 0.1:
		return QualityPoor
	case ndwi < 0.3:
		return QualityModerate
	case ndwi < 0.5:
		return QualityGood
	default:
		return QualityExcellent
	}
}

// Band returns the display band for an NDWI value.
func Band(ndwi float64) string {
	switch {
	case ndwi >= 0.5:
		return BandExcellent
	case ndwi >= 0.3:
		return BandGood
	case ndwi >= 0.1:
		return BandModerate
	case ndwi >= 0:
		return BandPoor
	default:
		return BandLand
	}
}
