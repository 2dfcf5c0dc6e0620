// Package route builds candidate boat routes over the NDWI index and scores
// them for water quality and length.
package route

// Options tunes path synthesis. Zero fields fall back to the defaults.
type Options struct {
	DirectMaxPoints  int     `yaml:"direct_max_points" mapstructure:"direct_max_points"`
	QualityMaxPoints int     `yaml:"quality_max_points" mapstructure:"quality_max_points"`
	SnapTolerance    float64 `yaml:"snap_tolerance" mapstructure:"snap_tolerance"`
	BBoxPadding      float64 `yaml:"bbox_padding" mapstructure:"bbox_padding"`
	MinQuality       int     `yaml:"min_quality" mapstructure:"min_quality"`
}

// Default synthesis parameters.
const (
	DefaultDirectMaxPoints  = 5
	DefaultQualityMaxPoints = 8
	DefaultSnapTolerance    = 0.02
	DefaultBBoxPadding      = 0.01
	DefaultMinQuality       = 60
)

// DefaultOptions returns the standard synthesis parameters.
func DefaultOptions() Options {
	return Options{
		DirectMaxPoints:  DefaultDirectMaxPoints,
		QualityMaxPoints: DefaultQualityMaxPoints,
		SnapTolerance:    DefaultSnapTolerance,
		BBoxPadding:      DefaultBBoxPadding,
		MinQuality:       DefaultMinQuality,
	}
}

// withDefaults fills zero or negative fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.DirectMaxPoints <= 0 {
		o.DirectMaxPoints = d.DirectMaxPoints
	}
	if o.QualityMaxPoints <= 0 {
		o.QualityMaxPoints = d.QualityMaxPoints
	}
	if o.SnapTolerance <= 0 {
		o.SnapTolerance = d.SnapTolerance
	}
	if o.BBoxPadding <= 0 {
		o.BBoxPadding = d.BBoxPadding
	}
	if o.MinQuality <= 0 {
		o.MinQuality = d.MinQuality
	}
	return o
}
