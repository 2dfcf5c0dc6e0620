package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lake-route/internal/ndwi"
)

// shoreIndex lays four samples along a short east-west transect.
func shoreIndex() *ndwi.Index {
	return ndwi.NewIndex([]ndwi.Sample{
		ndwi.NewSample(0, 0, 0.6),          // q95
		ndwi.NewSample(0.001, 0, 0.05),     // q30
		ndwi.NewSample(0.002, 0, 0.4),      // q80
		ndwi.NewSample(0.001, 0.0005, 0.7), // q95
	})
}

func coord(lng, lat float64) ndwi.Coordinate {
	return ndwi.Coordinate{Lng: lng, Lat: lat}
}

func TestDirectPath(t *testing.T) {
	s := NewSynthesizer(shoreIndex(), Options{})

	path := s.DirectPath(coord(0, 0), coord(0.002, 0))

	assert.Equal(t, Path{
		coord(0, 0),
		coord(0, 0),
		coord(0.001, 0),
		coord(0.002, 0),
		coord(0.002, 0),
	}, path)
}

func TestDirectPath_NoDuplicateIntermediates(t *testing.T) {
	ix := ndwi.NewIndex([]ndwi.Sample{ndwi.NewSample(0.5, 0.5, 0.2)})
	s := NewSynthesizer(ix, Options{DirectMaxPoints: 9})

	path := s.DirectPath(coord(0.49, 0.49), coord(0.51, 0.51))

	require.Len(t, path, 3)
	assert.Equal(t, coord(0.5, 0.5), path[1])
}

func TestDirectPath_ZeroLength(t *testing.T) {
	s := NewSynthesizer(shoreIndex(), Options{})
	c := coord(0.001, 0)

	assert.Equal(t, Path{c, c}, s.DirectPath(c, c))
}

func TestDirectPath_NoSamplesInReach(t *testing.T) {
	s := NewSynthesizer(shoreIndex(), Options{})

	path := s.DirectPath(coord(5, 5), coord(6, 6))
	assert.Equal(t, Path{coord(5, 5), coord(6, 6)}, path)
}

func TestQualityPath(t *testing.T) {
	s := NewSynthesizer(shoreIndex(), Options{})

	path := s.QualityPath(coord(0, 0), coord(0.002, 0))

	// Low-quality (0.001, 0) is filtered out; the rest are ordered by
	// distance from start rather than by quality.
	assert.Equal(t, Path{
		coord(0, 0),
		coord(0, 0),
		coord(0.001, 0.0005),
		coord(0.002, 0),
		coord(0.002, 0),
	}, path)
}

func TestQualityPath_KeepsTopN(t *testing.T) {
	ix := ndwi.NewIndex([]ndwi.Sample{
		ndwi.NewSample(0.003, 0, 0.2), // q60
		ndwi.NewSample(0.002, 0, 0.9), // q95
		ndwi.NewSample(0.001, 0, 0.4), // q80
	})
	s := NewSynthesizer(ix, Options{QualityMaxPoints: 2})

	path := s.QualityPath(coord(0, 0), coord(0.004, 0))

	assert.Equal(t, Path{
		coord(0, 0),
		coord(0.001, 0),
		coord(0.002, 0),
		coord(0.004, 0),
	}, path)
}

func TestQualityPath_CollapsesSharedCoordinates(t *testing.T) {
	ix := ndwi.NewIndex([]ndwi.Sample{
		ndwi.NewSample(0.001, 0, 0.6),  // q95
		ndwi.NewSample(0.001, 0, 0.7),  // q95, same spot
		ndwi.NewSample(0.0015, 0, 0.4), // q80
	})
	s := NewSynthesizer(ix, Options{QualityMaxPoints: 2})

	path := s.QualityPath(coord(0, 0), coord(0.002, 0))

	assert.Equal(t, Path{
		coord(0, 0),
		coord(0.001, 0),
		coord(0.0015, 0),
		coord(0.002, 0),
	}, path, "the duplicate does not take a top-n slot")

	// No zero-length segment inflates the average.
	eval := NewScorer(ix).Score(path)
	assert.Equal(t, 85, eval.Quality)
	assert.InDelta(t, 0.002, eval.Distance, 1e-12)
}

func TestQualityPath_RespectsBoundingBox(t *testing.T) {
	ix := ndwi.NewIndex([]ndwi.Sample{
		ndwi.NewSample(0.5, 0.5, 0.9),    // far outside
		ndwi.NewSample(0.011, 0.0, 0.9),  // inside the 0.01 padding
		ndwi.NewSample(0.0, 0.0125, 0.9), // just outside the padding
	})
	s := NewSynthesizer(ix, Options{})

	path := s.QualityPath(coord(0, 0), coord(0.002, 0))

	assert.Equal(t, Path{coord(0, 0), coord(0.011, 0), coord(0.002, 0)}, path)
}

func TestQualityPath_EmptyCandidates(t *testing.T) {
	s := NewSynthesizer(ndwi.Empty(), Options{})

	assert.Equal(t, Path{coord(0, 0), coord(1, 1)}, s.QualityPath(coord(0, 0), coord(1, 1)))
}

func TestOptions_Defaults(t *testing.T) {
	o := Options{DirectMaxPoints: 2}.withDefaults()

	assert.Equal(t, 2, o.DirectMaxPoints)
	assert.Equal(t, DefaultQualityMaxPoints, o.QualityMaxPoints)
	assert.Equal(t, DefaultSnapTolerance, o.SnapTolerance)
	assert.Equal(t, DefaultBBoxPadding, o.BBoxPadding)
	assert.Equal(t, DefaultMinQuality, o.MinQuality)
}
