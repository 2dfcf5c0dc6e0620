package route

import (
	"cmp"
	"math"
	"slices"

	"github.com/sells-group/lake-route/internal/ndwi"
)

// Path is an ordered sequence of coordinates from start to end.
type Path []ndwi.Coordinate

// Synthesizer builds candidate paths whose intermediate points are snapped to
// NDWI samples.
type Synthesizer struct {
	index *ndwi.Index
	opts  Options
}

// NewSynthesizer creates a Synthesizer over ix.
func NewSynthesizer(ix *ndwi.Index, opts Options) *Synthesizer {
	return &Synthesizer{index: ix, opts: opts.withDefaults()}
}

// DirectPath follows the straight line from start to end, snapping evenly
// spaced targets at t = i/(n+1) to the nearest sample within the snap
// tolerance. A zero-length query yields [start, end].
func (s *Synthesizer) DirectPath(start, end ndwi.Coordinate) Path {
	dLng := end.Lng - start.Lng
	dLat := end.Lat - start.Lat
	if math.Sqrt(dLng*dLng+dLat*dLat) == 0 {
		return Path{start, end}
	}

	n := s.opts.DirectMaxPoints
	path := Path{start}
	var seen []ndwi.Coordinate
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n+1)
		target := ndwi.Coordinate{
			Lng: start.Lng + dLng*t,
			Lat: start.Lat + dLat*t,
		}

		nearest, ok := s.index.FindNearest(target, s.opts.SnapTolerance)
		if !ok {
			continue
		}
		c := nearest.Coordinate()
		if slices.Contains(seen, c) {
			continue
		}
		seen = append(seen, c)
		path = append(path, c)
	}
	return append(path, end)
}

// QualityPath visits the best samples inside the padded start/end bounding box.
// Candidates at or above the minimum quality are ranked by quality, samples
// sharing a coordinate collapse to their best-ranked entry, the top n are
// kept, and then ordered by distance from start so the path follows the
// direction of travel.
func (s *Synthesizer) QualityPath(start, end ndwi.Coordinate) Path {
	pad := s.opts.BBoxPadding
	minLng := math.Min(start.Lng, end.Lng) - pad
	maxLng := math.Max(start.Lng, end.Lng) + pad
	minLat := math.Min(start.Lat, end.Lat) - pad
	maxLat := math.Max(start.Lat, end.Lat) + pad

	candidates := s.index.Filter(func(p ndwi.Sample) bool {
		return p.Longitude >= minLng && p.Longitude <= maxLng &&
			p.Latitude >= minLat && p.Latitude <= maxLat &&
			p.Quality >= s.opts.MinQuality
	})

	slices.SortStableFunc(candidates, func(a, b ndwi.Sample) int {
		return cmp.Compare(b.Quality, a.Quality)
	})
	candidates = distinct(candidates)
	if len(candidates) > s.opts.QualityMaxPoints {
		candidates = candidates[:s.opts.QualityMaxPoints]
	}
	slices.SortStableFunc(candidates, func(a, b ndwi.Sample) int {
		return cmp.Compare(start.DistanceTo(a.Coordinate()), start.DistanceTo(b.Coordinate()))
	})

	path := make(Path, 0, len(candidates)+2)
	path = append(path, start)
	for _, c := range candidates {
		path = append(path, c.Coordinate())
	}
	return append(path, end)
}

// distinct drops samples whose coordinate already appeared earlier in s.
func distinct(s []ndwi.Sample) []ndwi.Sample {
	seen := make([]ndwi.Coordinate, 0, len(s))
	out := s[:0]
	for _, p := range s {
		c := p.Coordinate()
		if slices.Contains(seen, c) {
			continue
		}
		seen = append(seen, c)
		out = append(out, p)
	}
	return out
}
