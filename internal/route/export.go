package route

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-kml"
	"github.com/twpayne/go-polyline"
)

// Variant names used in exports.
const (
	VariantDirect  = "direct"
	VariantQuality = "quality_optimized"
)

type namedEvaluation struct {
	name string
	eval PathEvaluation
}

func (r *ComparisonResult) variants() []namedEvaluation {
	return []namedEvaluation{
		{name: VariantDirect, eval: r.Direct},
		{name: VariantQuality, eval: r.QualityOptimized},
	}
}

// LineString converts a path to a go-geom line string.
func (p Path) LineString() *geom.LineString {
	flat := make([]float64, 0, len(p)*2)
	for _, c := range p {
		flat = append(flat, c.Lng, c.Lat)
	}
	return geom.NewLineStringFlat(geom.XY, flat)
}

// EncodePolyline encodes a path in the Google polyline format (lat, lng order).
func EncodePolyline(p Path) string {
	coords := make([][]float64, len(p))
	for i, c := range p {
		coords[i] = []float64{c.Lat, c.Lng}
	}
	return string(polyline.EncodeCoords(coords))
}

// FeatureCollection renders both variants as GeoJSON LineString features.
// Degenerate paths are left out.
func FeatureCollection(r *ComparisonResult) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{}
	if r == nil {
		return fc
	}
	for _, v := range r.variants() {
		if len(v.eval.Path) < 2 {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry: v.eval.Path.LineString(),
			Properties: map[string]interface{}{
				"variant":  v.name,
				"quality":  v.eval.Quality,
				"distance": v.eval.Distance,
				"score":    v.eval.Score,
				"valid":    v.eval.Valid,
				"rating":   Rate(v.eval.Quality),
			},
		})
	}
	return fc
}

// WriteKML writes both variants as KML placemarks.
func WriteKML(w io.Writer, r *ComparisonResult) error {
	if r == nil {
		return eris.New("route: no comparison result to export")
	}

	children := []kml.Element{kml.Name("lake-route comparison")}
	for _, v := range r.variants() {
		if len(v.eval.Path) < 2 {
			continue
		}
		coords := make([]kml.Coordinate, len(v.eval.Path))
		for i, c := range v.eval.Path {
			coords[i] = kml.Coordinate{Lon: c.Lng, Lat: c.Lat}
		}
		children = append(children, kml.Placemark(
			kml.Name(v.name),
			kml.Description(fmt.Sprintf("quality=%d (%s) distance=%.4f score=%.0f",
				v.eval.Quality, Rate(v.eval.Quality), v.eval.Distance, v.eval.Score)),
			kml.LineString(kml.Coordinates(coords...)),
		))
	}

	if err := kml.KML(kml.Document(children...)).WriteIndent(w, "", "  "); err != nil {
		return eris.Wrap(err, "route: write kml")
	}
	return nil
}
