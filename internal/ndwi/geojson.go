package ndwi

import (
	"encoding/json"
	"io"
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// DefaultField is the feature property holding the NDWI value.
const DefaultField = "NDWI"

// ParseResult is the outcome of parsing a dataset: the usable samples in input
// order and the number of features that were rejected.
type ParseResult struct {
	Samples []Sample
	Skipped int
}

// Add appends a sample built from raw values, or counts it as skipped when the
// NDWI value is not a finite number in [-1, 1].
func (r *ParseResult) Add(lng, lat, ndwi float64) {
	if !validNDWI(ndwi) || math.IsNaN(lng) || math.IsNaN(lat) {
		r.Skipped++
		return
	}
	r.Samples = append(r.Samples, NewSample(lng, lat, ndwi))
}

type featureCollection struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
}

// ParseFeatureCollection reads a GeoJSON FeatureCollection of Point features
// carrying a numeric NDWI property named field. Features that are not points,
// lack the property or fail to decode are skipped individually.
func ParseFeatureCollection(r io.Reader, field string) (ParseResult, error) {
	if field == "" {
		field = DefaultField
	}

	var fc featureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return ParseResult{}, eris.Wrap(err, "ndwi: decode feature collection")
	}
	if fc.Type != "FeatureCollection" {
		return ParseResult{}, eris.Errorf("ndwi: expected FeatureCollection, got %q", fc.Type)
	}

	var res ParseResult
	for i, raw := range fc.Features {
		var f geojson.Feature
		if err := json.Unmarshal(raw, &f); err != nil {
			zap.L().Debug("ndwi: skipping undecodable feature", zap.Int("feature", i), zap.Error(err))
			res.Skipped++
			continue
		}

		pt, ok := f.Geometry.(*geom.Point)
		if !ok || pt.Empty() {
			res.Skipped++
			continue
		}

		value, ok := numericProperty(f.Properties, field)
		if !ok {
			zap.L().Debug("ndwi: skipping feature without NDWI value", zap.Int("feature", i), zap.String("field", field))
			res.Skipped++
			continue
		}

		res.Add(pt.X(), pt.Y(), value)
	}

	return res, nil
}

func numericProperty(props map[string]interface{}, field string) (float64, bool) {
	v, ok := props[field]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func validNDWI(v float64) bool {
	return !math.IsNaN(v) && v >= -1 && v <= 1
}
