// Package ndwi holds the water-quality sample index: dataset parsing, NDWI
// quality classification and nearest-sample lookup.
package ndwi

import (
	"encoding/json"
	"math"

	"github.com/rotisserie/eris"
)

// Coordinate is a (longitude, latitude) pair in the dataset's reference frame.
// It encodes to JSON as a GeoJSON-ordered [lng, lat] array.
type Coordinate struct {
	Lng float64
	Lat float64
}

// DistanceTo returns the planar Euclidean distance to o in coordinate units.
func (c Coordinate) DistanceTo(o Coordinate) float64 {
	dLng := c.Lng - o.Lng
	dLat := c.Lat - o.Lat
	return math.Sqrt(dLng*dLng + dLat*dLat)
}

// Validate reports coordinates that are not finite or fall outside
// longitude [-180, 180] and latitude [-90, 90].
func (c Coordinate) Validate() error {
	switch {
	case math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) || math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0):
		return eris.Errorf("ndwi: coordinate %v,%v is not finite", c.Lng, c.Lat)
	case c.Lng < -180 || c.Lng > 180:
		return eris.Errorf("ndwi: longitude %v out of range [-180, 180]", c.Lng)
	case c.Lat < -90 || c.Lat > 90:
		return eris.Errorf("ndwi: latitude %v out of range [-90, 90]", c.Lat)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lng, c.Lat})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return eris.Wrap(err, "ndwi: decode coordinate")
	}
	if len(pair) != 2 {
		return eris.Errorf("ndwi: coordinate needs 2 values, got %d", len(pair))
	}
	c.Lng, c.Lat = pair[0], pair[1]
	return nil
}

// Sample is a single NDWI measurement. Quality is derived from NDWI when the
// sample is created and never recomputed.
type Sample struct {
	Longitude float64 `json:"lng"`
	Latitude  float64 `json:"lat"`
	NDWI      float64 `json:"ndwi"`
	Quality   int     `json:"quality"`
}

// NewSample builds a Sample and classifies its quality.
func NewSample(lng, lat, ndwi float64) Sample {
	return Sample{
		Longitude: lng,
		Latitude:  lat,
		NDWI:      ndwi,
		Quality:   ToQuality(ndwi),
	}
}

// Coordinate returns the sample's position.
func (s Sample) Coordinate() Coordinate {
	return Coordinate{Lng: s.Longitude, Lat: s.Latitude}
}
