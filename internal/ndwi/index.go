package ndwi

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxDistance is the lookup radius used by QualityAt and IsValid.
const DefaultMaxDistance = 0.01

// Index is an immutable, ordered set of samples. Index order is load order and
// decides nearest-distance ties. A nil *Index behaves as an empty index.
type Index struct {
	id       string
	samples  []Sample
	skipped  int
	loadedAt time.Time
}

// IndexOption configures an Index at construction.
type IndexOption func(*Index)

// WithSkipped records how many input features were rejected while parsing.
func WithSkipped(n int) IndexOption {
	return func(ix *Index) {
		ix.skipped = n
	}
}

// NewIndex builds an Index over a copy of samples.
func NewIndex(samples []Sample, opts ...IndexOption) *Index {
	ix := &Index{
		id:       uuid.NewString(),
		samples:  append([]Sample(nil), samples...),
		loadedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Empty returns an index with no samples.
func Empty() *Index {
	return NewIndex(nil)
}

// Snapshot describes a loaded index.
type Snapshot struct {
	ID       string    `json:"id"`
	Points   int       `json:"points"`
	Skipped  int       `json:"skipped"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Snapshot returns metadata about the index.
func (ix *Index) Snapshot() Snapshot {
	if ix == nil {
		return Snapshot{}
	}
	return Snapshot{
		ID:       ix.id,
		Points:   len(ix.samples),
		Skipped:  ix.skipped,
		LoadedAt: ix.loadedAt,
	}
}

// Len returns the number of samples.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.samples)
}

// Points returns a copy of all samples in index order.
func (ix *Index) Points() []Sample {
	if ix == nil {
		return nil
	}
	return append([]Sample(nil), ix.samples...)
}

// Filter returns the samples accepted by keep, in index order.
func (ix *Index) Filter(keep func(Sample) bool) []Sample {
	if ix == nil {
		return nil
	}
	var out []Sample
	for _, s := range ix.samples {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// FindNearest returns the sample closest to c whose distance is strictly less
// than maxDistance. Ties resolve to the earliest sample in index order.
func (ix *Index) FindNearest(c Coordinate, maxDistance float64) (Sample, bool) {
	if ix == nil {
		return Sample{}, false
	}

	var (
		nearest Sample
		found   bool
	)
	minDistance := math.Inf(1)
	for _, s := range ix.samples {
		d := c.DistanceTo(s.Coordinate())
		if d < minDistance && d < maxDistance {
			minDistance = d
			nearest = s
			found = true
		}
	}
	return nearest, found
}

// QualityAt returns the quality of the nearest sample within DefaultMaxDistance.
func (ix *Index) QualityAt(c Coordinate) (int, bool) {
	s, ok := ix.FindNearest(c, DefaultMaxDistance)
	if !ok {
		return 0, false
	}
	return s.Quality, true
}

// IsValid reports whether any sample lies within DefaultMaxDistance of c.
func (ix *Index) IsValid(c Coordinate) bool {
	_, ok := ix.FindNearest(c, DefaultMaxDistance)
	return ok
}
