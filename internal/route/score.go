package route

import (
	"math"

	"github.com/sells-group/lake-route/internal/ndwi"
)

// Composite score weights. Distance is in coordinate degrees, so a small
// length needs a large multiplier to weigh against 0-100 quality.
const (
	qualityWeight   = 0.8
	distancePenalty = 1000
)

// PathEvaluation is the scored summary of a path.
type PathEvaluation struct {
	Path     Path    `json:"path"`
	Quality  int     `json:"quality"`
	Distance float64 `json:"distance"`
	Score    float64 `json:"score"`
	Valid    bool    `json:"valid"`
}

// Scorer scores paths against an NDWI index.
type Scorer struct {
	index *ndwi.Index
}

// NewScorer creates a Scorer over ix.
func NewScorer(ix *ndwi.Index) *Scorer {
	return &Scorer{index: ix}
}

// Score walks consecutive coordinate pairs, summing segment lengths and the
// quality at every coordinate after the first. Paths with fewer than two
// coordinates score as an empty, invalid evaluation.
func (s *Scorer) Score(path Path) PathEvaluation {
	if len(path) < 2 {
		return PathEvaluation{Path: Path{}}
	}

	var (
		totalQuality  int
		totalDistance float64
		validPoints   int
	)
	for i := 1; i < len(path); i++ {
		if q, ok := s.index.QualityAt(path[i]); ok {
			totalQuality += q
			validPoints++
		}
		totalDistance += path[i-1].DistanceTo(path[i])
	}

	var avgQuality float64
	if validPoints > 0 {
		avgQuality = float64(totalQuality) / float64(validPoints)
	}
	score := roundHalfUp(avgQuality*qualityWeight - totalDistance*distancePenalty)

	return PathEvaluation{
		Path:     path,
		Quality:  int(roundHalfUp(avgQuality)),
		Distance: totalDistance,
		Score:    math.Max(0, score),
		Valid:    validPoints > 0,
	}
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
