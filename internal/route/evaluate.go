package route

import (
	"github.com/sells-group/lake-route/internal/ndwi"
)

// ComparisonResult pairs the direct and quality-optimized evaluations for one query.
type ComparisonResult struct {
	Direct           PathEvaluation `json:"direct"`
	QualityOptimized PathEvaluation `json:"qualityOptimized"`
}

// Evaluator answers route queries against one loaded index.
type Evaluator struct {
	index  *ndwi.Index
	synth  *Synthesizer
	scorer *Scorer
}

// NewEvaluator creates an Evaluator over ix.
func NewEvaluator(ix *ndwi.Index, opts Options) *Evaluator {
	return &Evaluator{
		index:  ix,
		synth:  NewSynthesizer(ix, opts),
		scorer: NewScorer(ix),
	}
}

// Evaluate builds and scores both route variants. It returns nil when either
// endpoint is missing.
func (e *Evaluator) Evaluate(start, end *ndwi.Coordinate) *ComparisonResult {
	if start == nil || end == nil {
		return nil
	}
	return &ComparisonResult{
		Direct:           e.scorer.Score(e.synth.DirectPath(*start, *end)),
		QualityOptimized: e.scorer.Score(e.synth.QualityPath(*start, *end)),
	}
}

// Snap moves c onto the nearest sample within ndwi.DefaultMaxDistance.
func (e *Evaluator) Snap(c ndwi.Coordinate) (ndwi.Coordinate, bool) {
	s, ok := e.index.FindNearest(c, ndwi.DefaultMaxDistance)
	if !ok {
		return ndwi.Coordinate{}, false
	}
	return s.Coordinate(), true
}

// Index returns the index the evaluator queries.
func (e *Evaluator) Index() *ndwi.Index {
	return e.index
}
