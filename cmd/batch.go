package main

import (
	"context"
	"os"
	"sync/atomic"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lake-route/internal/ndwi"
	"github.com/sells-group/lake-route/internal/route"
)

var (
	batchInput  string
	batchOutput string
	batchSnap   bool
)

// batchQuery is one input row.
type batchQuery struct {
	ID       string  `csv:"id,omitempty"`
	StartLng float64 `csv:"start_lng"`
	StartLat float64 `csv:"start_lat"`
	EndLng   float64 `csv:"end_lng"`
	EndLat   float64 `csv:"end_lat"`
}

// batchResult is one output row.
type batchResult struct {
	ID              string  `csv:"id"`
	DirectQuality   int     `csv:"direct_quality"`
	DirectDistance  float64 `csv:"direct_distance"`
	DirectScore     float64 `csv:"direct_score"`
	DirectValid     bool    `csv:"direct_valid"`
	QualityQuality  int     `csv:"quality_quality"`
	QualityDistance float64 `csv:"quality_distance"`
	QualityScore    float64 `csv:"quality_score"`
	QualityValid    bool    `csv:"quality_valid"`
	Preferred       string  `csv:"preferred"`
	Error           string  `csv:"error"`
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Evaluate route queries from a CSV file",
	Long: `Reads start_lng,start_lat,end_lng,end_lat rows (with an optional id column)
and writes one scored comparison per row.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("batch"); err != nil {
			return err
		}
		data, err := os.ReadFile(batchInput)
		if err != nil {
			return eris.Wrap(err, "batch: read input")
		}
		var queries []batchQuery
		if err := csvutil.Unmarshal(data, &queries); err != nil {
			return eris.Wrap(err, "batch: parse input")
		}

		ev, closeDataset, err := openEvaluator(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDataset()

		results, err := runBatch(cmd.Context(), ev, queries, cfg.Batch.Concurrency, batchSnap)
		if err != nil {
			return err
		}

		out, err := csvutil.Marshal(results)
		if err != nil {
			return eris.Wrap(err, "batch: encode results")
		}
		if batchOutput == "" {
			_, err = cmd.OutOrStdout().Write(out)
			return eris.Wrap(err, "batch: write results")
		}
		return eris.Wrap(os.WriteFile(batchOutput, out, 0o644), "batch: write results")
	},
}

// runBatch evaluates queries with bounded concurrency. Results keep input
// order; a failed row carries its error instead of aborting the batch.
func runBatch(ctx context.Context, ev *route.Evaluator, queries []batchQuery, concurrency int, snap bool) ([]batchResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	zap.L().Info("processing batch",
		zap.Int("queries", len(queries)),
		zap.Int("concurrency", concurrency),
	)

	results := make([]batchResult, len(queries))
	var succeeded, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, q := range queries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = evaluateQuery(ev, q, snap)
			if results[i].Error != "" {
				failed.Add(1)
				zap.L().Warn("batch query failed", zap.String("id", results[i].ID), zap.String("error", results[i].Error))
				return nil
			}
			succeeded.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return results, nil
}

func evaluateQuery(ev *route.Evaluator, q batchQuery, snap bool) batchResult {
	start := ndwi.Coordinate{Lng: q.StartLng, Lat: q.StartLat}
	end := ndwi.Coordinate{Lng: q.EndLng, Lat: q.EndLat}
	row := batchResult{ID: q.ID}

	for _, c := range []ndwi.Coordinate{start, end} {
		if err := c.Validate(); err != nil {
			row.Error = err.Error()
			return row
		}
	}
	if snap {
		var err error
		if start, end, err = snapPair(ev, start, end); err != nil {
			row.Error = err.Error()
			return row
		}
	}

	r := ev.Evaluate(&start, &end)
	row.DirectQuality = r.Direct.Quality
	row.DirectDistance = r.Direct.Distance
	row.DirectScore = r.Direct.Score
	row.DirectValid = r.Direct.Valid
	row.QualityQuality = r.QualityOptimized.Quality
	row.QualityDistance = r.QualityOptimized.Distance
	row.QualityScore = r.QualityOptimized.Score
	row.QualityValid = r.QualityOptimized.Valid
	row.Preferred = preferred(r)
	return row
}

// preferred names the higher scoring variant. Ties go to the direct route.
func preferred(r *route.ComparisonResult) string {
	if r.QualityOptimized.Score > r.Direct.Score {
		return route.VariantQuality
	}
	return route.VariantDirect
}

func init() {
	batchCmd.Flags().StringVar(&batchInput, "input", "", "CSV file of route queries (required)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "CSV file for results (default stdout)")
	batchCmd.Flags().BoolVar(&batchSnap, "snap", false, "snap endpoints to their nearest samples")
	_ = batchCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(batchCmd)
}
