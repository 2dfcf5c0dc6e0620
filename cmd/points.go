package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lake-route/internal/api"
	"github.com/sells-group/lake-route/internal/ndwi"
)

var (
	pointsMinQuality   int
	nearestAt          string
	nearestMaxDistance float64
)

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "List loaded NDWI samples",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("query"); err != nil {
			return err
		}
		loader, closeDataset, err := openLoader(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDataset()

		samples := loader.Load(cmd.Context()).Filter(func(s ndwi.Sample) bool {
			return s.Quality >= pointsMinQuality
		})
		return writePoints(cmd.OutOrStdout(), samples)
	},
}

var nearestCmd = &cobra.Command{
	Use:   "nearest",
	Short: "Find the sample closest to a coordinate",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("query"); err != nil {
			return err
		}
		at, err := parseCoord(nearestAt)
		if err != nil {
			return err
		}
		loader, closeDataset, err := openLoader(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDataset()

		s, ok := loader.Load(cmd.Context()).FindNearest(at, nearestMaxDistance)
		if !ok {
			return eris.Errorf("no sample within %g of %s", nearestMaxDistance, nearestAt)
		}
		return writePoints(cmd.OutOrStdout(), []ndwi.Sample{s})
	},
}

// writePoints prints one JSON object per sample.
func writePoints(w io.Writer, samples []ndwi.Sample) error {
	enc := json.NewEncoder(w)
	for _, s := range samples {
		if err := enc.Encode(api.NewPointResponse(s)); err != nil {
			return eris.Wrap(err, "points: write")
		}
	}
	return nil
}

func init() {
	pointsCmd.Flags().IntVar(&pointsMinQuality, "min-quality", 0, "only list samples with at least this quality")
	rootCmd.AddCommand(pointsCmd)

	nearestCmd.Flags().StringVar(&nearestAt, "at", "", "query coordinate as lng,lat (required)")
	nearestCmd.Flags().Float64Var(&nearestMaxDistance, "max-distance", ndwi.DefaultMaxDistance, "search radius in coordinate units")
	_ = nearestCmd.MarkFlagRequired("at")
	rootCmd.AddCommand(nearestCmd)
}
