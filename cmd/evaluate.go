package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lake-route/internal/api"
	"github.com/sells-group/lake-route/internal/route"
)

var (
	evalStart  string
	evalEnd    string
	evalSnap   bool
	evalFormat string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Compare the direct and quality-optimized routes between two points",
	Example: `  lake-route evaluate --start -93.10,44.95 --end -93.08,44.96
  lake-route evaluate --start -93.10,44.95 --end -93.08,44.96 --snap --format kml > routes.kml`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("query"); err != nil {
			return err
		}
		start, err := parseCoord(evalStart)
		if err != nil {
			return err
		}
		end, err := parseCoord(evalEnd)
		if err != nil {
			return err
		}

		ev, closeDataset, err := openEvaluator(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDataset()

		if evalSnap {
			if start, end, err = snapPair(ev, start, end); err != nil {
				return err
			}
		}

		return writeComparison(cmd.OutOrStdout(), ev.Evaluate(&start, &end), evalFormat)
	},
}

// writeComparison renders r as json, geojson or kml.
func writeComparison(w io.Writer, r *route.ComparisonResult, format string) error {
	if r == nil {
		return eris.New("evaluate: no result")
	}
	switch format {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(api.NewEvaluateResponse(r)), "evaluate: write json")
	case "geojson":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(route.FeatureCollection(r)), "evaluate: write geojson")
	case "kml":
		return route.WriteKML(w, r)
	default:
		return eris.Errorf("evaluate: unknown format %q (want json, geojson or kml)", format)
	}
}

func init() {
	evaluateCmd.Flags().StringVar(&evalStart, "start", "", "start coordinate as lng,lat (required)")
	evaluateCmd.Flags().StringVar(&evalEnd, "end", "", "end coordinate as lng,lat (required)")
	evaluateCmd.Flags().BoolVar(&evalSnap, "snap", false, "snap endpoints to their nearest samples")
	evaluateCmd.Flags().StringVar(&evalFormat, "format", "json", "output format: json, geojson or kml")
	_ = evaluateCmd.MarkFlagRequired("start")
	_ = evaluateCmd.MarkFlagRequired("end")
	rootCmd.AddCommand(evaluateCmd)
}
