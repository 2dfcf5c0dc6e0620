package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lake-route/internal/dataset"
)

var importTo string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy the configured dataset into a sample store",
	Long:  "Reads NDWI samples from dataset.source and replaces the contents of the SQLite or Postgres sample table.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if importTo != "sqlite" && importTo != "postgres" {
			return eris.Errorf("import: --to must be sqlite or postgres, got %q", importTo)
		}
		if err := cfg.Validate("import"); err != nil {
			return err
		}

		src, err := dataset.FromConfig(ctx, cfg)
		if err != nil {
			return eris.Wrap(err, "import: open source")
		}
		defer src.Close() //nolint:errcheck

		res, err := src.Samples(ctx)
		if err != nil {
			return eris.Wrap(err, "import: read source")
		}
		if len(res.Samples) == 0 {
			return eris.Errorf("import: %s has no usable samples (%d skipped)", src.Name(), res.Skipped)
		}

		store, err := dataset.OpenStore(ctx, importTo, cfg.Dataset)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		prev, err := store.LastImport(ctx)
		if err != nil {
			return err
		}
		if prev != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "replacing import %s (%d points from %s, %s)\n",
				prev.ID, prev.Points, prev.Source, prev.ImportedAt.Format(time.RFC3339))
		}

		imp, err := store.ReplaceSamples(ctx, src.Name(), res)
		if err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.String("store", store.Name()),
			zap.String("source", imp.Source),
			zap.Int("points", imp.Points),
			zap.Int("skipped", imp.Skipped),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d points into %s (import %s)\n", imp.Points, store.Name(), imp.ID)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importTo, "to", "sqlite", "destination store: sqlite or postgres")
	rootCmd.AddCommand(importCmd)
}
