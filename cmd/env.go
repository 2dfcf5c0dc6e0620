package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lake-route/internal/dataset"
	"github.com/sells-group/lake-route/internal/ndwi"
	"github.com/sells-group/lake-route/internal/route"
)

// openLoader opens the configured dataset. The returned func releases it.
func openLoader(ctx context.Context) (*ndwi.Loader, func(), error) {
	src, err := dataset.FromConfig(ctx, cfg)
	if err != nil {
		return nil, nil, eris.Wrap(err, "open dataset")
	}
	closeFn := func() {
		if err := src.Close(); err != nil {
			zap.L().Warn("close dataset", zap.String("source", src.Name()), zap.Error(err))
		}
	}
	return ndwi.NewLoader(src), closeFn, nil
}

// openEvaluator loads the dataset and builds an evaluator over it.
func openEvaluator(ctx context.Context) (*route.Evaluator, func(), error) {
	loader, closeFn, err := openLoader(ctx)
	if err != nil {
		return nil, nil, err
	}
	return route.NewEvaluator(loader.Load(ctx), cfg.Route), closeFn, nil
}

// parseCoord parses "lng,lat" and rejects non-finite or out-of-range values.
func parseCoord(s string) (ndwi.Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return ndwi.Coordinate{}, eris.Errorf("coordinate %q: want lng,lat", s)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return ndwi.Coordinate{}, eris.Wrapf(err, "coordinate %q: longitude", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return ndwi.Coordinate{}, eris.Wrapf(err, "coordinate %q: latitude", s)
	}
	c := ndwi.Coordinate{Lng: lng, Lat: lat}
	if err := c.Validate(); err != nil {
		return ndwi.Coordinate{}, eris.Wrapf(err, "coordinate %q", s)
	}
	return c, nil
}

// snapPair moves both endpoints onto their nearest samples.
func snapPair(ev *route.Evaluator, start, end ndwi.Coordinate) (ndwi.Coordinate, ndwi.Coordinate, error) {
	s, ok := ev.Snap(start)
	if !ok {
		return start, end, eris.Errorf("no sample near start %v,%v", start.Lng, start.Lat)
	}
	e, ok := ev.Snap(end)
	if !ok {
		return start, end, eris.Errorf("no sample near end %v,%v", end.Lng, end.Lat)
	}
	return s, e, nil
}
