package ndwi

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Source produces the samples for an index.
type Source interface {
	// Name identifies the source in logs.
	Name() string

	// Samples reads and parses the whole dataset.
	Samples(ctx context.Context) (ParseResult, error)
}

// Loader builds an Index from a Source exactly once. Concurrent first callers
// share a single parse; after a successful load every call returns the same
// frozen index. Failed or empty loads are not cached.
type Loader struct {
	source Source
	group  singleflight.Group
	index  atomic.Pointer[Index]
}

// NewLoader creates a Loader for src.
func NewLoader(src Source) *Loader {
	return &Loader{source: src}
}

// Load returns the loaded index. It never fails: when the dataset is
// unavailable it logs the cause and returns an empty index. The shared load
// ignores cancellation of ctx so one caller going away does not fail the
// others waiting on it.
func (l *Loader) Load(ctx context.Context) *Index {
	if ix := l.index.Load(); ix != nil {
		return ix
	}

	v, _, _ := l.group.Do("load", func() (any, error) {
		if ix := l.index.Load(); ix != nil {
			return ix, nil
		}
		return l.load(context.WithoutCancel(ctx)), nil
	})
	return v.(*Index)
}

// Loaded reports whether a successful load has been published.
func (l *Loader) Loaded() bool {
	return l.index.Load() != nil
}

func (l *Loader) load(ctx context.Context) *Index {
	log := zap.L().With(zap.String("component", "ndwi.loader"))
	if l.source == nil {
		log.Warn("dataset unavailable: no source configured")
		return Empty()
	}
	log = log.With(zap.String("source", l.source.Name()))

	res, err := l.source.Samples(ctx)
	if err != nil {
		log.Warn("dataset unavailable", zap.Error(err))
		return Empty()
	}
	if len(res.Samples) == 0 {
		log.Warn("dataset has no usable samples", zap.Int("skipped", res.Skipped))
		return Empty()
	}

	ix := NewIndex(res.Samples, WithSkipped(res.Skipped))
	l.index.Store(ix)

	log.Info("NDWI samples loaded",
		zap.Int("points", ix.Len()),
		zap.Int("skipped", res.Skipped),
		zap.String("snapshot", ix.Snapshot().ID),
	)
	return ix
}
