package dataset

import (
	"context"

	"github.com/sells-group/lake-route/internal/ndwi"
	"github.com/sells-group/lake-route/internal/resilience"
)

// Guarded wraps a Source whose reads can fail repeatedly, such as a remote
// download or a database. Once the breaker opens, Samples fails fast until
// the reset timeout passes.
type Guarded struct {
	Source
	breaker *resilience.Breaker
}

// Guard wraps src with b.
func Guard(src Source, b *resilience.Breaker) *Guarded {
	return &Guarded{Source: src, breaker: b}
}

// Samples implements ndwi.Source.
func (g *Guarded) Samples(ctx context.Context) (ndwi.ParseResult, error) {
	return resilience.Do(ctx, g.breaker, g.Source.Samples)
}
