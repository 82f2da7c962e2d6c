package idgen

import (
	"context"
	"time"

	"hexagonal/domain/shared"
	"hexagonal/pkg/metrics"
)

type instrumented[ID shared.DomainObjectID] struct {
	next Generator[ID]
	kind string
}

// Instrument records generation count, failures and latency under kind.
func Instrument[ID shared.DomainObjectID](gen Generator[ID], kind string) Generator[ID] {
	return &instrumented[ID]{next: gen, kind: kind}
}

func (g *instrumented[ID]) Generate(ctx context.Context, gc GenerationContext) (ID, error) {
	start := time.Now()
	id, err := g.next.Generate(ctx, gc)
	metrics.IdentifierLatency.WithLabelValues(g.kind).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.IdentifierFailures.WithLabelValues(g.kind).Inc()
		return id, err
	}
	metrics.IdentifiersGenerated.WithLabelValues(g.kind).Inc()
	return id, nil
}

func (g *instrumented[ID]) SupportsBatchInserts() bool {
	return g.next.SupportsBatchInserts()
}
