// Package idgen supplies identifiers for entities saved without one.
//
// Two strategies exist: NumericID values come from a Sequence owned by the storage
// side (a table row, a Postgres sequence, a Redis counter); UUIDID values are
// generated locally at random. The store calls Generate exactly once per insert of
// a transient entity and never when the entity already carries an identifier.
package idgen

import (
	"context"

	"hexagonal/domain/shared"
)

// GenerationContext describes the entity an identifier is generated for.
type GenerationContext struct {
	Kind   string
	Entity shared.Entity
}

// Generator produces identifiers of type ID.
type Generator[ID shared.DomainObjectID] interface {
	Generate(ctx context.Context, gc GenerationContext) (ID, error)
	// SupportsBatchInserts reports whether several rows can be written in one
	// statement batch, i.e. identifiers are known before the rows are written.
	SupportsBatchInserts() bool
}

// Sequence is a storage-side source of 64-bit numbers.
type Sequence interface {
	Name() string
	Next(ctx context.Context) (int64, error)
	SupportsBatchInserts() bool
}

// ============================================================================
// SequenceGenerator
// ============================================================================

// SequenceGenerator delegates to a Sequence and wraps the raw value with factory,
// normally a codec's FromStorage.
type SequenceGenerator[ID shared.DomainObjectID] struct {
	seq     Sequence
	factory func(raw any) (ID, error)
}

func NewSequenceGenerator[ID shared.DomainObjectID](seq Sequence, factory func(raw any) (ID, error)) *SequenceGenerator[ID] {
	return &SequenceGenerator[ID]{seq: seq, factory: factory}
}

func (g *SequenceGenerator[ID]) Generate(ctx context.Context, gc GenerationContext) (ID, error) {
	var zero ID
	raw, err := g.seq.Next(ctx)
	if err != nil {
		return zero, err
	}
	id, err := g.factory(raw)
	if err != nil {
		return zero, err
	}
	if id.IsZero() {
		return zero, shared.NewIllegalStateError(gc.Kind, "sequence "+g.seq.Name()+" produced no value")
	}
	return id, nil
}

func (g *SequenceGenerator[ID]) SupportsBatchInserts() bool {
	return g.seq.SupportsBatchInserts()
}

// ============================================================================
// UUIDGenerator
// ============================================================================

// UUIDGenerator generates random (version 4) identifiers locally.
type UUIDGenerator[K any] struct{}

func NewUUIDGenerator[K any]() UUIDGenerator[K] {
	return UUIDGenerator[K]{}
}

func (UUIDGenerator[K]) Generate(context.Context, GenerationContext) (shared.UUIDID[K], error) {
	return shared.NewUUIDID[K](), nil
}

func (UUIDGenerator[K]) SupportsBatchInserts() bool { return true }
