// Package specification converts domain specifications to GORM query scopes.
// Infrastructure layer handles framework-specific concerns; the domain only sees
// shared.Specification.
package specification

import (
	"hexagonal/domain/shared"

	"gorm.io/gorm"
)

// Scope is a GORM query modifier
type Scope = func(*gorm.DB) *gorm.DB

// Leaf translates one concrete specification of a domain package.
// negate asks for the negated condition. ok is false for unknown types.
type Leaf[T any] func(spec shared.Specification[T], negate bool) (scope Scope, ok bool)

// GormTranslator handles the shared composites and delegates leaves
type GormTranslator[T any] struct {
	leaf Leaf[T]
}

// NewGormTranslator creates a new GORM translator
func NewGormTranslator[T any](leaf Leaf[T]) *GormTranslator[T] {
	return &GormTranslator[T]{leaf: leaf}
}

// Translate returns ok=false when some part of the specification has no SQL form;
// callers then filter in memory with IsSatisfiedBy.
func (t *GormTranslator[T]) Translate(spec shared.Specification[T]) (Scope, bool) {
	return t.translate(spec, false)
}

func (t *GormTranslator[T]) translate(spec shared.Specification[T], negate bool) (Scope, bool) {
	switch s := spec.(type) {
	case nil:
		if negate {
			return nil, false
		}
		return func(db *gorm.DB) *gorm.DB { return db }, true
	case shared.AndSpecification[T]:
		left, ok := t.translate(s.Left, negate)
		if !ok {
			return nil, false
		}
		right, ok := t.translate(s.Right, negate)
		if !ok {
			return nil, false
		}
		if !negate {
			return func(db *gorm.DB) *gorm.DB { return right(left(db)) }, true
		}
		// NOT (a AND b) = (NOT a) OR (NOT b)
		return func(db *gorm.DB) *gorm.DB {
			group := db.Session(&gorm.Session{NewDB: true})
			return db.Where(left(group).Or(right(group)))
		}, true
	case shared.NotSpecification[T]:
		return t.translate(s.Spec, !negate)
	default:
		if t.leaf == nil {
			return nil, false
		}
		return t.leaf(spec, negate)
	}
}
