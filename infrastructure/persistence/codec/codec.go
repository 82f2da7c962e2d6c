// Package codec converts value objects and identifiers to and from the raw forms
// a database driver understands.
//
// Every Codec is also a GORM serializer, so a value-object field can be mapped with
// a struct tag once its codec is registered:
//
//	Email user.Email `gorm:"serializer:email;size:255"`
package codec

import (
	"context"
	"reflect"

	"hexagonal/domain/shared"

	"gorm.io/gorm/schema"
)

// Form is the raw representation a codec writes.
type Form int

const (
	// FormNative writes the wrapped value as is (int64, uuid.UUID, string...)
	FormNative Form = iota
	// FormString writes the canonical text form
	FormString
	// FormBytes writes a binary buffer (16-byte big-endian layout for UUIDs)
	FormBytes
)

func (f Form) String() string {
	switch f {
	case FormNative:
		return "native"
	case FormString:
		return "string"
	case FormBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// Codec converts one value-object type W.
// Codecs hold no mutable state and are safe for concurrent use.
type Codec[W shared.ValueObject] struct {
	name    string
	form    Form
	encode  func(W) (any, error)
	decode  func(raw any) (W, error)
	wrapper reflect.Type
}

func newCodec[W shared.ValueObject](name string, form Form, encode func(W) (any, error), decode func(any) (W, error)) *Codec[W] {
	return &Codec[W]{
		name:    name,
		form:    form,
		encode:  encode,
		decode:  decode,
		wrapper: reflect.TypeFor[W](),
	}
}

// Name is the serializer name used in `gorm:"serializer:<name>"`.
func (c *Codec[W]) Name() string { return c.name }

// Form reports the raw representation written by ToStorage.
func (c *Codec[W]) Form() Form { return c.form }

// WrapperType is the Go type this codec converts.
func (c *Codec[W]) WrapperType() reflect.Type { return c.wrapper }

// ToStorage returns nil for an absent value object, otherwise its raw form.
func (c *Codec[W]) ToStorage(w W) (any, error) {
	if w.IsZero() {
		return nil, nil
	}
	return c.encode(w)
}

// FromStorage returns the absent value object for nil, passes W through unchanged,
// and applies the factory to every other supported raw type.
func (c *Codec[W]) FromStorage(raw any) (W, error) {
	var zero W
	switch v := raw.(type) {
	case nil:
		return zero, nil
	case W:
		return v, nil
	case *W:
		if v == nil {
			return zero, nil
		}
		return *v, nil
	}
	return c.decode(raw)
}

// ============================================================================
// GORM serializer
// ============================================================================

// Scan implements schema.SerializerInterface.
// Both W and *W fields are supported; a nil column leaves *W nil.
func (c *Codec[W]) Scan(ctx context.Context, field *schema.Field, dst reflect.Value, dbValue any) error {
	w, err := c.FromStorage(dbValue)
	if err != nil {
		return err
	}

	target := field.ReflectValueOf(ctx, dst)
	if field.FieldType.Kind() == reflect.Pointer {
		if w.IsZero() {
			target.Set(reflect.Zero(field.FieldType))
			return nil
		}
		ptr := reflect.New(field.FieldType.Elem())
		ptr.Elem().Set(reflect.ValueOf(w))
		target.Set(ptr)
		return nil
	}
	target.Set(reflect.ValueOf(w))
	return nil
}

// Value implements schema.SerializerValuerInterface.
func (c *Codec[W]) Value(_ context.Context, _ *schema.Field, _ reflect.Value, fieldValue any) (any, error) {
	switch v := fieldValue.(type) {
	case nil:
		return nil, nil
	case W:
		return c.ToStorage(v)
	case *W:
		if v == nil {
			return nil, nil
		}
		return c.ToStorage(*v)
	}
	return nil, shared.NewUnsupportedConversionError(c.name, fieldValue)
}

var _ schema.SerializerInterface = (*Codec[shared.NumericID[struct{}]])(nil)
