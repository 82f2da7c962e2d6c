package codec

import (
	"math"

	"hexagonal/domain/shared"
)

// NewNumericIDCodec builds the codec for NumericID[K].
// Supported forms: FormNative (int64) and FormString (base-10 numeral).
func NewNumericIDCodec[K any](name string, form Form) *Codec[shared.NumericID[K]] {
	kind := shared.KindName[K]()

	encode := func(id shared.NumericID[K]) (any, error) {
		switch form {
		case FormNative:
			return id.Int64(), nil
		case FormString:
			return id.String(), nil
		default:
			return nil, shared.NewUnsupportedFormError(kind, form.String())
		}
	}

	decode := func(raw any) (shared.NumericID[K], error) {
		switch v := raw.(type) {
		case int64:
			return shared.NewNumericID[K](v), nil
		case int:
			return shared.NewNumericID[K](int64(v)), nil
		case int32:
			return shared.NewNumericID[K](int64(v)), nil
		case int16:
			return shared.NewNumericID[K](int64(v)), nil
		case int8:
			return shared.NewNumericID[K](int64(v)), nil
		case uint32:
			return shared.NewNumericID[K](int64(v)), nil
		case uint16:
			return shared.NewNumericID[K](int64(v)), nil
		case uint8:
			return shared.NewNumericID[K](int64(v)), nil
		case uint:
			return fromUnsigned[K](kind, uint64(v))
		case uint64:
			return fromUnsigned[K](kind, v)
		case string:
			return shared.ParseNumericID[K](v)
		case []byte:
			return shared.ParseNumericID[K](string(v))
		}
		return shared.NumericID[K]{}, shared.NewUnsupportedConversionError(kind, raw)
	}

	return newCodec(name, form, encode, decode)
}

func fromUnsigned[K any](kind string, v uint64) (shared.NumericID[K], error) {
	if v > math.MaxInt64 {
		return shared.NumericID[K]{}, shared.NewInvalidArgumentError(kind, "value", "numeric identifier overflows int64")
	}
	return shared.NewNumericID[K](int64(v)), nil
}
