package codec

import (
	"hexagonal/domain/shared"

	"github.com/google/uuid"
)

// NewUUIDIDCodec builds the codec for UUIDID[K].
//
// FormNative writes uuid.UUID (driver value: canonical text), FormString the canonical
// text, FormBytes the 16-byte big-endian buffer. A []byte read back is treated as the
// binary layout when it is 16 bytes long. 36 bytes are canonical text for every form,
// since drivers such as mysql return CHAR columns as []byte; a FormString codec parses
// any other length as text too. Remaining lengths fail with ErrInvalidArgument.
func NewUUIDIDCodec[K any](name string, form Form) *Codec[shared.UUIDID[K]] {
	kind := shared.KindName[K]()

	encode := func(id shared.UUIDID[K]) (any, error) {
		switch form {
		case FormNative:
			return id.UUID(), nil
		case FormString:
			return id.String(), nil
		case FormBytes:
			return id.Bytes(), nil
		default:
			return nil, shared.NewUnsupportedFormError(kind, form.String())
		}
	}

	decode := func(raw any) (shared.UUIDID[K], error) {
		switch v := raw.(type) {
		case uuid.UUID:
			return shared.UUIDIDFrom[K](v), nil
		case [16]byte:
			return shared.UUIDIDFrom[K](uuid.UUID(v)), nil
		case string:
			return shared.ParseUUIDID[K](v)
		case []byte:
			switch {
			case len(v) == 16:
				return shared.UUIDIDFromBytes[K](v)
			case len(v) == 36 || form == FormString:
				return shared.ParseUUIDID[K](string(v))
			default:
				return shared.UUIDIDFromBytes[K](v)
			}
		}
		return shared.UUIDID[K]{}, shared.NewUnsupportedConversionError(kind, raw)
	}

	return newCodec(name, form, encode, decode)
}
