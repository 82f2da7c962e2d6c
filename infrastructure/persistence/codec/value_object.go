package codec

import (
	"fmt"
	"math"
	"reflect"

	"hexagonal/domain/shared"
)

// NewValueObjectCodec builds a FormNative codec for a single-value object.
//
// factory reconstructs W from its raw value (and enforces W's own invariants);
// unwrap extracts the raw value. Raw values of a different but convertible kind are
// converted first: []byte to string, and between integer or float kinds. A numeric
// conversion that would truncate a fraction or overflow V fails with ErrInvalidArgument.
func NewValueObjectCodec[W shared.ValueObject, V any](name string, factory func(V) (W, error), unwrap func(W) V) *Codec[W] {
	target := reflect.TypeFor[V]()

	encode := func(w W) (any, error) {
		return unwrap(w), nil
	}

	decode := func(raw any) (W, error) {
		if v, ok := raw.(V); ok {
			return factory(v)
		}
		var zero W
		v, ok, err := convert(raw, target)
		if err != nil {
			return zero, shared.NewInvalidArgumentError(name, "value", err.Error())
		}
		if ok {
			return factory(v.Interface().(V))
		}
		return zero, shared.NewUnsupportedConversionError(name, raw)
	}

	return newCodec(name, FormNative, encode, decode)
}

func convert(raw any, target reflect.Type) (reflect.Value, bool, error) {
	rv := reflect.ValueOf(raw)
	switch {
	case target.Kind() == reflect.String && rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
		return reflect.ValueOf(string(rv.Bytes())).Convert(target), true, nil
	case isNumber(target.Kind()) && isNumber(rv.Kind()):
		v, err := convertNumber(rv, target)
		return v, err == nil, err
	}
	return reflect.Value{}, false, nil
}

// convertNumber 数值之间的转换，不允许截断小数或溢出
func convertNumber(rv reflect.Value, target reflect.Type) (reflect.Value, error) {
	zero := reflect.Zero(target)
	overflow := fmt.Errorf("%v overflows %s", rv.Interface(), target)

	switch {
	case isInt(target.Kind()):
		var n int64
		switch {
		case isInt(rv.Kind()):
			n = rv.Int()
		case isUint(rv.Kind()):
			if rv.Uint() > math.MaxInt64 {
				return reflect.Value{}, overflow
			}
			n = int64(rv.Uint())
		default:
			f := rv.Float()
			if f != math.Trunc(f) {
				return reflect.Value{}, fmt.Errorf("%v is not an integral value for %s", f, target)
			}
			if f < math.MinInt64 || f >= math.MaxInt64 {
				return reflect.Value{}, overflow
			}
			n = int64(f)
		}
		if zero.OverflowInt(n) {
			return reflect.Value{}, overflow
		}
		return reflect.ValueOf(n).Convert(target), nil

	case isUint(target.Kind()):
		var u uint64
		switch {
		case isInt(rv.Kind()):
			if rv.Int() < 0 {
				return reflect.Value{}, overflow
			}
			u = uint64(rv.Int())
		case isUint(rv.Kind()):
			u = rv.Uint()
		default:
			f := rv.Float()
			if f != math.Trunc(f) {
				return reflect.Value{}, fmt.Errorf("%v is not an integral value for %s", f, target)
			}
			if f < 0 || f >= math.MaxUint64 {
				return reflect.Value{}, overflow
			}
			u = uint64(f)
		}
		if zero.OverflowUint(u) {
			return reflect.Value{}, overflow
		}
		return reflect.ValueOf(u).Convert(target), nil

	default:
		var f float64
		switch {
		case isInt(rv.Kind()):
			f = float64(rv.Int())
		case isUint(rv.Kind()):
			f = float64(rv.Uint())
		default:
			f = rv.Float()
		}
		if zero.OverflowFloat(f) {
			return reflect.Value{}, overflow
		}
		return reflect.ValueOf(f).Convert(target), nil
	}
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
