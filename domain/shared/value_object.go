package shared

import (
	"fmt"
	"reflect"
)

// ValueObject 值对象接口
// 值对象的特征：
// 1. 没有唯一标识
// 2. 不可变（immutable）
// 3. 通过属性值判断相等性
// 注意：Go语言中没有完美的方式强制实现不可变性，需要通过私有字段和编码规范保证
type ValueObject interface {
	// Equals 比较两个值对象是否相等（同一具体类型且值相等）
	Equals(other any) bool
	// IsZero 是否为零值（即"缺失"的值对象，通常由数据库 NULL 解码而来）
	IsZero() bool
	String() string
}

// SimpleValueObject 包装单个非空值的泛型值对象
//
// 使用方式：在具体值对象中嵌入，例如
//
//	type Email struct{ shared.SimpleValueObject[string] }
//
// 结构体本身是 comparable 的，因此 == 和 map 键都按值比较。
// present 区分"包装了零值"（如数值 0）与"完全没有值"。
//
// ⚠️ 注意：这里不提供 Equals。嵌入后提升的方法看不到外层类型，
// 具体值对象自己实现 Equals，通常直接调用 ValueEquals：
//
//	func (e Email) Equals(other any) bool { return shared.ValueEquals(e, other) }
type SimpleValueObject[V comparable] struct {
	value   V
	present bool
}

// NewSimpleValueObject 创建值对象，缺失的值（nil 接口、nil 指针等）返回 ErrInvalidArgument
func NewSimpleValueObject[V comparable](value V) (SimpleValueObject[V], error) {
	if isAbsent(value) {
		return SimpleValueObject[V]{}, NewInvalidArgumentError(typeName[V](), "value", "value object cannot wrap an absent value")
	}
	return SimpleValueObject[V]{value: value, present: true}, nil
}

// Unwrap 返回被包装的值
func (o SimpleValueObject[V]) Unwrap() V { return o.value }

// IsZero 是否为缺失值
func (o SimpleValueObject[V]) IsZero() bool { return !o.present }

// String 委托给被包装值的文本形式
func (o SimpleValueObject[V]) String() string {
	if !o.present {
		return ""
	}
	if s, ok := any(o.value).(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(o.value)
}

// ValueEquals 值对象相等：other 必须是与 v 完全相同的具体类型且值相等
func ValueEquals[T comparable](v T, other any) bool {
	that, ok := other.(T)
	return ok && v == that
}

func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	}
	return false
}

func typeName[T any]() string {
	t := reflect.TypeFor[T]()
	if t == nil {
		return "value"
	}
	return t.String()
}
