package shared

import (
	"reflect"
	"strconv"

	"github.com/google/uuid"
)

// DomainObjectID 可作为实体唯一标识的值对象
//
// 两种标准实现：
//   - NumericID[K]: 64 位有符号整数，由存储侧序列分配
//   - UUIDID[K]:    128 位 UUID，可在本地随机生成
//
// K 是标记类型（marker type），每种聚合一个，例如：
//
//	type userKind struct{}
//	func (userKind) IDKind() string { return "UserID" }
//	type UserID = shared.NumericID[userKind]
//
// 这样不同聚合的 ID 即使底层数值相同也是不同的 Go 类型，无法混用。
type DomainObjectID interface {
	comparable
	IsZero() bool
	String() string
}

// IDKinder 标记类型可选实现，用于错误信息和日志中的类型名
type IDKinder interface {
	IDKind() string
}

// KindName 返回标记类型 K 的名称
func KindName[K any]() string {
	var k K
	if kinder, ok := any(k).(IDKinder); ok {
		return kinder.IDKind()
	}
	return reflect.TypeFor[K]().Name()
}

// ============================================================================
// NumericID
// ============================================================================

// NumericID 数值型标识符
type NumericID[K any] struct {
	SimpleValueObject[int64]
}

// NewNumericID 从原始整数创建标识符；0 和负数同样接受，策略由生成器决定
func NewNumericID[K any](id int64) NumericID[K] {
	return NumericID[K]{SimpleValueObject[int64]{value: id, present: true}}
}

// ParseNumericID 从十进制数字文本创建标识符
func ParseNumericID[K any](s string) (NumericID[K], error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return NumericID[K]{}, NewParseError(KindName[K](), s, err)
	}
	return NewNumericID[K](v), nil
}

// Int64 返回原始整数
func (id NumericID[K]) Int64() int64 { return id.Unwrap() }

// String 十进制文本形式
func (id NumericID[K]) String() string {
	if id.IsZero() {
		return ""
	}
	return strconv.FormatInt(id.value, 10)
}

// Equals 只有同一种 NumericID[K] 且数值相同才相等
func (id NumericID[K]) Equals(other any) bool { return ValueEquals(id, other) }

// ============================================================================
// UUIDID
// ============================================================================

// UUIDID UUID 型标识符，序列化形式为 16 字节大端缓冲区或小写连字符文本
type UUIDID[K any] struct {
	SimpleValueObject[uuid.UUID]
}

// NewUUIDID 生成随机（version 4）标识符
func NewUUIDID[K any]() UUIDID[K] {
	return UUIDIDFrom[K](uuid.New())
}

// UUIDIDFrom 从已有 UUID 创建标识符
func UUIDIDFrom[K any](u uuid.UUID) UUIDID[K] {
	return UUIDID[K]{SimpleValueObject[uuid.UUID]{value: u, present: true}}
}

// ParseUUIDID 从文本形式创建标识符
func ParseUUIDID[K any](s string) (UUIDID[K], error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return UUIDID[K]{}, NewParseError(KindName[K](), s, err)
	}
	return UUIDIDFrom[K](u), nil
}

// UUIDIDFromBytes 从 16 字节大端缓冲区创建标识符
func UUIDIDFromBytes[K any](b []byte) (UUIDID[K], error) {
	if len(b) != 16 {
		return UUIDID[K]{}, NewInvalidArgumentError(KindName[K](), "bytes",
			"uuid buffer must be exactly 16 bytes, got "+strconv.Itoa(len(b)))
	}
	u, err := uuid.FromBytes(b)
	if err != nil {
		return UUIDID[K]{}, NewInvalidArgumentError(KindName[K](), "bytes", err.Error())
	}
	return UUIDIDFrom[K](u), nil
}

// UUID 返回底层 UUID
func (id UUIDID[K]) UUID() uuid.UUID { return id.Unwrap() }

// Bytes 返回 16 字节大端缓冲区（新分配，调用方可随意修改）
func (id UUIDID[K]) Bytes() []byte {
	b := make([]byte, 16)
	copy(b, id.value[:])
	return b
}

// String 小写连字符文本形式
func (id UUIDID[K]) String() string {
	if id.IsZero() {
		return ""
	}
	return id.value.String()
}

// Equals 只有同一种 UUIDID[K] 且 UUID 相同才相等
func (id UUIDID[K]) Equals(other any) bool {
	that, ok := other.(UUIDID[K])
	return ok && id == that
}
