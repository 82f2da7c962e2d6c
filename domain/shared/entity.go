package shared

import "fmt"

// Entity 实体接口
// 实体与值对象的区别：
// 1. 实体有唯一标识（持久化之前可以没有）
// 2. 实体的生命周期较长
// 3. 通过标识判断相等性（即使属性相同，ID不同就是不同的实体）
type Entity interface {
	DeclaredKind() string
	HasIdentifier() bool
	IsNew() bool
	// IdentifierString 标识符的文本形式，瞬态实体返回空串
	IdentifierString() string
	Version() (int64, bool)
}

// Identifiable 暴露具体类型标识符的实体
type Identifiable[ID DomainObjectID] interface {
	Entity
	Identifier() (ID, error)
}

// BaseEntity 实体基类，供具体实体嵌入
//
// 状态机只有两个状态：
//   - Transient（瞬态）: 没有标识符，IsNew() == true
//   - Persisted（已持久化）: 有标识符，单向转换，标识符一旦分配不会清除
//
// 标识符字段放在这里而不是交给子类，是因为生成策略由 idgen 注入，而非由实体决定。
type BaseEntity[ID DomainObjectID] struct {
	kind       string
	id         ID
	version    int64
	hasVersion bool
}

// NewBaseEntity 创建瞬态实体基类
// kind 是声明的领域类型名，用于相等性判断；装饰或代理包装不会改变它
func NewBaseEntity[ID DomainObjectID](kind string) BaseEntity[ID] {
	return BaseEntity[ID]{kind: kind}
}

// DeclaredKind 返回声明的领域类型名
func (e *BaseEntity[ID]) DeclaredKind() string { return e.kind }

// HasIdentifier 是否已有标识符
func (e *BaseEntity[ID]) HasIdentifier() bool { return !e.id.IsZero() }

// IsNew 是否为瞬态实体，恒等于 !HasIdentifier()
func (e *BaseEntity[ID]) IsNew() bool { return e.id.IsZero() }

// Identifier 返回标识符；瞬态实体返回 ErrIllegalState
func (e *BaseEntity[ID]) Identifier() (ID, error) {
	if e.id.IsZero() {
		var zero ID
		return zero, NewIllegalStateError(e.kind, e.kind+" has no identifier yet")
	}
	return e.id, nil
}

// IdentifierString 标识符文本形式
func (e *BaseEntity[ID]) IdentifierString() string {
	if e.id.IsZero() {
		return ""
	}
	return e.id.String()
}

// Version 乐观锁版本号；首次保存前不存在
func (e *BaseEntity[ID]) Version() (int64, bool) {
	return e.version, e.hasVersion
}

// ============================================================================
// 持久化专用方法
// ============================================================================
//
// ⚠️ 注意：以下方法仅应由持久化适配器（Store / 仓储实现）调用，应用层不应调用

// AssignIdentifier 分配标识符（Transient → Persisted）
// 重复分配同一个标识符是幂等的；已持久化实体分配不同标识符返回 ErrIllegalState
func (e *BaseEntity[ID]) AssignIdentifier(id ID) error {
	if id.IsZero() {
		return NewInvalidArgumentError(e.kind, "id", "cannot assign an absent identifier")
	}
	if !e.id.IsZero() {
		if e.id == id {
			return nil
		}
		return NewIllegalStateError(e.kind, fmt.Sprintf("%s already has identifier %s", e.kind, e.id))
	}
	e.id = id
	return nil
}

// RecordVersion 记录持久化引擎写入后的版本号
func (e *BaseEntity[ID]) RecordVersion(version int64) {
	e.version = version
	e.hasVersion = true
}

// Rehydrate 从存储重建时一次性设置标识符和版本号
func (e *BaseEntity[ID]) Rehydrate(id ID, version int64) error {
	if err := e.AssignIdentifier(id); err != nil {
		return err
	}
	e.RecordVersion(version)
	return nil
}

// ============================================================================
// 相等性
// ============================================================================

type entityBaser[ID DomainObjectID] interface {
	entityBase() *BaseEntity[ID]
}

func (e *BaseEntity[ID]) entityBase() *BaseEntity[ID] { return e }

// Equals 实体相等性：
//  1. 同一实例（引用相等）总是相等
//  2. 否则要求声明类型相同，且双方都已持久化并且标识符相等
//
// 两个瞬态实体、或瞬态与已持久化实体永远不相等
func (e *BaseEntity[ID]) Equals(other any) bool {
	// 带类型的 nil 指针（如 (*User)(nil)）也满足 entityBaser，调用前先排除
	if isAbsent(other) {
		return false
	}
	that, ok := other.(entityBaser[ID])
	if !ok {
		return false
	}
	base := that.entityBase()
	if base == e {
		return true
	}
	if e.kind != base.kind {
		return false
	}
	return !e.id.IsZero() && e.id == base.id
}

// persistedKey 已持久化实体的映射键
type persistedKey[ID DomainObjectID] struct {
	kind string
	id   ID
}

// EntityKey 可用作 map 键的标识：
// 已持久化实体返回 (kind, id)，瞬态实体返回实例自身指针，因此不会与已持久化的同值实体冲突
func (e *BaseEntity[ID]) EntityKey() any {
	if e.id.IsZero() {
		return e
	}
	return persistedKey[ID]{kind: e.kind, id: e.id}
}

// String 形如 Order{id=..., version=...}
func (e *BaseEntity[ID]) String() string {
	version := "<none>"
	if e.hasVersion {
		version = fmt.Sprint(e.version)
	}
	id := "<none>"
	if !e.id.IsZero() {
		id = e.id.String()
	}
	return fmt.Sprintf("%s{id=%s, version=%s}", e.kind, id, version)
}
