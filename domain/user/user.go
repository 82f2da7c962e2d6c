package user

import (
	"time"

	"hexagonal/domain/shared"
)

// AggregateKind 用户聚合的声明类型名
const AggregateKind = "User"

// User 用户聚合根
// User是一个简单的聚合根，聚合内只有User自身，没有子实体
//
// 标识符和版本号由 shared.BaseAggregateRoot 维护：
// NewUser 创建的用户是瞬态的，首次保存时由序列分配 ID
type User struct {
	shared.BaseAggregateRoot[ID]

	name      string
	email     Email
	age       int
	isActive  bool
	createdAt time.Time
	updatedAt time.Time
}

// NewUser 创建新用户（瞬态，尚无标识符）
func NewUser(name string, email string, age int) (*User, error) {
	if name == "" {
		return nil, NewInvalidNameError()
	}

	emailVO, err := NewEmail(email)
	if err != nil {
		return nil, err
	}

	if age < 0 || age > 150 {
		return nil, NewInvalidAgeError(age)
	}

	now := time.Now()
	u := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot[ID](AggregateKind),
		name:              name,
		email:             emailVO,
		age:               age,
		isActive:          true,
		createdAt:         now,
		updatedAt:         now,
	}

	// 事件不带用户 ID：此时还没有，发布时从聚合根读取
	if err := u.RegisterEvent(NewUserCreatedEvent(u.name, u.email.Value())); err != nil {
		return nil, err
	}
	return u, nil
}

// ============================================================================
// 领域行为方法
// ============================================================================

// Activate 激活用户
func (u *User) Activate() error {
	if u.isActive {
		return nil
	}
	u.isActive = true
	u.updatedAt = time.Now()
	return u.RegisterEvent(NewUserActivatedEvent())
}

// Deactivate 停用用户
func (u *User) Deactivate() error {
	if !u.isActive {
		return nil
	}
	u.isActive = false
	u.updatedAt = time.Now()
	return u.RegisterEvent(NewUserDeactivatedEvent())
}

// UpdateName 更新用户名称
func (u *User) UpdateName(name string) error {
	if name == "" {
		return NewInvalidNameError()
	}
	u.name = name
	u.updatedAt = time.Now()
	return nil
}

// CanMakePurchase 业务规则：用户必须激活且年满18岁
func (u *User) CanMakePurchase() bool {
	return u.isActive && u.age >= 18
}

// ============================================================================
// Getters
// ============================================================================

func (u *User) Name() string         { return u.name }
func (u *User) Email() Email         { return u.email }
func (u *User) Age() int             { return u.age }
func (u *User) IsActive() bool       { return u.isActive }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// ReconstructionDTO 用户重建数据传输对象
// ⚠️ 注意：此DTO仅应在仓储实现中使用，不应在应用层调用
type ReconstructionDTO struct {
	ID        ID
	Name      string
	Email     Email
	Age       int
	IsActive  bool
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RebuildFromDTO 从DTO重建User聚合根（已持久化状态，无待发布事件）
// ⚠️ 注意：此方法仅应在仓储实现中使用，不应在应用层调用
func RebuildFromDTO(dto ReconstructionDTO) (*User, error) {
	u := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot[ID](AggregateKind),
		name:              dto.Name,
		email:             dto.Email,
		age:               dto.Age,
		isActive:          dto.IsActive,
		createdAt:         dto.CreatedAt,
		updatedAt:         dto.UpdatedAt,
	}
	if err := u.Rehydrate(dto.ID, dto.Version); err != nil {
		return nil, err
	}
	return u, nil
}

// 编译时检查 User 实现了 AggregateRoot 接口
var _ = shared.IsAggregateRoot(&User{})
