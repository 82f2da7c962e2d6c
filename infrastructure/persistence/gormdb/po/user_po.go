package po

import (
	"time"

	"hexagonal/domain/user"
)

// UserPO 用户持久化对象
// 主键列保持原始 int64，由 UserIDCodec 显式转换；email 通过序列化器映射
type UserPO struct {
	ID        int64      `gorm:"primaryKey;autoIncrement:false"`
	Name      string     `gorm:"size:100;not null"`
	Email     user.Email `gorm:"serializer:email;size:255;uniqueIndex;not null"`
	Age       int        `gorm:"not null"`
	IsActive  bool       `gorm:"not null"`
	Version   int64      `gorm:"not null"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
}

func (UserPO) TableName() string {
	return "users"
}

// FromUserDomain 领域对象 → 持久化对象；id 与 version 由 Store 决定
func FromUserDomain(u *user.User, id user.ID, version int64) (*UserPO, error) {
	raw, err := UserIDCodec.ToStorage(id)
	if err != nil {
		return nil, err
	}
	return &UserPO{
		ID:        raw.(int64),
		Name:      u.Name(),
		Email:     u.Email(),
		Age:       u.Age(),
		IsActive:  u.IsActive(),
		Version:   version,
		CreatedAt: u.CreatedAt(),
		UpdatedAt: u.UpdatedAt(),
	}, nil
}

// ToDomain 持久化对象 → 领域对象
func (po *UserPO) ToDomain() (*user.User, error) {
	id, err := UserIDCodec.FromStorage(po.ID)
	if err != nil {
		return nil, err
	}
	return user.RebuildFromDTO(user.ReconstructionDTO{
		ID:        id,
		Name:      po.Name,
		Email:     po.Email,
		Age:       po.Age,
		IsActive:  po.IsActive,
		Version:   po.Version,
		CreatedAt: po.CreatedAt,
		UpdatedAt: po.UpdatedAt,
	})
}
