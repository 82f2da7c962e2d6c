// Package po 持久化对象（Persistence Object），只做数据库映射，不含业务逻辑
package po

import (
	"hexagonal/domain/order"
	"hexagonal/domain/user"
	"hexagonal/infrastructure/persistence/codec"
)

// 注册到 GORM 的序列化器；名字即 struct tag 中的 serializer:xxx
var (
	// UserIDCodec users.id / orders.user_id：BIGINT
	UserIDCodec = codec.MustRegister(codec.NewNumericIDCodec[user.Kind]("user_id", codec.FormNative))

	// OrderIDCodec orders.id：CHAR(36) 规范文本
	OrderIDCodec = codec.MustRegister(codec.NewUUIDIDCodec[order.Kind]("order_id", codec.FormString))

	// EmailCodec users.email
	EmailCodec = codec.MustRegister(codec.NewValueObjectCodec("email", user.NewEmail, user.Email.Value))
)
