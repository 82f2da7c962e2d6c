package gormdb

import (
	"hexagonal/infrastructure/persistence/gormdb/po"
	"hexagonal/infrastructure/persistence/idgen"

	"gorm.io/gorm"
)

// Models 由本包管理的全部表
func Models() []any {
	return []any{
		&po.UserPO{},
		&po.OrderPO{},
		&po.OutboxEventPO{},
		&idgen.SequenceRow{},
	}
}

// AutoMigrate 建表（开发环境与测试使用）
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
