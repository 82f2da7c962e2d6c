package gormdb

import (
	"hexagonal/domain/shared"
	"hexagonal/infrastructure/persistence/retry"

	"gorm.io/gorm"
)

type UnitOfWorkFactory struct {
	db          *gorm.DB
	sink        shared.EventSink
	retryConfig retry.Config
}

func NewUnitOfWorkFactory(db *gorm.DB, sink shared.EventSink, retryConfig retry.Config) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		db:          db,
		sink:        sink,
		retryConfig: retryConfig,
	}
}

func (f *UnitOfWorkFactory) New() shared.UnitOfWork {
	uow := NewUnitOfWork(f.db, f.sink)
	uow.SetRetryConfig(f.retryConfig)
	return uow
}

var _ shared.UnitOfWorkFactory = (*UnitOfWorkFactory)(nil)
