package user

import (
	"context"
	"errors"
	"testing"

	"hexagonal/application/stereotype"
	"hexagonal/domain/order"
	"hexagonal/domain/shared"
	"hexagonal/domain/user"
	"hexagonal/infrastructure/persistence/gormdb"
	"hexagonal/infrastructure/persistence/gormdb/po"
	"hexagonal/infrastructure/persistence/idgen"
	"hexagonal/infrastructure/persistence/retry"
)

func setup(t *testing.T) (*ApplicationService, *gormdb.OrderRepository) {
	t.Helper()
	cfg := &gormdb.Config{Type: "sqlite", Database: "file::memory:", LogLevel: "silent"}
	db, err := cfg.Connect()
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := gormdb.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	bus := shared.NewEventBus()
	userGen := idgen.NewSequenceGenerator(idgen.NewMemorySequence("user_id_seq", 100, 1), po.UserIDCodec.FromStorage)
	users := gormdb.NewUserRepository(db, userGen, bus)
	orders := gormdb.NewOrderRepository(db, idgen.NewUUIDGenerator[order.Kind](), bus)
	return NewApplicationService(users, orders, gormdb.NewUnitOfWorkFactory(db, bus, retry.DefaultConfig)), orders
}

func TestCreateAndGetUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	created, err := svc.CreateUser(ctx, CreateUserRequest{Name: "Lin", Email: "Lin@Example.com", Age: 29})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if created.ID != "100" || created.Email != "lin@example.com" || !created.IsActive || created.Version != 0 {
		t.Errorf("unexpected response %+v", created)
	}

	got, err := svc.GetUser(ctx, created.ID)
	if err != nil || got.Name != "Lin" {
		t.Fatalf("GetUser: %+v %v", got, err)
	}

	_, err = svc.CreateUser(ctx, CreateUserRequest{Name: "Lin 2", Email: "lin@example.com", Age: 30})
	if !errors.Is(err, user.ErrEmailAlreadyExists) {
		t.Errorf("expected ErrEmailAlreadyExists, got %v", err)
	}

	tests := []struct {
		name string
		id   string
		want error
	}{
		{"malformed", "x1", shared.ErrParse},
		{"missing", "7", shared.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.GetUser(ctx, tt.id); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
	t.Log("✓ create user passed")
}

func TestUpdateUserStatus(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)
	created, err := svc.CreateUser(ctx, CreateUserRequest{Name: "Mo", Email: "mo@example.com", Age: 41})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if err := svc.UpdateUserStatus(ctx, UpdateUserStatusRequest{UserID: created.ID, Active: false}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	got, _ := svc.GetUser(ctx, created.ID)
	if got.IsActive || got.Version != 1 {
		t.Errorf("expected inactive user at version 1, got %+v", got)
	}

	ok, err := svc.CanUserPlaceOrder(ctx, created.ID)
	if ok || !errors.Is(err, user.ErrUserNotActive) {
		t.Errorf("inactive user cannot order, got %v %v", ok, err)
	}
}

func TestGetUserTotalSpent(t *testing.T) {
	ctx := context.Background()
	svc, orders := setup(t)
	created, err := svc.CreateUser(ctx, CreateUserRequest{Name: "Ned", Email: "ned@example.com", Age: 52})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	userID, _ := user.ParseID(created.ID)

	place := func(amount int64, deliver bool) {
		price, _ := shared.NewMoney(amount, "CNY")
		o, err := order.NewOrder(userID, []order.ItemRequest{{ProductID: "p", ProductName: "P", Quantity: 1, UnitPrice: price}})
		if err != nil {
			t.Fatalf("NewOrder: %v", err)
		}
		if deliver {
			_ = o.Confirm()
			_ = o.Ship()
			_ = o.Deliver()
		}
		if err := orders.Save(ctx, o); err != nil {
			t.Fatalf("Save order: %v", err)
		}
	}
	place(1000, true)
	place(2500, true)
	place(9999, false)

	resp, err := svc.GetUserTotalSpent(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUserTotalSpent: %v", err)
	}
	if resp.TotalAmount != 3500 || resp.Currency != "CNY" {
		t.Errorf("expected 3500 CNY, got %+v", resp)
	}
}

func TestRegisteredAsApplicationService(t *testing.T) {
	if !stereotype.Is[ApplicationService](stereotype.ApplicationService) {
		t.Error("user ApplicationService must be registered")
	}
}
