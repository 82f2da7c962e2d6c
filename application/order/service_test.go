package order

import (
	"context"
	"errors"
	"testing"

	"hexagonal/domain/order"
	"hexagonal/domain/shared"
	"hexagonal/domain/user"
	"hexagonal/infrastructure/persistence/gormdb"
	"hexagonal/infrastructure/persistence/gormdb/po"
	"hexagonal/infrastructure/persistence/idgen"
	"hexagonal/infrastructure/persistence/retry"
)

type fixture struct {
	service *ApplicationService
	users   *gormdb.UserRepository
	bus     *shared.EventBus
}

func setup(t *testing.T) fixture {
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
	userGen := idgen.NewSequenceGenerator(idgen.NewMemorySequence("user_id_seq", 1, 1), po.UserIDCodec.FromStorage)
	users := gormdb.NewUserRepository(db, userGen, bus)
	orders := gormdb.NewOrderRepository(db, idgen.NewUUIDGenerator[order.Kind](), bus)
	factory := gormdb.NewUnitOfWorkFactory(db, bus, retry.DefaultConfig)

	return fixture{
		service: NewApplicationService(orders, users, factory),
		users:   users,
		bus:     bus,
	}
}

func (f fixture) createUser(t *testing.T, email string, age int, active bool) string {
	t.Helper()
	u, err := user.NewUser("buyer", email, age)
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if !active {
		_ = u.Deactivate()
	}
	if err := f.users.Save(context.Background(), u); err != nil {
		t.Fatalf("Save user: %v", err)
	}
	return u.IdentifierString()
}

func itemRequest() []OrderItemRequest {
	return []OrderItemRequest{
		{ProductID: "p-1", ProductName: "Pen", Quantity: 3, UnitPrice: 250, Currency: "cny"},
		{ProductID: "p-2", ProductName: "Ink", Quantity: 1, UnitPrice: 900, Currency: "CNY"},
	}
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	userID := f.createUser(t, "buyer@example.com", 30, true)

	resp, err := f.service.CreateOrder(ctx, CreateOrderRequest{UserID: userID, Items: itemRequest()})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if resp.ID == "" || resp.UserID != userID || resp.Status != string(order.StatusPending) {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.TotalAmount.Amount != 1650 || resp.TotalAmount.Currency != "CNY" {
		t.Errorf("unexpected total %+v", resp.TotalAmount)
	}

	got, err := f.service.GetOrder(ctx, resp.ID)
	if err != nil || got.ID != resp.ID || len(got.Items) != 2 {
		t.Fatalf("GetOrder: %+v %v", got, err)
	}

	var placed bool
	for _, h := range f.bus.GetPublishHistory() {
		if h.EventName == "order.placed" && h.AggregateID == resp.ID {
			placed = true
		}
	}
	if !placed {
		t.Error("order.placed must be published with the assigned identifier")
	}
	t.Log("✓ create order passed")
}

func TestCreateOrderRejected(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	inactive := f.createUser(t, "inactive@example.com", 30, false)
	minor := f.createUser(t, "minor@example.com", 15, true)

	tests := []struct {
		name string
		req  CreateOrderRequest
		want error
	}{
		{"malformed user id", CreateOrderRequest{UserID: "abc", Items: itemRequest()}, shared.ErrParse},
		{"unknown user", CreateOrderRequest{UserID: "999", Items: itemRequest()}, shared.ErrNotFound},
		{"inactive user", CreateOrderRequest{UserID: inactive, Items: itemRequest()}, user.ErrUserNotActive},
		{"too young", CreateOrderRequest{UserID: minor, Items: itemRequest()}, user.ErrUserTooYoung},
		{"bad currency", CreateOrderRequest{UserID: minor, Items: []OrderItemRequest{
			{ProductID: "p", ProductName: "P", Quantity: 1, UnitPrice: 1, Currency: "EURO"},
		}}, shared.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreateOrder(ctx, tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestOrderLifecycle(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	userID := f.createUser(t, "life@example.com", 40, true)
	created, err := f.service.CreateOrder(ctx, CreateOrderRequest{UserID: userID, Items: itemRequest()})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if err := f.service.ProcessOrder(ctx, created.ID); err != nil {
		t.Fatalf("ProcessOrder: %v", err)
	}
	if err := f.service.ProcessOrder(ctx, created.ID); !errors.Is(err, order.ErrInvalidOrderState) {
		t.Errorf("processing twice must fail with ErrInvalidOrderState, got %v", err)
	}

	steps := []struct {
		status string
		want   error
	}{
		{"SHIPPED", nil},
		{"DELIVERED", nil},
		{"CANCELLED", order.ErrInvalidOrderState},
	}
	for _, step := range steps {
		err := f.service.UpdateOrderStatus(ctx, UpdateOrderStatusRequest{OrderID: created.ID, Status: step.status})
		if !errors.Is(err, step.want) {
			t.Fatalf("%s: expected %v, got %v", step.status, step.want, err)
		}
	}

	got, _ := f.service.GetOrder(ctx, created.ID)
	if got.Status != "DELIVERED" || got.Version != 3 {
		t.Errorf("expected DELIVERED at version 3, got %s/%d", got.Status, got.Version)
	}

	if open, _ := f.service.GetOpenOrders(ctx, userID); len(open) != 0 {
		t.Errorf("delivered order is not open, got %d", len(open))
	}
	if all, _ := f.service.GetUserOrders(ctx, userID); len(all) != 1 {
		t.Errorf("expected 1 order, got %d", len(all))
	}
	if err := f.service.RemoveOrder(ctx, created.ID); !errors.Is(err, order.ErrInvalidOrderState) {
		t.Errorf("only cancelled orders can be removed, got %v", err)
	}
}

func TestRemoveCancelledOrder(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	userID := f.createUser(t, "cancel@example.com", 40, true)
	created, err := f.service.CreateOrder(ctx, CreateOrderRequest{UserID: userID, Items: itemRequest()})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	err = f.service.UpdateOrderStatus(ctx, UpdateOrderStatusRequest{OrderID: created.ID, Status: "CANCELLED", Reason: "changed mind"})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if open, _ := f.service.GetOpenOrders(ctx, userID); len(open) != 0 {
		t.Errorf("cancelled order is not open, got %d", len(open))
	}
	if err := f.service.RemoveOrder(ctx, created.ID); err != nil {
		t.Fatalf("RemoveOrder: %v", err)
	}
	if _, err := f.service.GetOrder(ctx, created.ID); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected ErrNotFound after removal, got %v", err)
	}
}
