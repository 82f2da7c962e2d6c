package gormdb

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hexagonal/domain/order"
	"hexagonal/domain/shared"
	"hexagonal/domain/user"
	"hexagonal/infrastructure/persistence"
	"hexagonal/infrastructure/persistence/gormdb/po"
	"hexagonal/infrastructure/persistence/idgen"
	"hexagonal/infrastructure/persistence/retry"
	"hexagonal/pkg/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"
)

// ============================================================================
// helpers
// ============================================================================

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &Config{Type: "sqlite", Database: "file::memory:", LogLevel: "silent"}
	db, err := cfg.Connect()
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// countingGenerator records every call to Generate
type countingGenerator[ID shared.DomainObjectID] struct {
	next  idgen.Generator[ID]
	mu    sync.Mutex
	calls int
}

func (g *countingGenerator[ID]) Generate(ctx context.Context, gc idgen.GenerationContext) (ID, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	return g.next.Generate(ctx, gc)
}

func (g *countingGenerator[ID]) SupportsBatchInserts() bool { return g.next.SupportsBatchInserts() }

func (g *countingGenerator[ID]) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func userGenerator() *countingGenerator[user.ID] {
	seq := idgen.NewMemorySequence("user_id_seq", 1, 1)
	return &countingGenerator[user.ID]{next: idgen.NewSequenceGenerator(seq, po.UserIDCodec.FromStorage)}
}

func orderGenerator() *countingGenerator[order.ID] {
	return &countingGenerator[order.ID]{next: idgen.NewUUIDGenerator[order.Kind]()}
}

// recordingSink 记录发布的事件，failing 为 true 时返回错误
type recordingSink struct {
	mu        sync.Mutex
	failing   bool
	envelopes []shared.Envelope
}

var errSinkDown = errors.New("sink down")

func (s *recordingSink) Publish(_ context.Context, source shared.EventSource, events []shared.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errSinkDown
	}
	for _, e := range events {
		s.envelopes = append(s.envelopes, shared.Envelope{
			AggregateKind: source.DeclaredKind(),
			AggregateID:   source.IdentifierString(),
			Event:         e,
		})
	}
	return nil
}

func (s *recordingSink) setFailing(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = v
}

func (s *recordingSink) published() []shared.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]shared.Envelope(nil), s.envelopes...)
}

func newUser(t *testing.T, name, email string, age int) *user.User {
	t.Helper()
	u, err := user.NewUser(name, email, age)
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	return u
}

func newOrder(t *testing.T, userID user.ID) *order.Order {
	t.Helper()
	price, err := shared.NewMoney(1200, "CNY")
	if err != nil {
		t.Fatalf("NewMoney: %v", err)
	}
	o, err := order.NewOrder(userID, []order.ItemRequest{
		{ProductID: "p-1", ProductName: "Notebook", Quantity: 2, UnitPrice: price},
	})
	if err != nil {
		t.Fatalf("NewOrder: %v", err)
	}
	return o
}

func noRetry() retry.Config {
	cfg := retry.DefaultConfig
	cfg.Enabled = false
	return cfg
}

// fastRetry 乐观锁冲突立即重试，最多 3 次
func fastRetry() retry.Config {
	cfg := retry.DefaultConfig
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = time.Millisecond
	cfg.JitterEnabled = false
	return cfg
}

// ============================================================================
// Store
// ============================================================================

func TestSaveGeneratesIdentifierOnce(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	gen := userGenerator()
	sink := &recordingSink{}
	repo := NewUserRepository(db, gen, sink)

	u := newUser(t, "Alice", "alice@example.com", 30)
	if err := repo.Save(ctx, u); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if gen.Calls() != 1 {
		t.Errorf("expected generator to be called once, got %d", gen.Calls())
	}
	id, err := u.Identifier()
	if err != nil || id.Int64() != 1 {
		t.Fatalf("expected identifier 1, got %v (%v)", id, err)
	}
	if v, ok := u.Version(); !ok || v != 0 {
		t.Errorf("expected version 0 after insert, got %d/%v", v, ok)
	}

	published := sink.published()
	if len(published) != 1 || published[0].AggregateID != "1" || published[0].AggregateKind != user.AggregateKind {
		t.Fatalf("unexpected publication %+v", published)
	}
	if len(u.PendingEvents()) != 0 {
		t.Error("events must be cleared after a successful publication")
	}

	if err := u.UpdateName("Alice B."); err != nil {
		t.Fatalf("UpdateName: %v", err)
	}
	if err := repo.Save(ctx, u); err != nil {
		t.Fatalf("update: %v", err)
	}
	if gen.Calls() != 1 {
		t.Errorf("update must not call the generator, got %d calls", gen.Calls())
	}
	if v, _ := u.Version(); v != 1 {
		t.Errorf("expected version 1 after update, got %d", v)
	}

	loaded, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if loaded.Name() != "Alice B." || !loaded.Equals(u) || loaded.Email() != u.Email() {
		t.Errorf("unexpected loaded user %v", loaded)
	}
	t.Log("✓ generator discipline passed")
}

func TestSaveKeepsPreassignedIdentifier(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	gen := orderGenerator()
	repo := NewOrderRepository(db, gen, nil)

	o := newOrder(t, user.NewID(9))
	id := shared.UUIDIDFrom[order.Kind](uuid.MustParse("123e4567-e89b-12d3-a456-426614174000"))
	if err := o.AssignIdentifier(id); err != nil {
		t.Fatalf("AssignIdentifier: %v", err)
	}
	if err := repo.Save(ctx, o); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if gen.Calls() != 0 {
		t.Errorf("generator must not run for an entity that has an identifier, got %d calls", gen.Calls())
	}

	var row po.OrderPO
	if err := db.Take(&row).Error; err != nil {
		t.Fatalf("load row: %v", err)
	}
	if row.ID != "123e4567-e89b-12d3-a456-426614174000" || row.UserID != user.NewID(9) {
		t.Errorf("unexpected stored row id=%s user=%v", row.ID, row.UserID)
	}
	if len(o.PendingEvents()) != 1 {
		t.Error("without a sink events stay on the aggregate")
	}
}

func TestOrderRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	repo := NewOrderRepository(db, orderGenerator(), nil)

	o := newOrder(t, user.NewID(3))
	if err := repo.Save(ctx, o); err != nil {
		t.Fatalf("Save: %v", err)
	}
	id, _ := o.Identifier()

	loaded, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if !loaded.Equals(o) || loaded.UserID() != user.NewID(3) {
		t.Errorf("loaded order differs: %v", loaded)
	}
	items := loaded.Items()
	if len(items) != 1 || items[0].ID() != o.Items()[0].ID() || items[0].Subtotal().Amount() != 2400 {
		t.Errorf("items not preserved: %+v", items)
	}
	if loaded.TotalAmount().Amount() != 2400 || loaded.TotalAmount().Currency() != "CNY" {
		t.Errorf("unexpected total %s", loaded.TotalAmount())
	}

	byUser, err := repo.FindByUserID(ctx, user.NewID(3))
	if err != nil || len(byUser) != 1 {
		t.Fatalf("FindByUserID: %v (%d)", err, len(byUser))
	}
	if none, _ := repo.FindByUserID(ctx, user.NewID(4)); len(none) != 0 {
		t.Errorf("expected no orders for another user, got %d", len(none))
	}

	_, err = repo.FindByID(ctx, shared.NewUUIDID[order.Kind]())
	if !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOptimisticConflict(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	repo := NewUserRepository(db, userGenerator(), nil)

	u := newUser(t, "Bob", "bob@example.com", 40)
	if err := repo.Save(ctx, u); err != nil {
		t.Fatalf("Save: %v", err)
	}
	id, _ := u.Identifier()

	first, _ := repo.FindByID(ctx, id)
	second, _ := repo.FindByID(ctx, id)

	_ = first.UpdateName("Bob One")
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("first update: %v", err)
	}

	before := testutil.ToFloat64(metrics.OptimisticConflicts.WithLabelValues(user.AggregateKind))
	_ = second.UpdateName("Bob Two")
	err := repo.Save(ctx, second)
	if !errors.Is(err, shared.ErrOptimisticLockConflict) {
		t.Fatalf("expected ErrOptimisticLockConflict, got %v", err)
	}
	if v, _ := second.Version(); v != 0 {
		t.Errorf("failed update must not advance the version, got %d", v)
	}
	after := testutil.ToFloat64(metrics.OptimisticConflicts.WithLabelValues(user.AggregateKind))
	if after != before+1 {
		t.Errorf("expected conflict counter to grow by 1, got %v -> %v", before, after)
	}

	if err := repo.Remove(ctx, second); !errors.Is(err, shared.ErrOptimisticLockConflict) {
		t.Errorf("stale remove must conflict, got %v", err)
	}
	if err := repo.Remove(ctx, first); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := repo.FindByID(ctx, id); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected ErrNotFound after remove, got %v", err)
	}
	if err := repo.Remove(ctx, first); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected ErrNotFound removing twice, got %v", err)
	}
	t.Log("✓ optimistic conflict passed")
}

func TestFailedSaveKeepsEntityTransient(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	sink := &recordingSink{}
	repo := NewUserRepository(db, userGenerator(), sink)

	if err := repo.Save(ctx, newUser(t, "Carol", "carol@example.com", 25)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	dup := newUser(t, "Carol 2", "CAROL@example.com", 26)
	err := repo.Save(ctx, dup)
	if !errors.Is(err, user.ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
	if !dup.IsNew() {
		t.Error("a failed insert must leave the entity transient")
	}
	if _, ok := dup.Version(); ok {
		t.Error("a failed insert must not record a version")
	}
	if len(dup.PendingEvents()) != 1 {
		t.Errorf("a failed save must keep events, got %d", len(dup.PendingEvents()))
	}
	if len(sink.published()) != 1 {
		t.Errorf("only the first user's event may reach the sink, got %d", len(sink.published()))
	}
}

func TestFindBySpecification(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	repo := NewUserRepository(db, userGenerator(), nil)

	for _, u := range []struct {
		name, email string
		age         int
		active      bool
	}{
		{"Ann", "ann@example.com", 17, true},
		{"Ben", "ben@example.com", 30, true},
		{"Cid", "cid@example.com", 45, false},
		{"Dee", "dee@example.com", 60, true},
	} {
		agg := newUser(t, u.name, u.email, u.age)
		if !u.active {
			_ = agg.Deactivate()
		}
		if err := repo.Save(ctx, agg); err != nil {
			t.Fatalf("Save %s: %v", u.name, err)
		}
	}

	names := func(users []*user.User) map[string]bool {
		out := map[string]bool{}
		for _, u := range users {
			out[u.Name()] = true
		}
		return out
	}

	tests := []struct {
		name string
		spec shared.Specification[*user.User]
		want []string
	}{
		{"active adults", shared.And(user.NewByStatusSpecification(true), user.NewByAgeRangeSpecification(18, 0)), []string{"Ben", "Dee"}},
		{"not in range", shared.Not(user.NewByAgeRangeSpecification(20, 50)), []string{"Ann", "Dee"}},
		{"in-memory fallback", adultSpec{}, []string{"Ben", "Cid", "Dee"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FindBySpecification(ctx, tt.spec)
			if err != nil {
				t.Fatalf("FindBySpecification: %v", err)
			}
			set := names(got)
			if len(set) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, set)
			}
			for _, n := range tt.want {
				if !set[n] {
					t.Errorf("expected %s in %v", n, set)
				}
			}
		})
	}

	email, _ := user.NewEmail("ben@example.com")
	ben, err := repo.FindByEmail(ctx, email)
	if err != nil || ben.Name() != "Ben" {
		t.Fatalf("FindByEmail: %v %v", ben, err)
	}
	missing, _ := user.NewEmail("nobody@example.com")
	if _, err := repo.FindByEmail(ctx, missing); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// adultSpec has no SQL translation
type adultSpec struct{}

func (adultSpec) IsSatisfiedBy(_ context.Context, u *user.User) bool { return u.Age() >= 18 }

// ============================================================================
// UnitOfWork
// ============================================================================

func TestUnitOfWorkPublishesAfterCommit(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	sink := &recordingSink{}
	users := NewUserRepository(db, userGenerator(), nil)
	orders := NewOrderRepository(db, orderGenerator(), nil)
	uow := NewUnitOfWork(db, sink)

	u := newUser(t, "Dan", "dan@example.com", 33)
	var o *order.Order
	err := uow.Execute(ctx, func(ctx context.Context) error {
		if err := users.Save(ctx, u); err != nil {
			return err
		}
		if len(sink.published()) != 0 {
			t.Error("nothing may be published before commit")
		}
		id, _ := u.Identifier()
		o = newOrder(t, id)
		return orders.Save(ctx, o)
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	published := sink.published()
	if len(published) != 2 {
		t.Fatalf("expected 2 events, got %d", len(published))
	}
	if published[0].Event.EventName() != "user.created" || published[1].Event.EventName() != "order.placed" {
		t.Errorf("unexpected publication order %s, %s", published[0].Event.EventName(), published[1].Event.EventName())
	}
	if published[1].AggregateID != o.IdentifierString() {
		t.Errorf("order event stamped with %q, want %q", published[1].AggregateID, o.IdentifierString())
	}
	if len(u.PendingEvents())+len(o.PendingEvents()) != 0 {
		t.Error("published events must be cleared")
	}
	t.Log("✓ unit of work publication passed")
}

func TestUnitOfWorkRollbackPublishesNothing(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	sink := &recordingSink{}
	users := NewUserRepository(db, userGenerator(), nil)
	uow := NewUnitOfWork(db, sink)
	uow.SetRetryConfig(noRetry())

	boom := errors.New("business rule violated")
	u := newUser(t, "Eve", "eve@example.com", 28)
	err := uow.Execute(ctx, func(ctx context.Context) error {
		if err := users.Save(ctx, u); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected business error, got %v", err)
	}
	if len(sink.published()) != 0 {
		t.Error("a rolled back unit of work must not publish")
	}
	if len(u.PendingEvents()) != 1 {
		t.Error("a rolled back unit of work must keep the events")
	}
	var count int64
	db.Model(&po.UserPO{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no rows after rollback, got %d", count)
	}
}

func TestUnitOfWorkPublicationFailure(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	sink := &recordingSink{failing: true}
	users := NewUserRepository(db, userGenerator(), nil)
	uow := NewUnitOfWork(db, sink)

	u := newUser(t, "Fay", "fay@example.com", 50)
	uow.RegisterNew(u)
	err := uow.Execute(ctx, func(ctx context.Context) error {
		return users.Save(ctx, u)
	})

	var pubErr *PublicationError
	if !errors.As(err, &pubErr) {
		t.Fatalf("expected *PublicationError, got %v", err)
	}
	if !errors.Is(err, errSinkDown) {
		t.Error("publication error must wrap the sink error")
	}
	if retry.IsRetryableError(err, retry.DefaultConfig) {
		t.Error("publication errors must not be retried")
	}
	if u.IsNew() {
		t.Error("the save committed, the user must be persisted")
	}
	if len(u.PendingEvents()) != 1 {
		t.Fatalf("failed publication must keep events, got %d", len(u.PendingEvents()))
	}
	if len(pubErr.Aggregates()) != 1 {
		t.Errorf("aggregate registered and tracked must be reported once, got %d", len(pubErr.Aggregates()))
	}

	sink.setFailing(false)
	if err := uow.PublishPending(ctx, pubErr.Aggregates()...); err != nil {
		t.Fatalf("PublishPending: %v", err)
	}
	if len(u.PendingEvents()) != 0 || len(sink.published()) != 1 {
		t.Error("retrying publication must deliver and clear the events")
	}
	t.Log("✓ publication failure passed")
}

func TestUnitOfWorkRetryPublishesOnlyCommittedAttempt(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	sink := &recordingSink{}
	users := NewUserRepository(db, userGenerator(), nil)
	uow := NewUnitOfWork(db, sink)
	uow.SetRetryConfig(fastRetry())

	t.Run("tracked saves", func(t *testing.T) {
		first := newUser(t, "Hal", "hal@example.com", 40)
		second := newUser(t, "Ivy", "ivy@example.com", 41)
		before := len(sink.published())

		attempts := 0
		err := uow.Execute(ctx, func(ctx context.Context) error {
			attempts++
			if attempts == 1 {
				if err := users.Save(ctx, first); err != nil {
					return err
				}
				return shared.NewOptimisticLockError("User", first.IdentifierString(), 1)
			}
			return users.Save(ctx, second)
		})
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if attempts != 2 {
			t.Fatalf("expected 2 attempts, got %d", attempts)
		}

		published := sink.published()[before:]
		if len(published) != 1 || published[0].AggregateID != second.IdentifierString() {
			t.Fatalf("only the committed attempt may publish, got %+v", published)
		}
		if len(first.PendingEvents()) != 1 {
			t.Error("aggregate saved by a rolled back attempt must keep its events")
		}
		var count int64
		db.Model(&po.UserPO{}).Where("email = ?", "hal@example.com").Count(&count)
		if count != 0 {
			t.Error("rolled back attempt must not leave a row")
		}
	})

	t.Run("registered aggregates", func(t *testing.T) {
		outside := newUser(t, "Jay", "jay@example.com", 42)
		rolledBack := newUser(t, "Kim", "kim@example.com", 43)
		committed := newUser(t, "Lou", "lou@example.com", 44)
		before := len(sink.published())

		uow.RegisterNew(outside)
		attempts := 0
		err := uow.Execute(ctx, func(ctx context.Context) error {
			attempts++
			if attempts == 1 {
				uow.RegisterDirty(rolledBack)
				return shared.NewOptimisticLockError("User", "kim", 1)
			}
			uow.RegisterDirty(committed)
			return nil
		})
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if attempts != 2 {
			t.Fatalf("expected 2 attempts, got %d", attempts)
		}

		if got := len(sink.published()) - before; got != 2 {
			t.Errorf("expected 2 events (outside + committed), got %d", got)
		}
		if len(outside.PendingEvents()) != 0 || len(committed.PendingEvents()) != 0 {
			t.Error("aggregates registered before Execute and in the committed attempt must be published")
		}
		if len(rolledBack.PendingEvents()) != 1 {
			t.Error("aggregate registered in a rolled back attempt must not be published")
		}
		if len(uow.Registered()) != 0 {
			t.Error("registrations must not leak into the next Execute")
		}
	})
	t.Log("✓ unit of work retry passed")
}

func TestTrackerDeduplicates(t *testing.T) {
	tracker := persistence.NewTracker()
	u := newUser(t, "Gus", "gus@example.com", 20)
	tracker.Track(u)
	tracker.Track(u)
	tracker.Track(nil)
	if got := len(tracker.Aggregates()); got != 1 {
		t.Errorf("expected 1 tracked aggregate, got %d", got)
	}
}
