package shared

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEventBusStampsSource(t *testing.T) {
	bus := NewEventBus()
	var got []Envelope
	err := bus.Subscribe("account.opened", NewFuncHandler("collector", func(_ context.Context, env Envelope) error {
		got = append(got, env)
		return nil
	}))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	a := newAccount("a")
	persist(t, a, 11)
	events := []DomainEvent{accountOpened{at: time.Now()}, accountOpened{at: time.Now()}}
	if err := bus.Publish(context.Background(), a, events); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 envelopes, got %d", len(got))
	}
	for _, env := range got {
		if env.AggregateKind != "Account" || env.AggregateID != "11" {
			t.Errorf("unexpected envelope source: %+v", env)
		}
	}
	if history := bus.GetPublishHistory(); len(history) != 2 || !history[0].Success {
		t.Errorf("unexpected history: %+v", history)
	}
}

func TestEventBusHandlerFailure(t *testing.T) {
	bus := NewEventBus()
	boom := errors.New("boom")
	_ = bus.Subscribe("account.opened", NewFuncHandler("failing", func(context.Context, Envelope) error {
		return boom
	}))

	a := newAccount("a")
	persist(t, a, 1)
	err := bus.Publish(context.Background(), a, []DomainEvent{accountOpened{at: time.Now()}})
	if !errors.Is(err, boom) {
		t.Errorf("expected handler error to propagate, got %v", err)
	}
}

func TestEventBusRejectsTransientSource(t *testing.T) {
	bus := NewEventBus()
	err := bus.Publish(context.Background(), newAccount("a"), []DomainEvent{accountOpened{at: time.Now()}})
	if err == nil {
		t.Error("events from an aggregate without identifier must be rejected")
	}
}

func TestEventBusDuplicateSubscription(t *testing.T) {
	bus := NewEventBus()
	h := NewFuncHandler("same", func(context.Context, Envelope) error { return nil })
	if err := bus.Subscribe("x", h); err != nil {
		t.Fatal(err)
	}
	if err := bus.Subscribe("x", h); err == nil {
		t.Error("duplicate subscription must fail")
	}
	bus.Unsubscribe("x", h)
	if err := bus.Subscribe("x", h); err != nil {
		t.Errorf("subscribe after unsubscribe: %v", err)
	}
}

func TestSinkFunc(t *testing.T) {
	var calls int
	var sink EventSink = SinkFunc(func(_ context.Context, source EventSource, events []DomainEvent) error {
		calls += len(events)
		return nil
	})
	a := newAccount("a")
	_ = sink.Publish(context.Background(), a, []DomainEvent{accountOpened{}})
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}
