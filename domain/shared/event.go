package shared

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DomainEvent 领域事件
// 事件本身不携带聚合 ID：新建聚合在保存前还没有标识符，
// 发布时由 EventSink 从事件来源（聚合根）读取
type DomainEvent interface {
	EventName() string
	OccurredOn() time.Time
}

// EventSource 事件来源，发布时聚合根一定已持久化
type EventSource interface {
	DeclaredKind() string
	IdentifierString() string
}

// EventSink 事件发布机制
// 返回 nil 表示发布成功，调用方随后清空聚合根的事件缓冲区；返回错误时事件保留
type EventSink interface {
	Publish(ctx context.Context, source EventSource, events []DomainEvent) error
}

// SinkFunc 函数适配器
type SinkFunc func(ctx context.Context, source EventSource, events []DomainEvent) error

func (f SinkFunc) Publish(ctx context.Context, source EventSource, events []DomainEvent) error {
	return f(ctx, source, events)
}

// Envelope 交给事件处理器的事件及其来源
type Envelope struct {
	AggregateKind string
	AggregateID   string
	Event         DomainEvent
}

// EventHandler 事件处理器
type EventHandler interface {
	Handle(ctx context.Context, envelope Envelope) error
	Name() string
}

// EventPublishResult 发布记录
type EventPublishResult struct {
	EventName   string    `json:"event_name"`
	AggregateID string    `json:"aggregate_id"`
	Success     bool      `json:"success"`
	Message     string    `json:"message,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// ValidateEnvelope 校验待发布事件
func ValidateEnvelope(envelope Envelope) error {
	if envelope.Event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if envelope.Event.EventName() == "" {
		return fmt.Errorf("event name cannot be empty")
	}
	if envelope.AggregateID == "" {
		return fmt.Errorf("aggregate ID cannot be empty")
	}
	if envelope.Event.OccurredOn().IsZero() {
		return fmt.Errorf("occurred on time cannot be zero")
	}
	return nil
}

// EventBus 进程内事件总线，实现 EventSink
type EventBus struct {
	handlers  map[string][]EventHandler
	mu        sync.RWMutex
	history   []EventPublishResult
	muHistory sync.Mutex
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[string][]EventHandler),
		history:  make([]EventPublishResult, 0),
	}
}

// Publish 依次把事件交给订阅的处理器；任一处理器失败则整体返回错误
func (bus *EventBus) Publish(ctx context.Context, source EventSource, events []DomainEvent) error {
	var errs []error
	for _, event := range events {
		envelope := Envelope{
			AggregateKind: source.DeclaredKind(),
			AggregateID:   source.IdentifierString(),
			Event:         event,
		}
		if err := bus.publishOne(ctx, envelope); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (bus *EventBus) publishOne(ctx context.Context, envelope Envelope) error {
	if err := ValidateEnvelope(envelope); err != nil {
		return err
	}
	name := envelope.Event.EventName()

	bus.mu.RLock()
	handlers := append([]EventHandler(nil), bus.handlers[name]...)
	bus.mu.RUnlock()

	result := EventPublishResult{
		EventName:   name,
		AggregateID: envelope.AggregateID,
		Success:     true,
		PublishedAt: time.Now(),
	}

	var errs []error
	if len(handlers) == 0 {
		result.Message = "no handlers registered for this event"
	}
	for _, handler := range handlers {
		if err := handler.Handle(ctx, envelope); err != nil {
			errs = append(errs, fmt.Errorf("handler %s: %w", handler.Name(), err))
		}
	}
	if len(errs) > 0 {
		result.Success = false
		result.Message = fmt.Sprintf("%d handlers failed", len(errs))
	}
	bus.record(result)

	if len(errs) > 0 {
		return fmt.Errorf("event %s: %w", name, errors.Join(errs...))
	}
	return nil
}

func (bus *EventBus) record(result EventPublishResult) {
	bus.muHistory.Lock()
	defer bus.muHistory.Unlock()
	bus.history = append(bus.history, result)
	if len(bus.history) > 1000 {
		bus.history = bus.history[len(bus.history)-1000:]
	}
}

func (bus *EventBus) Subscribe(eventName string, handler EventHandler) error {
	if eventName == "" {
		return fmt.Errorf("event name cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	for _, h := range bus.handlers[eventName] {
		if h.Name() == handler.Name() {
			return fmt.Errorf("handler %s already subscribed to %s", handler.Name(), eventName)
		}
	}

	bus.handlers[eventName] = append(bus.handlers[eventName], handler)
	return nil
}

func (bus *EventBus) Unsubscribe(eventName string, handler EventHandler) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	handlers := bus.handlers[eventName]
	for i, h := range handlers {
		if h.Name() == handler.Name() {
			bus.handlers[eventName] = append(handlers[:i:i], handlers[i+1:]...)
			return
		}
	}
}

func (bus *EventBus) GetPublishHistory() []EventPublishResult {
	bus.muHistory.Lock()
	defer bus.muHistory.Unlock()

	history := make([]EventPublishResult, len(bus.history))
	copy(history, bus.history)
	return history
}

// FuncHandler 函数式事件处理器
type FuncHandler struct {
	name string
	fn   func(context.Context, Envelope) error
}

func NewFuncHandler(name string, fn func(context.Context, Envelope) error) *FuncHandler {
	if name == "" {
		name = fmt.Sprintf("func-handler-%d", time.Now().UnixNano())
	}
	return &FuncHandler{name: name, fn: fn}
}

func (h *FuncHandler) Handle(ctx context.Context, envelope Envelope) error {
	return h.fn(ctx, envelope)
}

func (h *FuncHandler) Name() string {
	return h.name
}

var _ EventSink = (*EventBus)(nil)
