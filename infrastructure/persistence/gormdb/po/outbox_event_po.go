package po

import (
	"encoding/json"
	"time"

	"hexagonal/domain/shared"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// OutboxEventPO Outbox event persistence object
// Implements transactional outbox pattern for reliable event publishing
type OutboxEventPO struct {
	ID            string         `gorm:"primaryKey;size:64"`
	AggregateKind string         `gorm:"size:64;index;not null"`
	AggregateID   string         `gorm:"size:64;index;not null"`
	EventType     string         `gorm:"size:100;index;not null"` // e.g. "user.created", "order.placed"
	Payload       datatypes.JSON `gorm:"not null"`
	Status        string         `gorm:"size:20;index;not null"` // PENDING, PROCESSING, PUBLISHED, FAILED
	RetryCount    int            `gorm:"not null"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
}

func (OutboxEventPO) TableName() string {
	return "outbox_events"
}

// EventStatus Outbox event status enum
type EventStatus string

const (
	EventStatusPending    EventStatus = "PENDING"
	EventStatusProcessing EventStatus = "PROCESSING"
	EventStatusPublished  EventStatus = "PUBLISHED"
	EventStatusFailed     EventStatus = "FAILED"
)

// OutboxPayload payload 列的 JSON 结构
type OutboxPayload struct {
	EventName     string          `json:"event_name"`
	AggregateKind string          `json:"aggregate_kind"`
	AggregateID   string          `json:"aggregate_id"`
	OccurredOn    time.Time       `json:"occurred_on"`
	Data          json.RawMessage `json:"data"`
}

// FromEnvelope Convert a stamped domain event to an outbox row
// 事件结构体本身按 JSON 序列化放入 data
func FromEnvelope(envelope shared.Envelope) (*OutboxEventPO, error) {
	if err := shared.ValidateEnvelope(envelope); err != nil {
		return nil, err
	}
	data, err := json.Marshal(envelope.Event)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(OutboxPayload{
		EventName:     envelope.Event.EventName(),
		AggregateKind: envelope.AggregateKind,
		AggregateID:   envelope.AggregateID,
		OccurredOn:    envelope.Event.OccurredOn(),
		Data:          data,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &OutboxEventPO{
		ID:            uuid.NewString(),
		AggregateKind: envelope.AggregateKind,
		AggregateID:   envelope.AggregateID,
		EventType:     envelope.Event.EventName(),
		Payload:       datatypes.JSON(payload),
		Status:        string(EventStatusPending),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// DecodePayload Extract payload of an outbox row
func (po *OutboxEventPO) DecodePayload() (OutboxPayload, error) {
	var payload OutboxPayload
	err := json.Unmarshal(po.Payload, &payload)
	return payload, err
}
