package user

import "time"

// UserCreatedEvent 用户创建事件
type UserCreatedEvent struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Occurred time.Time `json:"occurred_on"`
}

func NewUserCreatedEvent(name, email string) *UserCreatedEvent {
	return &UserCreatedEvent{Name: name, Email: email, Occurred: time.Now()}
}

func (e *UserCreatedEvent) EventName() string     { return "user.created" }
func (e *UserCreatedEvent) OccurredOn() time.Time { return e.Occurred }

// UserActivatedEvent 用户激活事件
type UserActivatedEvent struct {
	Occurred time.Time `json:"occurred_on"`
}

func NewUserActivatedEvent() *UserActivatedEvent {
	return &UserActivatedEvent{Occurred: time.Now()}
}

func (e *UserActivatedEvent) EventName() string     { return "user.activated" }
func (e *UserActivatedEvent) OccurredOn() time.Time { return e.Occurred }

// UserDeactivatedEvent 用户停用事件
type UserDeactivatedEvent struct {
	Occurred time.Time `json:"occurred_on"`
}

func NewUserDeactivatedEvent() *UserDeactivatedEvent {
	return &UserDeactivatedEvent{Occurred: time.Now()}
}

func (e *UserDeactivatedEvent) EventName() string     { return "user.deactivated" }
func (e *UserDeactivatedEvent) OccurredOn() time.Time { return e.Occurred }
