package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStart EventType = "start"
	EventStep  EventType = "step"
	EventHalt  EventType = "halt"
	EventError EventType = "error"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Machine   string    `json:"machine,omitempty"`
}

// StepEvent describes one applied transition.
type StepEvent struct {
	EventBase
	Step  int    `json:"step"`
	From  any    `json:"from"`
	To    any    `json:"to"`
	Read  string `json:"read"`
	Write string `json:"write"`
	Move  string `json:"move"`
	Grown bool   `json:"grown,omitempty"`
}

// HaltEvent describes how a run ended.
type HaltEvent struct {
	EventBase
	State    any    `json:"state"`
	Status   Status `json:"status"`
	Steps    int    `json:"steps"`
	TapeSize int    `json:"tape_size"`
	Err      error  `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
// Every field is optional.
type LifecycleHooks struct {
	OnStart func(context.Context, *EventBase)
	OnStep  func(context.Context, *StepEvent)
	OnHalt  func(context.Context, *HaltEvent)
}

// Merge combines hooks so that both sets fire, h first.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStart: chain(h.OnStart, other.OnStart),
		OnStep:  chain(h.OnStep, other.OnStep),
		OnHalt:  chain(h.OnHalt, other.OnHalt),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
