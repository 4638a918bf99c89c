// internal/handler/event_bus.go
package handler

import (
	"sync"

	"go.uber.org/zap"

	"rf-serial-service/internal/model"
)

// EventBus distributes connection status events to subscribers. The
// connection manager publishes from its status callback; slow
// subscribers are skipped rather than blocking the serial path.
type EventBus struct {
	subscribers []chan model.StatusEvent
	events      chan model.StatusEvent
	mutex       sync.RWMutex
	logger      *zap.Logger
}

// NewEventBus creates a new event bus
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		events: make(chan model.StatusEvent, 256),
		logger: logger.With(zap.String("component", "event-bus")),
	}
}

// Start starts the event distribution loop. When the bus is stopped
// it drains pending events, then closes all subscriber channels so
// consumers can return.
func (eb *EventBus) Start() {
	for event := range eb.events {
		eb.distributeEvent(event)
	}
	eb.closeSubscribers()
}

// Stop closes the bus; Start returns once pending events drain
func (eb *EventBus) Stop() {
	close(eb.events)
}

func (eb *EventBus) closeSubscribers() {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	for _, subscriber := range eb.subscribers {
		close(subscriber)
	}
	eb.subscribers = nil
}

// Publish publishes a status event without blocking the caller
func (eb *EventBus) Publish(event model.StatusEvent) {
	select {
	case eb.events <- event:
	default:
		eb.logger.Warn("Event bus full, dropping event",
			zap.String("status", string(event.Status)),
		)
	}
}

// Subscribe returns a channel receiving all future status events
func (eb *EventBus) Subscribe() <-chan model.StatusEvent {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	subscriber := make(chan model.StatusEvent, 64)
	eb.subscribers = append(eb.subscribers, subscriber)
	return subscriber
}

// distributeEvent fans an event out to subscribers
func (eb *EventBus) distributeEvent(event model.StatusEvent) {
	eb.mutex.RLock()
	subscribers := eb.subscribers
	eb.mutex.RUnlock()

	for _, subscriber := range subscribers {
		select {
		case subscriber <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
