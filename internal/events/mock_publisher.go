package events

import (
	"context"
	"log/slog"
	"sync"
)

// MockEventPublisher records published events in memory. Intended for tests
// and for running without a broker.
type MockEventPublisher struct {
	logger *slog.Logger

	mu       sync.Mutex
	events   []*Event
	handlers []Handler
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (p *MockEventPublisher) Publish(ctx context.Context, event *Event) error {
	p.mu.Lock()
	p.events = append(p.events, event)
	handlers := make([]Handler, len(p.handlers))
	copy(handlers, p.handlers)
	p.mu.Unlock()

	p.logger.Debug("mock event published", "event_id", event.ID, "event_type", event.Type)

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			p.logger.Error("mock event handler failed", "event_id", event.ID, "error", err)
		}
	}
	return nil
}

// Subscribe registers a handler invoked synchronously on every publish.
// Stands in for the broker round-trip when running without Kafka.
func (p *MockEventPublisher) Subscribe(handler Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.handlers = append(p.handlers, handler)
}

func (p *MockEventPublisher) Close() error { return nil }

// GetPublishedEvents returns a snapshot of everything published so far.
func (p *MockEventPublisher) GetPublishedEvents() []*Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*Event, len(p.events))
	copy(out, p.events)
	return out
}

// ClearEvents discards recorded events.
func (p *MockEventPublisher) ClearEvents() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = nil
}
