package messagebus

import (
	"log/slog"
	"sync"

	"github.com/burenotti/go_health_risk/internal/domain"
)

type EventHandler func(event domain.Event) error

// MessageBus fans events out to their handlers, each in its own goroutine.
// Handler errors are logged and never reach the publisher.
type MessageBus struct {
	logger     *slog.Logger
	handlersMu sync.RWMutex
	handlers   map[string][]EventHandler
	wg         sync.WaitGroup
}

func New(logger *slog.Logger) *MessageBus {
	return &MessageBus{
		logger:   logger,
		handlers: make(map[string][]EventHandler),
	}
}

func (b *MessageBus) Register(eventType string, handler EventHandler) {
	b.handlersMu.Lock()
	defer b.handlersMu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

func (b *MessageBus) PublishEvents(events ...domain.Event) error {
	b.handlersMu.RLock()
	defer b.handlersMu.RUnlock()

	for _, event := range events {
		handlers := b.handlers[event.Type()]
		if len(handlers) == 0 {
			b.logger.Debug("no handlers for event", "type", event.Type())
			continue
		}
		for _, handler := range handlers {
			b.wg.Add(1)
			go func(event domain.Event, handler EventHandler) {
				defer b.wg.Done()
				if err := handler(event); err != nil {
					b.logger.Error("failed to handle event", "type", event.Type(), "err", err)
				}
			}(event, handler)
		}
	}
	return nil
}

// Close waits for in-flight handlers.
func (b *MessageBus) Close() {
	b.wg.Wait()
}
