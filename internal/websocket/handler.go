// internal/websocket/handler.go
package websocket

import (
	"context"
	"fmt"

	wstypes "bnb-client/internal/domain/websocket"
)

// MessageHandler answers client messages of the event types it lists.
type MessageHandler interface {
	HandleMessage(ctx context.Context, client *Client, msg *wstypes.WSMessage) error
	SupportedEvents() []wstypes.EventType
}

// HandlerRegistry maps event types to handlers. It is filled before the
// hub starts and only read afterwards.
type HandlerRegistry struct {
	handlers map[wstypes.EventType]MessageHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[wstypes.EventType]MessageHandler),
	}
}

// Register claims every event type handler supports. An event type can
// have one handler only.
func (r *HandlerRegistry) Register(handler MessageHandler) error {
	events := handler.SupportedEvents()
	for _, eventType := range events {
		if _, taken := r.handlers[eventType]; taken {
			return fmt.Errorf("websocket: %s already has a handler", eventType)
		}
	}
	for _, eventType := range events {
		r.handlers[eventType] = handler
	}
	return nil
}

func (r *HandlerRegistry) GetHandler(eventType wstypes.EventType) (MessageHandler, bool) {
	handler, exists := r.handlers[eventType]
	return handler, exists
}
