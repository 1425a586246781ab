// internal/websocket/hub.go
package websocket

import (
	"context"
	"sync"

	"bnb-client/internal/domain/auth"
	wstypes "bnb-client/internal/domain/websocket"
	"bnb-client/internal/pkg/session"

	"go.uber.org/zap"
)

// SessionSource is the part of the session manager the hub streams from.
type SessionSource interface {
	View() auth.SessionView
	Subscribe(fn session.Listener) func()
}

type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex

	// Registration/unregistration
	register   chan *Client
	unregister chan *Client

	// Broadcasting
	broadcast chan *BroadcastMessage

	// Handler registry for modular message handling
	handlerRegistry *HandlerRegistry

	sessions SessionSource
	logger   *zap.Logger
	done     chan struct{}
	stopOnce sync.Once
}

type BroadcastMessage struct {
	Channel wstypes.ChannelType
	Message *wstypes.WSMessage
}

var sessionEvents = map[session.EventType]wstypes.EventType{
	session.EventLogin:       wstypes.EventTypeSessionLogin,
	session.EventLoginFailed: wstypes.EventTypeSessionLoginFailed,
	session.EventLogout:      wstypes.EventTypeSessionLogout,
	session.EventBalance:     wstypes.EventTypeSessionBalance,
	session.EventRestore:     wstypes.EventTypeSessionRestore,
}

func NewHub(sessions SessionSource, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:         make(map[*Client]bool),
		register:        make(chan *Client),
		unregister:      make(chan *Client),
		broadcast:       make(chan *BroadcastMessage, 256),
		handlerRegistry: NewHandlerRegistry(),
		sessions:        sessions,
		logger:          logger,
		done:            make(chan struct{}),
	}
}

// RegisterHandler registers a message handler. Call it before Run.
func (h *Hub) RegisterHandler(handler MessageHandler) error {
	return h.handlerRegistry.Register(handler)
}

// HandleClientMessage processes a message from a client using registered handlers
func (h *Hub) HandleClientMessage(ctx context.Context, client *Client, msg *wstypes.WSMessage) (bool, error) {
	handler, exists := h.handlerRegistry.GetHandler(msg.Type)
	if !exists {
		return false, nil
	}
	return true, handler.HandleMessage(ctx, client, msg)
}

// Run serves registrations and fans session events out until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	unsubscribe := h.sessions.Subscribe(h.Publish)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.BroadcastMessage(msg)
		}
	}
}

// Join hands a connected client to the hub. It reports false once the hub
// has stopped.
func (h *Hub) Join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues a session event for every client on the session channel.
// It never blocks; events are dropped when the queue is full.
func (h *Hub) Publish(ev session.Event) {
	eventType, ok := sessionEvents[ev.Type]
	if !ok {
		h.logger.Warn("unknown session event", zap.String("type", string(ev.Type)))
		return
	}
	msg := &BroadcastMessage{
		Channel: wstypes.ChannelSession,
		Message: wstypes.NewMessage(eventType, ev),
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		h.logger.Warn("session event dropped, broadcast queue full", zap.String("type", string(ev.Type)))
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	// Every client follows the session by default.
	client.Subscribe(wstypes.ChannelSession)

	h.logger.Info("websocket client connected",
		zap.String("client_id", client.id),
		zap.String("remote", client.remote),
		zap.Int("total", total),
	)

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeConnected, map[string]interface{}{
		"client_id": client.id,
		"session":   h.sessions.View(),
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.clients[client]; exists {
		delete(h.clients, client)
		client.Close()

		h.logger.Info("websocket client disconnected",
			zap.String("client_id", client.id),
			zap.Int("total", len(h.clients)),
		)
	}
}

func (h *Hub) BroadcastMessage(msg *BroadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.IsSubscribed(msg.Channel) {
			client.SendMessage(msg.Message)
		}
	}
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) shutdown() {
	h.stopOnce.Do(func() { close(h.done) })

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.SendMessage(wstypes.NewMessage(wstypes.EventTypeDisconnected, map[string]interface{}{
			"reason": "gateway shutting down",
		}))
		client.Close()
		delete(h.clients, client)
	}
}
