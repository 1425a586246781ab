// internal/websocket/handler/session.go
package handlers

import (
	"context"
	"fmt"

	"bnb-client/internal/domain/auth"
	wstypes "bnb-client/internal/domain/websocket"
	ws "bnb-client/internal/websocket"
)

// SessionController is the part of the session manager clients may drive
// over the socket.
type SessionController interface {
	View() auth.SessionView
	RefreshBalance(ctx context.Context)
}

type SessionHandler struct {
	sessions SessionController
}

func NewSessionHandler(sessions SessionController) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// SupportedEvents returns events this handler supports
func (h *SessionHandler) SupportedEvents() []wstypes.EventType {
	return []wstypes.EventType{
		wstypes.EventTypeSessionGet,
		wstypes.EventTypeSessionRefresh,
	}
}

// HandleMessage answers session queries. A refresh request replies with the
// view after the refresh; the balance event itself arrives via the hub.
func (h *SessionHandler) HandleMessage(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	switch msg.Type {
	case wstypes.EventTypeSessionGet:
	case wstypes.EventTypeSessionRefresh:
		h.sessions.RefreshBalance(ctx)
	default:
		return fmt.Errorf("%w: %s", ws.ErrUnsupportedEvent, msg.Type)
	}

	reply := wstypes.NewMessage(msg.Type, h.sessions.View())
	if msg.ID != "" {
		reply.Metadata = map[string]interface{}{"reply_to": msg.ID}
	}
	client.SendMessage(reply)
	return nil
}
