package websocket

import (
	"context"
	"testing"
	"time"

	"bnb-client/internal/domain/auth"
	wstypes "bnb-client/internal/domain/websocket"
	"bnb-client/internal/pkg/session"
)

type fakeSessions struct {
	subscribed chan session.Listener
}

func (f *fakeSessions) View() auth.SessionView {
	return auth.SessionView{State: auth.StateUnauthenticated}
}

func (f *fakeSessions) Subscribe(fn session.Listener) func() {
	f.subscribed <- fn
	return func() {}
}

func TestHubQueuesSessionEvents(t *testing.T) {
	src := &fakeSessions{subscribed: make(chan session.Listener, 1)}
	hub := NewHub(src, nil)

	hub.Publish(session.Event{Type: session.EventLogin, State: auth.StateAuthenticated})
	hub.Publish(session.Event{Type: "mystery"})

	if got := len(hub.broadcast); got != 1 {
		t.Fatalf("expected 1 queued message, got %d", got)
	}
	msg := <-hub.broadcast
	if msg.Message.Type != "session:login" || msg.Channel != "session" {
		t.Fatalf("unexpected broadcast %+v", msg)
	}
}

func TestHubStopsCleanly(t *testing.T) {
	src := &fakeSessions{subscribed: make(chan session.Listener, 1)}
	hub := NewHub(src, nil)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	listener := <-src.subscribed
	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatalf("hub did not stop")
	}

	// Neither call may block once the hub is gone.
	for i := 0; i < 300; i++ {
		listener(session.Event{Type: session.EventBalance})
	}
	if hub.Join(&Client{}) {
		t.Fatalf("join must fail after shutdown")
	}
}

type echoHandler struct{ events []wstypes.EventType }

func (h echoHandler) SupportedEvents() []wstypes.EventType { return h.events }

func (h echoHandler) HandleMessage(context.Context, *Client, *wstypes.WSMessage) error { return nil }

func TestRegisterRejectsDuplicateEvents(t *testing.T) {
	hub := NewHub(&fakeSessions{subscribed: make(chan session.Listener, 1)}, nil)

	if err := hub.RegisterHandler(echoHandler{events: []wstypes.EventType{"a", "b"}}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := hub.RegisterHandler(echoHandler{events: []wstypes.EventType{"c", "b"}}); err == nil {
		t.Fatalf("duplicate event must be rejected")
	}
	if _, ok := hub.handlerRegistry.GetHandler("c"); ok {
		t.Fatalf("rejected handler must not be partially registered")
	}
}
