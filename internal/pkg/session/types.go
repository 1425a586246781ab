// internal/pkg/session/types.go
package session

import (
	"context"
	"time"

	"bnb-client/internal/domain/auth"
	"bnb-client/internal/domain/user"
	"bnb-client/internal/store"
)

// Backend is the slice of the API client the session drives.
type Backend interface {
	Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error)
	AvailableBerries(ctx context.Context) (*user.AvailableBerriesResponse, error)
}

type EventType string

const (
	EventLogin       EventType = "login"
	EventLoginFailed EventType = "login_failed"
	EventLogout      EventType = "logout"
	EventBalance     EventType = "balance"
	EventRestore     EventType = "restore"
)

// Event is published to subscribers after each session change.
type Event struct {
	Type  EventType      `json:"type"`
	State auth.State     `json:"state"`
	User  *auth.Identity `json:"user,omitempty"`
	Error string         `json:"error,omitempty"`
	At    time.Time      `json:"at"`
}

// Listener receives session events. It runs on the goroutine that caused
// the change and must not block.
type Listener func(Event)

// KVTokens reads the persisted bearer token for the API client.
type KVTokens struct {
	KV store.KV
}

func (t KVTokens) Token(ctx context.Context) (string, error) {
	return t.KV.Get(ctx, store.TokenKey)
}
