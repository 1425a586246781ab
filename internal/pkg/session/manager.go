// internal/pkg/session/manager.go
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bnb-client/internal/domain/auth"
	xerrors "bnb-client/internal/pkg/errors"
	"bnb-client/internal/pkg/jwt"
	"bnb-client/internal/store"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Manager owns the authenticated identity of this client. All state reads
// and writes go through mu, as do token store writes; backend calls never
// hold it.
type Manager struct {
	backend Backend
	kv      store.KV
	decoder jwt.Decoder
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.RWMutex
	state    auth.State
	identity *auth.Identity
	lastErr  error
	// gen changes on every login, logout and restore so that a stale
	// in-flight result never overwrites a newer session.
	gen uint64

	lmu       sync.Mutex
	listeners map[int]Listener
	nextID    int

	refresh singleflight.Group
}

type Option func(*Manager)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func NewManager(backend Backend, kv store.KV, decoder jwt.Decoder, logger *zap.Logger, opts ...Option) *Manager {
	if decoder == nil {
		decoder = jwt.UnverifiedDecoder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		backend:   backend,
		kv:        kv,
		decoder:   decoder,
		logger:    logger,
		now:       time.Now,
		state:     auth.StateUnauthenticated,
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Login authenticates against the backend and reports success. Failures
// leave the session unauthenticated with LastError set. A login attempted
// while another login or restore is running fails with
// xerrors.ErrLoginInProgress.
func (m *Manager) Login(ctx context.Context, name, password, role string) bool {
	m.mu.Lock()
	if m.busy() {
		m.lastErr = xerrors.ErrLoginInProgress
		m.mu.Unlock()
		m.logger.Info("login rejected: already in progress", zap.String("name", name))
		return false
	}
	m.state = auth.StateAuthenticating
	m.lastErr = nil
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	identity, err := m.authenticate(ctx, gen, name, password, role)

	m.mu.Lock()
	if m.gen != gen {
		// Logged out while the request was in flight.
		m.mu.Unlock()
		return false
	}
	if err != nil {
		m.state = auth.StateUnauthenticated
		m.identity = nil
		m.lastErr = err
		m.dropToken(ctx)
	} else {
		m.state = auth.StateAuthenticated
		m.identity = identity
		m.lastErr = nil
	}
	ev := m.eventLocked(EventLogin)
	m.mu.Unlock()

	if err != nil {
		ev.Type = EventLoginFailed
		m.logger.Info("login failed", zap.String("name", name), zap.String("role", role), zap.Error(err))
	} else {
		m.logger.Info("login succeeded", zap.String("user_id", identity.ID), zap.String("role", role))
	}
	m.emit(ev)
	return err == nil
}

func (m *Manager) authenticate(ctx context.Context, gen uint64, name, password, role string) (*auth.Identity, error) {
	requested, err := auth.ParseRole(role)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, err.Error())
	}

	resp, err := m.backend.Login(ctx, auth.LoginRequest{Name: name, Password: password, Role: requested.String()})
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.Token == "" {
		return nil, xerrors.ErrTokenMissing
	}

	identity, err := m.identityFromToken(resp.Token)
	if err == nil && identity.Role != requested {
		err = fmt.Errorf("%w: got %s", xerrors.ErrRoleMismatch, identity.Role)
	}
	if err != nil {
		return nil, err
	}

	if err := m.persistToken(ctx, gen, resp.Token); err != nil {
		return nil, err
	}

	if identity.Role == auth.RoleStudent {
		points := m.fetchBalance(ctx)
		identity.TotalPoints = &points
	}
	return identity, nil
}

// persistToken stores token unless the session has moved past gen.
func (m *Manager) persistToken(ctx context.Context, gen uint64, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return errStale
	}
	if err := m.kv.Set(ctx, store.TokenKey, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

// identityFromToken decodes claims into an identity. Expired tokens are
// rejected even when the decoder does not verify signatures.
func (m *Manager) identityFromToken(token string) (*auth.Identity, error) {
	claims, err := m.decoder.Decode(token)
	if err != nil {
		return nil, err
	}
	if claims.Expired(m.now()) {
		return nil, xerrors.ErrSessionExpired
	}
	return &auth.Identity{
		ID:    claims.UserID(),
		Name:  claims.Name,
		Email: claims.Email,
		Role:  auth.Role(claims.Role),
	}, nil
}

// fetchBalance returns the available berries, or 0 when the lookup fails.
func (m *Manager) fetchBalance(ctx context.Context) int64 {
	points, err := m.balance(ctx)
	if err != nil {
		m.logger.Warn("balance lookup failed, defaulting to 0", zap.Error(err))
		return 0
	}
	return points
}

func (m *Manager) balance(ctx context.Context) (int64, error) {
	v, err, _ := m.refresh.Do("balance", func() (interface{}, error) {
		resp, err := m.backend.AvailableBerries(ctx)
		if err != nil {
			return int64(0), err
		}
		if resp == nil || resp.AvailableBerries == nil {
			return int64(0), errors.New("availableBerries missing from response")
		}
		if *resp.AvailableBerries < 0 {
			m.logger.Warn("negative balance from backend, clamping to 0", zap.Int64("available_berries", *resp.AvailableBerries))
			return int64(0), nil
		}
		return *resp.AvailableBerries, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// Logout clears the session. Token removal failures are logged only.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.state = auth.StateUnauthenticated
	m.identity = nil
	m.lastErr = nil
	m.gen++
	ev := m.eventLocked(EventLogout)
	m.dropToken(ctx)
	m.mu.Unlock()

	m.logger.Info("logged out")
	m.emit(ev)
}

// RefreshBalance re-reads the balance of an authenticated student. Only
// TotalPoints changes; failures are logged and the old value kept.
// Concurrent refreshes share one request.
func (m *Manager) RefreshBalance(ctx context.Context) {
	m.mu.RLock()
	ok := m.state == auth.StateAuthenticated && m.identity != nil && m.identity.Role == auth.RoleStudent
	gen := m.gen
	m.mu.RUnlock()
	if !ok {
		return
	}

	points, err := m.balance(ctx)
	if err != nil {
		m.logger.Warn("balance refresh failed", zap.Error(err))
		return
	}

	m.mu.Lock()
	if m.gen != gen || m.identity == nil {
		m.mu.Unlock()
		return
	}
	m.identity.TotalPoints = &points
	ev := m.eventLocked(EventBalance)
	m.mu.Unlock()

	m.emit(ev)
}

// Restore rebuilds the session from a persisted token. It returns false
// when no usable token exists; expired or undecodable tokens are removed.
// Restoring an authenticated session is a no-op that returns true.
func (m *Manager) Restore(ctx context.Context) bool {
	m.mu.Lock()
	switch {
	case m.state == auth.StateAuthenticated:
		m.mu.Unlock()
		return true
	case m.busy():
		m.mu.Unlock()
		return false
	}
	m.state = auth.StateRestoring
	m.lastErr = nil
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	identity, err := m.restore(ctx, gen)

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return false
	}
	if err != nil || identity == nil {
		m.state = auth.StateUnauthenticated
		m.identity = nil
		if err != nil && !errors.Is(err, xerrors.ErrNotFound) {
			m.lastErr = err
		}
	} else {
		m.state = auth.StateAuthenticated
		m.identity = identity
	}
	ev := m.eventLocked(EventRestore)
	m.mu.Unlock()
	m.emit(ev)

	if identity == nil {
		m.logger.Debug("no session restored", zap.Error(err))
		return false
	}
	m.logger.Info("session restored", zap.String("user_id", identity.ID), zap.String("role", identity.Role.String()))
	return true
}

func (m *Manager) restore(ctx context.Context, gen uint64) (*auth.Identity, error) {
	token, err := m.kv.Get(ctx, store.TokenKey)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, xerrors.ErrNotFound
	}

	identity, err := m.identityFromToken(token)
	if err != nil {
		m.mu.Lock()
		if m.gen == gen {
			m.dropTokenIf(ctx, token)
		}
		m.mu.Unlock()
		return nil, err
	}
	if identity.Role == auth.RoleStudent {
		points := m.fetchBalance(ctx)
		identity.TotalPoints = &points
	}
	return identity, nil
}

// Current returns a copy of the identity, or nil when unauthenticated.
func (m *Manager) Current() *auth.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity.Clone()
}

func (m *Manager) State() auth.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsLoading is true while a login or restore is running.
func (m *Manager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.busy()
}

// LastError is the failure of the most recent login or restore.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// View snapshots the session for rendering.
func (m *Manager) View() auth.SessionView {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v := auth.SessionView{
		State:     m.state,
		IsLoading: m.busy(),
		User:      m.identity.Clone(),
	}
	if m.lastErr != nil {
		v.LastError = m.lastErr.Error()
	}
	return v
}

// Token reads the persisted bearer token.
func (m *Manager) Token(ctx context.Context) (string, error) {
	return KVTokens{KV: m.kv}.Token(ctx)
}

// Subscribe registers fn for session events and returns a function that
// removes it.
func (m *Manager) Subscribe(fn Listener) func() {
	m.lmu.Lock()
	defer m.lmu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.lmu.Lock()
		defer m.lmu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Manager) emit(ev Event) {
	m.lmu.Lock()
	fns := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.lmu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// eventLocked must be called with mu held.
func (m *Manager) eventLocked(t EventType) Event {
	ev := Event{
		Type:  t,
		State: m.state,
		User:  m.identity.Clone(),
		At:    m.now(),
	}
	if m.lastErr != nil {
		ev.Error = m.lastErr.Error()
	}
	return ev
}

// busy must be called with mu held.
func (m *Manager) busy() bool {
	return m.state == auth.StateAuthenticating || m.state == auth.StateRestoring
}

// errStale reports that a logout overtook the operation.
var errStale = errors.New("session changed during login")

// dropToken must be called with mu held so that it orders with persistToken.
func (m *Manager) dropToken(ctx context.Context) {
	if err := m.kv.Delete(ctx, store.TokenKey); err != nil {
		m.logger.Warn("failed to delete persisted token", zap.Error(err))
	}
}

// dropTokenIf removes the persisted token only if it is still token. It must
// be called with mu held.
func (m *Manager) dropTokenIf(ctx context.Context, token string) {
	current, err := m.kv.Get(ctx, store.TokenKey)
	if err != nil || current != token {
		return
	}
	m.dropToken(ctx)
}
