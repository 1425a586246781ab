package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bnb-client/internal/config"
	wstypes "bnb-client/internal/domain/websocket"
	"bnb-client/internal/mockapi"
	"bnb-client/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type fixture struct {
	mock *mockapi.Server
	gw   *Gateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mock, err := mockapi.New(mockapi.Options{Secret: "gw-secret", BcryptCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("mockapi.New: %v", err)
	}
	backend := httptest.NewServer(mock.Handler())
	t.Cleanup(backend.Close)

	cfg := config.AppConfig{BackendURL: backend.URL, UserAgent: "bnb-test"}
	gw := NewGateway(cfg, store.NewMemoryStore(), mock.Verifier(), zap.NewNop())
	return &fixture{mock: mock, gw: gw}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.gw.Engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code, env
}

func (f *fixture) login(t *testing.T, name, password, role string) {
	t.Helper()
	code, env := f.do(t, http.MethodPost, "/api/v1/session/login", gin.H{"name": name, "password": password, "role": role})
	if code != http.StatusOK {
		t.Fatalf("login %s: %d %+v", name, code, env)
	}
}

type identity struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	TotalPoints *int64 `json:"totalPoints"`
}

type view struct {
	State string    `json:"state"`
	User  *identity `json:"user"`
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	f.gw.Engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("health: %d %s", w.Code, w.Body.String())
	}
}

func TestSessionRoutes(t *testing.T) {
	f := newFixture(t)

	if code, _ := f.do(t, http.MethodGet, "/api/v1/session/me", nil); code != http.StatusUnauthorized {
		t.Fatalf("me before login: expected 401, got %d", code)
	}

	code, env := f.do(t, http.MethodPost, "/api/v1/session/login", gin.H{"name": "alice", "password": "bad", "role": "student"})
	if code != http.StatusUnauthorized || env.Message != "Invalid password" {
		t.Fatalf("bad login: %d %+v", code, env)
	}

	code, env = f.do(t, http.MethodPost, "/api/v1/session/login", gin.H{"name": "alice", "password": "pw123", "role": "student"})
	if code != http.StatusOK {
		t.Fatalf("login: %d %+v", code, env)
	}
	var id identity
	decode(t, env.Data, &id)
	if id.Name != "alice" || id.TotalPoints == nil || *id.TotalPoints != 120 {
		t.Fatalf("unexpected identity %+v", id)
	}

	code, env = f.do(t, http.MethodGet, "/api/v1/session/me", nil)
	var v view
	decode(t, env.Data, &v)
	if code != http.StatusOK || v.State != "authenticated" || v.User.Name != "alice" {
		t.Fatalf("me: %d %+v", code, v)
	}

	if code, _ := f.do(t, http.MethodPost, "/api/v1/session/logout", nil); code != http.StatusOK {
		t.Fatalf("logout: %d", code)
	}
	if code, _ := f.do(t, http.MethodPost, "/api/v1/session/restore", nil); code != http.StatusUnauthorized {
		t.Fatalf("restore after logout: expected 401, got %d", code)
	}
}

func TestLoginStatusMapping(t *testing.T) {
	f := newFixture(t)

	code, _ := f.do(t, http.MethodPost, "/api/v1/session/login", gin.H{"name": "alice", "password": "pw123", "role": "wizard"})
	if code != http.StatusBadRequest {
		t.Fatalf("unknown role: expected 400, got %d", code)
	}
	code, _ = f.do(t, http.MethodPost, "/api/v1/session/login", gin.H{"name": "alice"})
	if code != http.StatusBadRequest {
		t.Fatalf("missing fields: expected 400, got %d", code)
	}
}

func TestRoutesRequireSession(t *testing.T) {
	f := newFixture(t)
	paths := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/bounties/search"},
		{http.MethodGet, "/api/v1/rewards"},
		{http.MethodGet, "/api/v1/participations/history"},
		{http.MethodPost, "/api/v1/session/refresh-balance"},
		{http.MethodPost, "/api/v1/bounties/b-cleanup/register"},
		{http.MethodGet, "/api/v1/bounties/b-cleanup/participants"},
		{http.MethodPost, "/api/v1/rewards/r-latepass/claim"},
		{http.MethodGet, "/api/v1/rewards/claimed"},
	}
	for _, p := range paths {
		if code, _ := f.do(t, p.method, p.path, nil); code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", p.method, p.path, code)
		}
	}
}

func TestRegisterRefreshesBalance(t *testing.T) {
	f := newFixture(t)
	f.login(t, "alice", "pw123", "student")

	code, env := f.do(t, http.MethodPost, "/api/v1/bounties/search?status=upcoming", nil)
	if code != http.StatusOK || !strings.Contains(string(env.Data), "b-cleanup") {
		t.Fatalf("search: %d %s", code, env.Data)
	}

	code, env = f.do(t, http.MethodPost, "/api/v1/bounties/b-cleanup/register", nil)
	if code != http.StatusOK {
		t.Fatalf("register: %d %+v", code, env)
	}
	code, env = f.do(t, http.MethodPost, "/api/v1/bounties/b-cleanup/register", nil)
	if code != http.StatusConflict || env.Message != "Already registered for this event" {
		t.Fatalf("second register: %d %+v", code, env)
	}

	if err := f.mock.CompleteParticipation("alice", "b-cleanup"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	code, env = f.do(t, http.MethodPost, "/api/v1/session/refresh-balance", nil)
	var v view
	decode(t, env.Data, &v)
	if code != http.StatusOK || *v.User.TotalPoints != 140 {
		t.Fatalf("refresh: %d %+v", code, v.User)
	}

	code, env = f.do(t, http.MethodGet, "/api/v1/participations/history?type=earned", nil)
	var hist struct {
		Transactions []struct {
			Description string `json:"description"`
			Points      int64  `json:"points"`
		} `json:"transactions"`
		TotalEarned int64 `json:"totalEarned"`
	}
	decode(t, env.Data, &hist)
	if code != http.StatusOK || len(hist.Transactions) != 1 || hist.TotalEarned != 50 {
		t.Fatalf("history: %d %+v", code, hist)
	}
}

func TestClaimRefreshesBalance(t *testing.T) {
	f := newFixture(t)
	f.login(t, "alice", "pw123", "student")

	code, env := f.do(t, http.MethodPost, "/api/v1/rewards/r-latepass/claim", nil)
	if code != http.StatusOK {
		t.Fatalf("claim: %d %+v", code, env)
	}
	_, env = f.do(t, http.MethodGet, "/api/v1/session/me", nil)
	var v view
	decode(t, env.Data, &v)
	if *v.User.TotalPoints != 70 {
		t.Fatalf("expected 70 berries after claim, got %d", *v.User.TotalPoints)
	}

	code, env = f.do(t, http.MethodPost, "/api/v1/rewards/r-hoodie/claim", nil)
	if code != http.StatusBadRequest || env.Message != "Insufficient berries" {
		t.Fatalf("hoodie claim: %d %+v", code, env)
	}

	code, env = f.do(t, http.MethodGet, "/api/v1/rewards/claimed?section=expiring", nil)
	if code != http.StatusOK || !strings.Contains(string(env.Data), "r-latepass") {
		t.Fatalf("expiring section: %d %s", code, env.Data)
	}
	for _, section := range []string{"expired", "archived"} {
		code, env = f.do(t, http.MethodGet, "/api/v1/rewards/claimed?section="+section, nil)
		if code != http.StatusOK || strings.Contains(string(env.Data), "r-latepass") {
			t.Fatalf("%s section: %d %s", section, code, env.Data)
		}
	}
}

func TestRoleGuards(t *testing.T) {
	f := newFixture(t)
	f.login(t, "alice", "pw123", "student")

	if code, _ := f.do(t, http.MethodGet, "/api/v1/bounties/b-cleanup/participants", nil); code != http.StatusForbidden {
		t.Fatalf("student participants: expected 403, got %d", code)
	}
	body := gin.H{"name": "carol", "mobile": "555", "role": "student", "college_id": "C-9"}
	if code, _ := f.do(t, http.MethodPost, "/api/v1/users", body); code != http.StatusForbidden {
		t.Fatalf("student create user: expected 403, got %d", code)
	}

	f.do(t, http.MethodPost, "/api/v1/session/logout", nil)
	f.login(t, "admin", "admin", "admin")
	if code, env := f.do(t, http.MethodPost, "/api/v1/users", body); code != http.StatusCreated {
		t.Fatalf("admin create user: %d %+v", code, env)
	}
	if code, _ := f.do(t, http.MethodPost, "/api/v1/bounties/b-cleanup/register", nil); code != http.StatusForbidden {
		t.Fatalf("admin register: expected 403, got %d", code)
	}
}

func TestChangePasswordValidation(t *testing.T) {
	f := newFixture(t)
	f.login(t, "bob", "pw456", "student")

	code, env := f.do(t, http.MethodPost, "/api/v1/users/change-password", gin.H{
		"currentPassword": "pw456", "newPassword": "Str0ng!pass", "confirmPassword": "different",
	})
	if code != http.StatusBadRequest || env.Message != "new passwords do not match" {
		t.Fatalf("mismatch: %d %+v", code, env)
	}

	code, env = f.do(t, http.MethodPost, "/api/v1/users/change-password", gin.H{
		"currentPassword": "pw456", "newPassword": "Str0ng!pass", "confirmPassword": "Str0ng!pass",
	})
	if code != http.StatusOK {
		t.Fatalf("change password: %d %+v", code, env)
	}
}

func TestWebSocketStreamsSessionEvents(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.gw.Hub.Run(ctx)

	srv := httptest.NewServer(f.gw.Engine)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	read := func() *wstypes.WSMessage {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		msg, err := wstypes.ParseMessage(data)
		if err != nil {
			t.Fatalf("parse %s: %v", data, err)
		}
		return msg
	}

	if msg := read(); msg.Type != wstypes.EventTypeConnected {
		t.Fatalf("expected connected, got %s", msg.Type)
	}

	f.login(t, "alice", "pw123", "student")
	if msg := read(); msg.Type != wstypes.EventTypeSessionLogin {
		t.Fatalf("expected session:login, got %s", msg.Type)
	}

	ping, _ := wstypes.NewMessage(wstypes.EventTypePing, nil).ToJSON()
	if err := conn.WriteMessage(websocket.TextMessage, ping); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	if msg := read(); msg.Type != wstypes.EventTypePong {
		t.Fatalf("expected pong, got %s", msg.Type)
	}

	get, _ := wstypes.NewMessage(wstypes.EventTypeSessionGet, nil).ToJSON()
	if err := conn.WriteMessage(websocket.TextMessage, get); err != nil {
		t.Fatalf("write session:get: %v", err)
	}
	msg := read()
	if msg.Type != wstypes.EventTypeSessionGet {
		t.Fatalf("expected session:get reply, got %s", msg.Type)
	}
	raw, _ := json.Marshal(msg.Data)
	if !strings.Contains(string(raw), `"name":"alice"`) {
		t.Fatalf("session view missing user: %s", raw)
	}

	f.do(t, http.MethodPost, "/api/v1/session/logout", nil)
	if msg := read(); msg.Type != wstypes.EventTypeSessionLogout {
		t.Fatalf("expected session:logout, got %s", msg.Type)
	}
}
