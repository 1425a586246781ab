package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bnb-client/internal/domain/auth"
	"bnb-client/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticSessions struct{ id *auth.Identity }

func (s staticSessions) Current() *auth.Identity { return s.id }

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRecoveryMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(LoggingMiddleware(zap.NewNop()), RecoveryMiddleware(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := serve(r, http.MethodGet, "/boom", http.Header{RequestIDHeader: {"req-1"}})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if got := w.Header().Get(RequestIDHeader); got != "req-1" {
		t.Fatalf("request id not propagated: %q", got)
	}
}

func TestLoggingAssignsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(LoggingMiddleware(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/", nil)
	if len(w.Header().Get(RequestIDHeader)) != 26 {
		t.Fatalf("expected a ULID request id, got %q", w.Header().Get(RequestIDHeader))
	}
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{"any when empty", nil, "http://ui.local", "http://ui.local"},
		{"wildcard", []string{"*"}, "http://ui.local", "http://ui.local"},
		{"listed", []string{"http://ui.local"}, "http://ui.local", "http://ui.local"},
		{"unlisted", []string{"http://ui.local"}, "http://evil.local", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORSMiddleware(tt.allowed))
			r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := serve(r, http.MethodOptions, "/", http.Header{"Origin": {tt.origin}})
			if w.Code != http.StatusNoContent {
				t.Fatalf("preflight: expected 204, got %d", w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Fatalf("allow origin = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionGuards(t *testing.T) {
	points := int64(5)
	student := &auth.Identity{ID: "u-1", Name: "alice", Role: auth.RoleStudent, TotalPoints: &points}

	tests := []struct {
		name     string
		identity *auth.Identity
		chain    func(m *AuthMiddleware) []gin.HandlerFunc
		want     int
	}{
		{"no session", nil, func(m *AuthMiddleware) []gin.HandlerFunc { return []gin.HandlerFunc{m.RequireSession()} }, http.StatusUnauthorized},
		{"session", student, func(m *AuthMiddleware) []gin.HandlerFunc { return []gin.HandlerFunc{m.RequireSession()} }, http.StatusOK},
		{"student route", student, (*AuthMiddleware).StudentOnly, http.StatusOK},
		{"staff route", student, (*AuthMiddleware).StaffOnly, http.StatusForbidden},
		{"admin route", student, (*AuthMiddleware).AdminOnly, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAuthMiddleware(staticSessions{id: tt.identity})
			r := gin.New()
			handlers := append(tt.chain(m), func(c *gin.Context) {
				if MustGetUserID(c) != "u-1" {
					t.Errorf("user id not set")
				}
				c.Status(http.StatusOK)
			})
			r.GET("/", handlers...)

			if w := serve(r, http.MethodGet, "/", nil); w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestBearerAuth(t *testing.T) {
	secret := []byte("mw-secret")
	gen := jwt.NewHMACGenerator(secret, "", "", time.Hour)
	token, err := gen.Generate("u-9", "prof", "prof@college.edu", jwt.RoleFaculty)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	r := gin.New()
	r.GET("/", BearerAuth(jwt.NewHMACVerifier(secret, "", "")), RequireRole(jwt.RoleFaculty), func(c *gin.Context) {
		role, _ := GetRole(c)
		c.String(http.StatusOK, role)
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Authorization", tt.header)
			}
			if w := serve(r, http.MethodGet, "/", h); w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}
