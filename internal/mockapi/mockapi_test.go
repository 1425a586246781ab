package mockapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bnb-client/internal/api"
	"bnb-client/internal/domain/auth"
	"bnb-client/internal/domain/bounty"
	"bnb-client/internal/domain/participation"
	"bnb-client/internal/domain/reward"
	"bnb-client/internal/domain/shared"
	"bnb-client/internal/domain/user"
	"bnb-client/internal/mockapi"
	xerrors "bnb-client/internal/pkg/errors"
	"bnb-client/internal/pkg/session"
	"bnb-client/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type harness struct {
	mock    *mockapi.Server
	client  *api.Client
	kv      *store.MemoryStore
	session *session.Manager
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mock, err := mockapi.New(mockapi.Options{Secret: "test-secret", BcryptCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("mockapi.New: %v", err)
	}
	srv := httptest.NewServer(mock.Handler())
	t.Cleanup(srv.Close)

	kv := store.NewMemoryStore()
	client := api.NewClient(srv.URL, session.KVTokens{KV: kv}, zap.NewNop())
	mgr := session.NewManager(client, kv, mock.Verifier(), zap.NewNop())
	return &harness{mock: mock, client: client, kv: kv, session: mgr}
}

func (h *harness) login(t *testing.T, name, password, role string) {
	t.Helper()
	if !h.session.Login(context.Background(), name, password, role) {
		t.Fatalf("login %s: %v", name, h.session.LastError())
	}
}

func TestStudentLoginScenario(t *testing.T) {
	h := newHarness(t)
	h.login(t, "alice", "pw123", "student")

	id := h.session.Current()
	if id.Name != "alice" || id.Role != auth.RoleStudent || id.Email != "alice@college.edu" {
		t.Fatalf("unexpected identity %+v", id)
	}
	if id.Points() != 120 {
		t.Fatalf("expected 120 points, got %d", id.Points())
	}
}

func TestInvalidPasswordScenario(t *testing.T) {
	h := newHarness(t)
	if h.session.Login(context.Background(), "alice", "nope", "student") {
		t.Fatalf("login must fail")
	}
	if h.session.Current() != nil {
		t.Fatalf("no identity expected")
	}
	apiErr, ok := xerrors.AsAPIError(h.session.LastError())
	if !ok || apiErr.Status != http.StatusUnauthorized || apiErr.Message != "Invalid password" {
		t.Fatalf("last error = %v", h.session.LastError())
	}
}

func TestLoginRoleMismatchAtBackend(t *testing.T) {
	h := newHarness(t)
	if h.session.Login(context.Background(), "alice", "pw123", "faculty") {
		t.Fatalf("student cannot log in as faculty")
	}
	if h.session.LastError().Error() != "Invalid role for this user" {
		t.Fatalf("last error = %v", h.session.LastError())
	}
}

func TestLoginThrottled(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		h.session.Login(ctx, "bob", "wrong", "student")
	}
	if h.session.Login(ctx, "bob", "pw456", "student") {
		t.Fatalf("sixth attempt should be throttled")
	}
	if !errors.Is(h.session.LastError(), xerrors.ErrRateLimited) {
		t.Fatalf("last error = %v", h.session.LastError())
	}
}

func TestRegisterAndRefreshFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.login(t, "alice", "pw123", "student")

	upcoming, err := h.client.SearchBounties(ctx, bounty.SectionSearch(bounty.StatusUpcoming, "", "All"))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(upcoming.Results) != 2 || upcoming.Results[0].ID != "b-cleanup" {
		t.Fatalf("unexpected upcoming %+v", upcoming.Results)
	}

	if _, err := h.client.RegisterForBounty(ctx, "b-hackathon"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err = h.client.RegisterForBounty(ctx, "b-hackathon")
	if !errors.Is(err, xerrors.ErrConflict) {
		t.Fatalf("second registration should conflict, got %v", err)
	}

	registered, err := h.client.SearchBounties(ctx, bounty.SectionSearch(bounty.StatusRegistered, "hack", "Technical"))
	if err != nil {
		t.Fatalf("search registered: %v", err)
	}
	if len(registered.Results) != 1 || !registered.Results[0].IsRegistered {
		t.Fatalf("unexpected registered %+v", registered.Results)
	}

	if err := h.mock.CompleteParticipation("alice", "b-hackathon"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	h.session.RefreshBalance(ctx)
	if got := h.session.Current().Points(); got != 170 {
		t.Fatalf("expected 170 after completion, got %d", got)
	}

	mine, err := h.client.MyParticipations(ctx)
	if err != nil {
		t.Fatalf("my participations: %v", err)
	}
	txs := participation.History(mine.Participations, "", time.Now())
	if len(txs) != 1 || txs[0].Type != participation.TxEarned || participation.TotalEarned(txs) != 100 {
		t.Fatalf("unexpected history %+v", txs)
	}
}

func TestEventFull(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.login(t, "alice", "pw123", "student")
	if _, err := h.client.RegisterForBounty(ctx, "b-hackathon"); err != nil {
		t.Fatalf("register: %v", err)
	}

	other := newHarnessSharing(t, h)
	other.login(t, "bob", "pw456", "student")
	_, err := other.client.RegisterForBounty(ctx, "b-hackathon")
	if err == nil || err.Error() != "Event is full" {
		t.Fatalf("expected Event is full, got %v", err)
	}
}

// newHarnessSharing returns a second client against h's mock.
func newHarnessSharing(t *testing.T, h *harness) *harness {
	t.Helper()
	srv := httptest.NewServer(h.mock.Handler())
	t.Cleanup(srv.Close)
	kv := store.NewMemoryStore()
	client := api.NewClient(srv.URL, session.KVTokens{KV: kv}, zap.NewNop())
	return &harness{
		mock:    h.mock,
		client:  client,
		kv:      kv,
		session: session.NewManager(client, kv, h.mock.Verifier(), zap.NewNop()),
	}
}

func TestClaimRewardFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.login(t, "alice", "pw123", "student")

	rewards, err := h.client.ListRewards(ctx)
	if err != nil || len(rewards) != 3 {
		t.Fatalf("rewards = %v err = %v", rewards, err)
	}

	resp, err := h.client.ClaimReward(ctx, "r-latepass")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if resp.RemainingBerries == nil || *resp.RemainingBerries != 70 || resp.RedeemableCode == "" {
		t.Fatalf("unexpected claim response %+v", resp)
	}

	_, err = h.client.ClaimReward(ctx, "r-latepass")
	if err == nil || err.Error() != "Reward is out of stock" {
		t.Fatalf("expected out of stock, got %v", err)
	}
	_, err = h.client.ClaimReward(ctx, "r-hoodie")
	if err == nil || err.Error() != "Insufficient berries" {
		t.Fatalf("expected insufficient berries, got %v", err)
	}

	h.session.RefreshBalance(ctx)
	if h.session.Current().Points() != 70 {
		t.Fatalf("balance not refreshed")
	}

	claimed, err := h.client.ClaimedRewards(ctx)
	if err != nil || len(claimed) != 1 {
		t.Fatalf("claimed = %v err = %v", claimed, err)
	}
	now := time.Now()
	if len(reward.FilterClaimed(claimed, reward.SectionExpiring, now)) != 1 {
		t.Fatalf("late pass expires within a week")
	}
}

func TestStaffRoutes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.login(t, "alice", "pw123", "student")
	if _, err := h.client.BountyParticipants(ctx, "b-cleanup"); !errors.Is(err, xerrors.ErrForbidden) {
		t.Fatalf("student must be forbidden, got %v", err)
	}
	if _, err := h.client.RegisterForBounty(ctx, "b-cleanup"); err != nil {
		t.Fatalf("register: %v", err)
	}
	h.session.Logout(ctx)

	h.login(t, "prof", "teach", "faculty")
	if h.session.Current().TotalPoints != nil {
		t.Fatalf("faculty has no points")
	}
	people, err := h.client.BountyParticipants(ctx, "b-cleanup")
	if err != nil {
		t.Fatalf("participants: %v", err)
	}
	if len(people) != 1 || people[0].Name != "alice" {
		t.Fatalf("unexpected participants %+v", people)
	}

	req := bounty.CreateRequest{
		Title: "Poetry Night", Description: "Open mic.", Date: time.Now().Add(48 * time.Hour),
		Venue: "Auditorium", Points: 20, Berries: 5, Capacity: 40, Type: "Cultural",
		Image: &shared.Upload{Filename: "poster.png", ContentType: "image/png", Reader: strings.NewReader("img")},
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if _, err := h.client.CreateBounty(ctx, req.Form()); err != nil {
		t.Fatalf("create bounty: %v", err)
	}
	list, err := h.client.ListBounties(ctx, bounty.ListParams{"type": "Cultural"})
	if err != nil || len(list) != 1 || list[0].ImgURL != "/uploads/poster.png" {
		t.Fatalf("list = %+v err = %v", list, err)
	}
	if err := h.client.DeleteBounty(ctx, list[0].ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestAdminCreateUserAndChangePassword(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.login(t, "admin", "admin", "admin")

	newUser := user.CreateUserRequest{Name: "carol", Mobile: "9876543210", Role: "student", CollegeID: "C-17", Password: "start"}
	if _, err := h.client.CreateUser(ctx, newUser); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := h.client.CreateUser(ctx, newUser); !errors.Is(err, xerrors.ErrConflict) {
		t.Fatalf("duplicate user should conflict, got %v", err)
	}
	h.session.Logout(ctx)

	h.login(t, "carol", "start", "student")
	change := user.ChangePasswordRequest{CurrentPassword: "start", NewPassword: "Str0ng!pass"}
	if _, err := h.client.ChangePassword(ctx, change); err != nil {
		t.Fatalf("change password: %v", err)
	}
	h.session.Logout(ctx)

	if h.session.Login(ctx, "carol", "start", "student") {
		t.Fatalf("old password must stop working")
	}
	h.login(t, "carol", "Str0ng!pass", "student")
}

func TestRestoreAcrossManagers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.login(t, "alice", "pw123", "student")

	restarted := session.NewManager(h.client, h.kv, h.mock.Verifier(), zap.NewNop())
	if !restarted.Restore(ctx) {
		t.Fatalf("restore: %v", restarted.LastError())
	}
	if restarted.Current().Points() != 120 {
		t.Fatalf("restored balance = %d", restarted.Current().Points())
	}
}

func TestRejectsMissingToken(t *testing.T) {
	h := newHarness(t)
	_, err := h.client.AvailableBerries(context.Background())
	apiErr, ok := xerrors.AsAPIError(err)
	if !ok || apiErr.Status != http.StatusUnauthorized || apiErr.Message != "No token provided" {
		t.Fatalf("expected 401 No token provided, got %v", err)
	}
}

func TestNewRequiresSecret(t *testing.T) {
	if _, err := mockapi.New(mockapi.Options{}); err == nil {
		t.Fatalf("expected error without secret")
	}
}
