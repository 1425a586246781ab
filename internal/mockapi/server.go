// Package mockapi is an in-memory stand-in for the Bounties and Berries
// backend. It serves the same paths and error bodies the real service does
// and is used by tests and local development.
package mockapi

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"bnb-client/internal/domain/bounty"
	"bnb-client/internal/domain/participation"
	"bnb-client/internal/domain/reward"
	"bnb-client/internal/middleware"
	"bnb-client/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Options struct {
	// Secret signs issued tokens (HS256) unless Generator and Decoder are
	// both set.
	Secret    string
	Issuer    string
	TokenTTL  time.Duration
	Generator *jwt.Generator
	Decoder   jwt.Decoder

	Users    []SeedUser
	Bounties []bounty.Bounty
	Rewards  []reward.Reward

	Limiter    LoginLimiter
	Logger     *zap.Logger
	Now        func() time.Time
	BcryptCost int
}

type account struct {
	ID        string
	Name      string
	Email     string
	Mobile    string
	CollegeID string
	Role      string
	Hash      []byte
	Berries   int64
	CreatedAt time.Time
}

type Server struct {
	engine   *gin.Engine
	gen      *jwt.Generator
	verifier jwt.Decoder
	limiter  LoginLimiter
	logger   *zap.Logger
	now      func() time.Time
	cost     int

	mu       sync.Mutex
	users    map[string]*account
	byName   map[string]string
	bounties []*bounty.Bounty
	regs     map[string]map[string]*participation.Participation
	rewards  []*reward.Reward
	claimed  map[string][]reward.ClaimedReward
}

// New seeds the mock. Empty seed lists fall back to the demo data.
func New(opts Options) (*Server, error) {
	if opts.Generator == nil || opts.Decoder == nil {
		if opts.Secret == "" {
			return nil, fmt.Errorf("mockapi: secret is required")
		}
		ttl := opts.TokenTTL
		if ttl == 0 {
			ttl = 24 * time.Hour
		}
		opts.Generator = jwt.NewHMACGenerator([]byte(opts.Secret), opts.Issuer, "", ttl)
		opts.Decoder = jwt.NewHMACVerifier([]byte(opts.Secret), opts.Issuer, "")
	}
	if !opts.Decoder.Verifies() {
		return nil, fmt.Errorf("mockapi: decoder must verify signatures")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Limiter == nil {
		opts.Limiter = NewMemoryLimiter(opts.Now)
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}

	now := opts.Now()
	if opts.Users == nil {
		opts.Users = DefaultUsers()
	}
	if opts.Bounties == nil {
		opts.Bounties = DefaultBounties(now)
	}
	if opts.Rewards == nil {
		opts.Rewards = DefaultRewards(now)
	}

	s := &Server{
		gen:      opts.Generator,
		verifier: opts.Decoder,
		limiter:  opts.Limiter,
		logger:   opts.Logger,
		now:      opts.Now,
		cost:     opts.BcryptCost,
		users:    make(map[string]*account),
		byName:   make(map[string]string),
		regs:     make(map[string]map[string]*participation.Participation),
		claimed:  make(map[string][]reward.ClaimedReward),
	}

	for _, u := range opts.Users {
		if _, err := s.addUser(u); err != nil {
			return nil, err
		}
	}
	for i := range opts.Bounties {
		b := opts.Bounties[i]
		s.bounties = append(s.bounties, &b)
	}
	for i := range opts.Rewards {
		r := opts.Rewards[i]
		s.rewards = append(s.rewards, &r)
	}

	s.engine = s.routes()
	return s, nil
}

// Handler returns the HTTP handler serving the backend paths.
func (s *Server) Handler() http.Handler { return s.engine }

// Verifier checks tokens issued by this mock.
func (s *Server) Verifier() jwt.Decoder { return s.verifier }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RecoveryMiddleware(s.logger))
	r.Use(middleware.LoggingMiddleware(s.logger))

	api := r.Group("/api")
	api.POST("/auth/login", s.login)

	authed := api.Group("")
	authed.Use(middleware.BearerAuth(s.verifier))

	staff := middleware.RequireRole(jwt.RoleFaculty, jwt.RoleAdmin)
	admin := middleware.RequireRole(jwt.RoleAdmin)
	student := middleware.RequireRole(jwt.RoleStudent)

	users := authed.Group("/users")
	{
		users.GET("/available-berries", s.availableBerries)
		users.POST("", admin, s.createUser)
		users.POST("/change-password", s.changePassword)
	}

	bounties := authed.Group("/bounties")
	{
		bounties.GET("", s.listBounties)
		bounties.GET("/admin/all", admin, s.listBounties)
		bounties.POST("/search", s.searchBounties)
		bounties.POST("/register/:id", student, s.registerBounty)
		bounties.POST("", staff, s.createBounty)
		bounties.GET("/:id", s.getBounty)
		bounties.DELETE("/:id", staff, s.deleteBounty)
	}

	parts := authed.Group("/bounty-participation")
	{
		parts.GET("/my", s.myParticipations)
		parts.GET("/bounty/:id", staff, s.bountyParticipants)
	}

	rewards := authed.Group("/reward")
	{
		rewards.GET("", s.listRewards)
		rewards.GET("/user/claimed", s.claimedRewards)
		rewards.GET("/:id", s.getReward)
		rewards.POST("/:id/claim", student, s.claimReward)
	}

	return r
}

// addUser must be called before serving or with mu held.
func (s *Server) addUser(u SeedUser) (*account, error) {
	name := strings.ToLower(strings.TrimSpace(u.Name))
	if name == "" {
		return nil, fmt.Errorf("mockapi: user without name")
	}
	if _, exists := s.byName[name]; exists {
		return nil, fmt.Errorf("mockapi: duplicate user %q", u.Name)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("mockapi: hash password for %s: %w", u.Name, err)
	}
	id := u.ID
	if id == "" {
		id = newID()
	}
	acct := &account{
		ID:        id,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Hash:      hash,
		Berries:   u.Berries,
		CreatedAt: s.now(),
	}
	s.users[id] = acct
	s.byName[name] = id
	return acct, nil
}

// findBounty must be called with mu held.
func (s *Server) findBounty(id string) *bounty.Bounty {
	for _, b := range s.bounties {
		if b.ID.String() == id {
			return b
		}
	}
	return nil
}

// findReward must be called with mu held.
func (s *Server) findReward(id string) *reward.Reward {
	for _, r := range s.rewards {
		if r.ID.String() == id {
			return r
		}
	}
	return nil
}

// SetBerries overwrites a user's balance.
func (s *Server) SetBerries(name string, berries int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byName[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("mockapi: unknown user %q", name)
	}
	s.users[id].Berries = berries
	return nil
}

// Berries reads a user's balance.
func (s *Server) Berries(name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byName[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("mockapi: unknown user %q", name)
	}
	return s.users[id].Berries, nil
}

// CompleteParticipation marks a registration completed and credits the
// bounty's points and berries to the user.
func (s *Server) CompleteParticipation(name, bountyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byName[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("mockapi: unknown user %q", name)
	}
	p, ok := s.regs[id][bountyID]
	if !ok {
		return fmt.Errorf("mockapi: %s is not registered for %s", name, bountyID)
	}
	if p.Status == participation.StatusCompleted {
		return nil
	}
	b := s.findBounty(bountyID)
	if b == nil {
		return fmt.Errorf("mockapi: unknown bounty %q", bountyID)
	}
	p.Status = participation.StatusCompleted
	p.PointsEarned = b.AllotedPoints
	p.BerriesEarned = b.AllotedBerries
	p.UpdatedOn = s.now().UTC().Format(timeLayout)
	s.users[id].Berries += b.AllotedBerries
	return nil
}
