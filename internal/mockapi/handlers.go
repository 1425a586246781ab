package mockapi

import (
	"net/http"
	"path"
	"sort"
	"strconv"
	"strings"

	"bnb-client/internal/domain/auth"
	"bnb-client/internal/domain/bounty"
	"bnb-client/internal/domain/participation"
	"bnb-client/internal/domain/reward"
	"bnb-client/internal/domain/shared"
	"bnb-client/internal/domain/user"
	"bnb-client/internal/middleware"
	"bnb-client/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newID() string { return ulid.Make().String() }

// login handles POST /api/auth/login
func (s *Server) login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "Name, password and role are required", err)
		return
	}

	ctx := c.Request.Context()
	allowed, remaining, err := s.limiter.CheckLoginAttempt(ctx, c.ClientIP(), strings.ToLower(req.Name))
	if err != nil {
		s.logger.Warn("login limiter unavailable", zap.Error(err))
	} else if !allowed {
		response.Error(c, http.StatusTooManyRequests, "Too many login attempts, try again later", nil)
		return
	}

	s.mu.Lock()
	var acct *account
	if id, ok := s.byName[strings.ToLower(strings.TrimSpace(req.Name))]; ok {
		acct = s.users[id]
	}
	var hash []byte
	if acct != nil {
		hash = acct.Hash
	}
	s.mu.Unlock()

	if acct == nil {
		response.Unauthorized(c, "User not found")
		return
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(req.Password)); err != nil {
		s.logger.Info("invalid password", zap.String("name", req.Name), zap.Int64("remaining", remaining))
		response.Unauthorized(c, "Invalid password")
		return
	}
	if acct.Role != req.Role {
		response.Unauthorized(c, "Invalid role for this user")
		return
	}

	token, err := s.gen.Generate(acct.ID, acct.Name, acct.Email, acct.Role)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}
	if err := s.limiter.ResetLoginAttempts(ctx, c.ClientIP(), strings.ToLower(req.Name)); err != nil {
		s.logger.Warn("failed to reset login attempts", zap.Error(err))
	}

	c.JSON(http.StatusOK, auth.LoginResponse{Token: token})
}

// callerLocked must be called with mu held.
func (s *Server) callerLocked(c *gin.Context) *account {
	id, ok := middleware.GetUserID(c)
	if !ok {
		return nil
	}
	return s.users[id]
}

func (s *Server) availableBerries(c *gin.Context) {
	s.mu.Lock()
	acct := s.callerLocked(c)
	var berries int64
	if acct != nil {
		berries = acct.Berries
	}
	s.mu.Unlock()

	if acct == nil {
		response.Unauthorized(c, "User not found")
		return
	}
	c.JSON(http.StatusOK, user.AvailableBerriesResponse{AvailableBerries: &berries})
}

func (s *Server) createUser(c *gin.Context) {
	var req user.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "Name, mobile, role and college ID are required", err)
		return
	}
	if err := req.Validate(); err != nil {
		response.ValidationError(c, err.Error(), nil)
		return
	}
	if _, err := auth.ParseRole(req.Role); err != nil {
		response.ValidationError(c, "Invalid role", err)
		return
	}
	password := req.Password
	if password == "" {
		password = req.Mobile
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byName[strings.ToLower(req.Name)]; exists {
		response.Error(c, http.StatusConflict, "User already exists", nil)
		return
	}
	acct, err := s.addUser(SeedUser{Name: req.Name, Password: password, Role: req.Role, Email: req.Email})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to create user", err)
		return
	}
	acct.Mobile = req.Mobile
	acct.CollegeID = req.CollegeID

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    toUser(acct),
	})
}

func toUser(a *account) user.User {
	return user.User{
		ID:        shared.ID(a.ID),
		Name:      a.Name,
		Email:     a.Email,
		Mobile:    a.Mobile,
		Role:      a.Role,
		CollegeID: a.CollegeID,
		Status:    "active",
		CreatedAt: a.CreatedAt.UTC().Format(timeLayout),
	}
}

func (s *Server) changePassword(c *gin.Context) {
	var req user.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "Current and new password are required", err)
		return
	}
	if !user.CheckPassword(req.NewPassword).Valid() {
		response.ValidationError(c, "Password does not meet security requirements", nil)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.callerLocked(c)
	if acct == nil {
		response.Unauthorized(c, "User not found")
		return
	}
	if err := bcrypt.CompareHashAndPassword(acct.Hash, []byte(req.CurrentPassword)); err != nil {
		response.ValidationError(c, "Current password is incorrect", nil)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cost)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to change password", err)
		return
	}
	acct.Hash = hash
	c.JSON(http.StatusOK, shared.MessageResponse{Message: "Password changed successfully"})
}

// viewLocked copies b with is_registered set for the caller. Must be
// called with mu held.
func (s *Server) viewLocked(b *bounty.Bounty, userID string) bounty.Bounty {
	out := *b
	if p, ok := s.regs[userID][b.ID.String()]; ok {
		out.IsRegistered = true
		if p.Status == participation.StatusCompleted {
			out.Status = bounty.StatusCompleted
		}
	}
	return out
}

func (s *Server) listBounties(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	typ := c.Query("type")

	s.mu.Lock()
	out := make([]bounty.Bounty, 0, len(s.bounties))
	for _, b := range s.bounties {
		if typ != "" && !strings.EqualFold(b.Type, typ) {
			continue
		}
		out = append(out, s.viewLocked(b, userID))
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, out)
}

func (s *Server) getBounty(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.findBounty(c.Param("id"))
	if b == nil {
		response.NotFound(c, "Event not found")
		return
	}
	c.JSON(http.StatusOK, s.viewLocked(b, userID))
}

func (s *Server) searchBounties(c *gin.Context) {
	var req bounty.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "Invalid search request", err)
		return
	}
	userID, _ := middleware.GetUserID(c)
	now := s.now()
	name := strings.ToLower(strings.TrimSpace(req.Filters.Name))

	s.mu.Lock()
	matches := make([]bounty.Bounty, 0, len(s.bounties))
	for _, b := range s.bounties {
		v := s.viewLocked(b, userID)
		if name != "" && !strings.Contains(strings.ToLower(v.Name), name) {
			continue
		}
		if req.Filters.Type != "" && !strings.EqualFold(v.Type, req.Filters.Type) {
			continue
		}
		p := s.regs[userID][v.ID.String()]
		switch req.Filters.Status {
		case bounty.StatusUpcoming:
			at, err := v.ScheduledAt()
			if err != nil || !at.After(now) {
				continue
			}
		case bounty.StatusRegistered:
			if p == nil || p.Status == participation.StatusCompleted {
				continue
			}
		case bounty.StatusCompleted:
			if p == nil || p.Status != participation.StatusCompleted {
				continue
			}
		}
		matches = append(matches, v)
	}
	s.mu.Unlock()

	sortBounties(matches, req)

	page, size := req.PageNumber, req.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 50
	}
	total := len(matches)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, bounty.SearchResponse{
		Results:    matches[start:end],
		Total:      int64(total),
		PageNumber: page,
		PageSize:   size,
	})
}

func sortBounties(items []bounty.Bounty, req bounty.SearchRequest) {
	desc := strings.EqualFold(req.SortOrder, "desc")
	switch {
	case req.Filters.Status == bounty.StatusTrending || req.SortBy == "trending_score":
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CurrentParticipants > items[j].CurrentParticipants
		})
	case req.SortBy == "scheduled_date":
		sort.SliceStable(items, func(i, j int) bool {
			a, _ := items[i].ScheduledAt()
			b, _ := items[j].ScheduledAt()
			if desc {
				return a.After(b)
			}
			return a.Before(b)
		})
	}
}

func (s *Server) registerBounty(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.findBounty(id)
	if b == nil {
		response.NotFound(c, "Event not found")
		return
	}
	if _, ok := s.regs[userID][id]; ok {
		response.Error(c, http.StatusConflict, "Already registered for this event", nil)
		return
	}
	if b.Full() {
		response.ValidationError(c, "Event is full", nil)
		return
	}

	if s.regs[userID] == nil {
		s.regs[userID] = make(map[string]*participation.Participation)
	}
	s.regs[userID][id] = &participation.Participation{
		ParticipationID: shared.ID(newID()),
		BountyID:        b.ID,
		BountyName:      b.Name,
		Status:          bounty.StatusRegistered,
		CreatedOn:       s.now().UTC().Format(timeLayout),
	}
	b.CurrentParticipants++

	c.JSON(http.StatusOK, shared.MessageResponse{Message: "Successfully registered for event"})
}

func (s *Server) createBounty(c *gin.Context) {
	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		response.ValidationError(c, "Title is required", nil)
		return
	}
	points, err := strconv.ParseInt(c.PostForm("points"), 10, 64)
	if err != nil || points <= 0 {
		response.ValidationError(c, "Valid points value is required", err)
		return
	}
	capacity, err := strconv.ParseInt(c.PostForm("capacity"), 10, 64)
	if err != nil || capacity <= 0 {
		response.ValidationError(c, "Valid capacity value is required", err)
		return
	}
	berries, _ := strconv.ParseInt(c.PostForm("berries"), 10, 64)

	b := bounty.Bounty{
		ID:             shared.ID(newID()),
		Name:           title,
		Description:    c.PostForm("description"),
		Type:           c.PostForm("type"),
		Venue:          c.PostForm("venue"),
		ScheduledDate:  c.PostForm("date"),
		AllotedPoints:  points,
		AllotedBerries: berries,
		Capacity:       capacity,
	}
	if fh, err := c.FormFile("image"); err == nil {
		b.ImgURL = "/uploads/" + path.Base(fh.Filename)
	}

	s.mu.Lock()
	s.bounties = append(s.bounties, &b)
	s.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{"message": "Event created successfully", "bounty": b})
}

func (s *Server) deleteBounty(c *gin.Context) {
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.bounties {
		if b.ID.String() == id {
			s.bounties = append(s.bounties[:i], s.bounties[i+1:]...)
			c.JSON(http.StatusOK, shared.MessageResponse{Message: "Event deleted successfully"})
			return
		}
	}
	response.NotFound(c, "Event not found")
}

func (s *Server) myParticipations(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	s.mu.Lock()
	out := make([]participation.Participation, 0, len(s.regs[userID]))
	for _, p := range s.regs[userID] {
		out = append(out, *p)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedOn > out[j].CreatedOn })
	c.JSON(http.StatusOK, participation.MyParticipationsResponse{Participations: out})
}

func (s *Server) bountyParticipants(c *gin.Context) {
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findBounty(id) == nil {
		response.NotFound(c, "Event not found")
		return
	}
	out := make([]participation.Participant, 0)
	for userID, regs := range s.regs {
		p, ok := regs[id]
		if !ok {
			continue
		}
		acct := s.users[userID]
		out = append(out, participation.Participant{
			UserID:          shared.ID(userID),
			Name:            acct.Name,
			Email:           acct.Email,
			Status:          p.Status,
			ParticipationID: p.ParticipationID,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	c.JSON(http.StatusOK, gin.H{"participants": out})
}

func (s *Server) listRewards(c *gin.Context) {
	s.mu.Lock()
	out := make([]reward.Reward, 0, len(s.rewards))
	for _, r := range s.rewards {
		out = append(out, *r)
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, out)
}

func (s *Server) getReward(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.findReward(c.Param("id"))
	if r == nil {
		response.NotFound(c, "Reward not found")
		return
	}
	c.JSON(http.StatusOK, r)
}

// claimReward reports failures under "error", as the real service does.
func (s *Server) claimReward(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.findReward(c.Param("id"))
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reward not found"})
		return
	}
	acct := s.users[userID]
	if acct == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	if r.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reward is out of stock"})
		return
	}
	if acct.Berries < r.Cost {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient berries"})
		return
	}

	acct.Berries -= r.Cost
	r.Quantity--
	claim := reward.ClaimedReward{
		ID:             r.ID,
		ClaimID:        shared.ID(newID()),
		Name:           r.Name,
		Description:    r.Description,
		ImgURL:         r.ImgURL,
		Status:         reward.StatusActive,
		RedeemableCode: strings.ToUpper(newID()[18:]),
		ClaimedOn:      s.now().UTC().Format(timeLayout),
		ExpiryDate:     r.ExpiryDate,
	}
	s.claimed[userID] = append(s.claimed[userID], claim)

	remaining := acct.Berries
	c.JSON(http.StatusOK, reward.ClaimResponse{
		Message:          "Reward claimed successfully",
		ClaimID:          claim.ClaimID,
		RedeemableCode:   claim.RedeemableCode,
		RemainingBerries: &remaining,
	})
}

func (s *Server) claimedRewards(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	s.mu.Lock()
	out := append([]reward.ClaimedReward{}, s.claimed[userID]...)
	s.mu.Unlock()
	c.JSON(http.StatusOK, out)
}
