package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flowchain/flowchain/internal/auth"
	"github.com/flowchain/flowchain/internal/models"
)

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *Server) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(s.config.Auth.CookieName, token, int(s.deps.Tokens.TTL().Seconds()), "/", "", true, true)
}

func (s *Server) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(s.config.Auth.CookieName, "", -1, "/", "", true, true)
}

func validateSignup(req credentialsRequest) error {
	if err := auth.ValidateName(req.Name); err != nil {
		return err
	}
	if err := auth.ValidateEmail(req.Email); err != nil {
		return err
	}
	return auth.ValidatePassword(req.Password)
}

// bootstrapStatus reports whether the first-run admin setup is still open
func (s *Server) bootstrapStatus(c *gin.Context) {
	count, err := s.deps.Users.Count()
	if err != nil {
		s.logger.Error("Bootstrap status failed", zap.Error(err))
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"needsBootstrap": count == 0})
}

// bootstrap creates the first admin account. Only available while the user
// table is empty.
func (s *Server) bootstrap(c *gin.Context) {
	count, err := s.deps.Users.Count()
	if err != nil {
		s.logger.Error("Bootstrap failed", zap.Error(err))
		internalError(c)
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bootstrap not available. Users already exist in the system."})
		return
	}

	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := validateSignup(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := s.deps.Hasher.Hash(req.Password)
	if err != nil {
		s.logger.Error("Password hashing failed", zap.Error(err))
		internalError(c)
		return
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Role:     models.RoleAdmin,
	}
	if err := s.deps.Users.Create(user); err != nil {
		internalError(c)
		return
	}

	token, err := s.deps.Tokens.Generate(user)
	if err != nil {
		s.logger.Error("Token generation failed", zap.Error(err))
		internalError(c)
		return
	}
	s.setSessionCookie(c, token)

	c.JSON(http.StatusCreated, gin.H{
		"message": "First admin user created successfully",
		"user":    user,
	})
}

func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	user, err := s.deps.Users.GetByEmail(req.Email)
	if err != nil {
		internalError(c)
		return
	}
	if user == nil || !s.deps.Hasher.Compare(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := s.deps.Tokens.Generate(user)
	if err != nil {
		s.logger.Error("Token generation failed", zap.Error(err))
		internalError(c)
		return
	}
	s.setSessionCookie(c, token)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user,
	})
}

func (s *Server) logout(c *gin.Context) {
	s.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func (s *Server) me(c *gin.Context) {
	claims := auth.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{"user": gin.H{
		"id":    claims.UserID,
		"name":  claims.Name,
		"email": claims.Email,
		"role":  claims.Role,
	}})
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.deps.Users.List()
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// createUser lets an admin provision an account with any role
func (s *Server) createUser(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := validateSignup(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidRole(models.Role(req.Role)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	existing, err := s.deps.Users.GetByEmail(req.Email)
	if err != nil {
		internalError(c)
		return
	}
	if existing != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
		return
	}

	hash, err := s.deps.Hasher.Hash(req.Password)
	if err != nil {
		s.logger.Error("Password hashing failed", zap.Error(err))
		internalError(c)
		return
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Role:     models.Role(req.Role),
	}
	if err := s.deps.Users.Create(user); err != nil {
		internalError(c)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    user,
	})
}

func (s *Server) updateUserRole(c *gin.Context) {
	var req struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !models.ValidRole(models.Role(req.Role)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	user, err := s.deps.Users.UpdateRole(c.Param("id"), models.Role(req.Role))
	if err != nil {
		internalError(c)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User role updated successfully",
		"user":    user,
	})
}
