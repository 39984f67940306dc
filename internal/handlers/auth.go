package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"placechat/internal/auth"
	"placechat/internal/middleware"
	"placechat/internal/models"
	"placechat/internal/repositories"
	"placechat/internal/telemetry"
)

const minPasswordLength = 6

// AuthHandler serves registration, login and session endpoints.
type AuthHandler struct {
	users repositories.UserRepository
	authn *auth.Authenticator
	audit *telemetry.AuditEmitter
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(users repositories.UserRepository, authn *auth.Authenticator, audit *telemetry.AuditEmitter) *AuthHandler {
	return &AuthHandler{users: users, authn: authn, audit: audit}
}

type sessionUser struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

type session struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email     string   `json:"email" binding:"required"`
		Password  string   `json:"password" binding:"required"`
		Name      *string  `json:"name"`
		Age       *int     `json:"age"`
		Gender    *string  `json:"gender"`
		Bio       *string  `json:"bio"`
		Interests []string `json:"interests"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	email := strings.TrimSpace(req.Email)
	if !strings.Contains(email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		return
	}
	if len(req.Password) < minPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 6 characters"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register"})
		return
	}

	name := req.Name
	if name == nil || strings.TrimSpace(*name) == "" {
		local, _, _ := strings.Cut(email, "@")
		name = &local
	}

	profile, err := h.users.CreateUser(c.Request.Context(), models.Profile{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Age:          req.Age,
		Gender:       req.Gender,
		Bio:          req.Bio,
		Interests:    req.Interests,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
			return
		}
		log.Printf("register failed: %v", err)
		emitAudit(c, h.audit, telemetry.AuditRecord{Level: telemetry.LevelError, Action: "user.register_failed", Text: "internal error"})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register"})
		return
	}

	c.Set(middleware.UserIDKey, profile.ID)
	h.respondWithSession(c, http.StatusCreated, profile)
	emitAudit(c, h.audit, telemetry.AuditRecord{Action: "user.registered", Text: "User registered", Resource: "user:" + profile.ID})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	profile, err := h.users.GetUserByEmail(c.Request.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not log in"})
		return
	}
	if err := auth.CheckPassword(profile.PasswordHash, req.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	c.Set(middleware.UserIDKey, profile.ID)
	h.respondWithSession(c, http.StatusOK, profile)
	emitAudit(c, h.audit, telemetry.AuditRecord{Action: "user.login", Text: "User logged in", Resource: "user:" + profile.ID})
}

// Logout handles POST /auth/logout by revoking the presented token.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(middleware.TokenKey)
	claims, _ := c.Get(middleware.ClaimsKey)
	authClaims, ok := claims.(auth.Claims)
	if token == "" || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	if err := h.authn.Revoke(c.Request.Context(), token, authClaims); err != nil {
		log.Printf("token revoke failed: user_id=%s err=%v", authClaims.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not log out"})
		return
	}

	emitAudit(c, h.audit, telemetry.AuditRecord{Action: "user.logout", Text: "User logged out"})
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	profile, err := h.users.GetUser(c.Request.Context(), c.GetString(middleware.UserIDKey))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": profile})
}

func (h *AuthHandler) respondWithSession(c *gin.Context, status int, profile models.Profile) {
	token, expiresAt, err := h.authn.Tokens().Issue(profile.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(status, gin.H{
		"user":    sessionUser{ID: profile.ID, Email: profile.Email, Name: profile.Name},
		"session": session{AccessToken: token, ExpiresAt: expiresAt},
	})
}
