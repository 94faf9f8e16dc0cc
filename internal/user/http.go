package user

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fleetnova/fleetnova/internal/common/auth"
	"github.com/fleetnova/fleetnova/internal/common/config"
	"github.com/fleetnova/fleetnova/internal/common/server"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Handlers exposes the auth endpoints: register, login, me.
type Handlers struct {
	store   Store
	authCfg config.AuthConfig
}

// NewHandlers builds the auth handler set.
func NewHandlers(store Store, authCfg config.AuthConfig) *Handlers {
	return &Handlers{store: store, authCfg: authCfg}
}

// Register wires the auth routes.
func (h *Handlers) Register(r *gin.Engine) {
	g := r.Group("/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.GET("/me", h.me)
}

type userOut struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

func toOut(u *User) userOut {
	return userOut{ID: u.ID, Email: u.Email, Roles: u.RolesSlice()}
}

func (h *Handlers) register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = RoleDriver
	}
	if !ValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role: " + role})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := h.store.FindByEmail(c.Request.Context(), email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	salt, err := GenerateSaltHex()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	hash, err := HashPassword(req.Password, salt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		PasswordSalt: salt,
		Roles:        RolesJoin([]string{role}),
	}
	if err := h.store.Create(c.Request.Context(), u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toOut(u))
}

func (h *Handlers) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	u, err := h.store.FindByEmail(c.Request.Context(), email)
	if err != nil || !VerifyPassword(req.Password, u.PasswordSalt, u.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect email or password"})
		return
	}

	ttl := time.Duration(h.authCfg.TokenTTLMin) * time.Minute
	token, expiresAt, err := auth.GenerateAccessToken(h.authCfg, u.ID, u.RolesSlice(), ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"expires_at":   expiresAt.UTC(),
	})
}

func (h *Handlers) me(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
		return
	}
	u, err := h.store.FindByID(c.Request.Context(), ai.Subject)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
		return
	}
	c.JSON(http.StatusOK, toOut(u))
}
