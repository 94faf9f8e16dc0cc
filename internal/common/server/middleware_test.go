package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fleetnova/fleetnova/internal/common/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func testAuthCfg() config.AuthConfig {
	return config.AuthConfig{
		Enabled:     true,
		JWTSecret:   "test-secret",
		Issuer:      "fleetnova",
		Audience:    "fleetnova",
		PublicPaths: []string{"/health", "/auth/login"},
	}
}

func signToken(t *testing.T, cfg config.AuthConfig, subject string, roles []string, expiresIn time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := struct {
		Roles []string `json:"roles"`
		jwt.RegisteredClaims
	}{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func testEngine(cfg config.AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuth(cfg, nil))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/open", func(c *gin.Context) {
		ai, ok := AuthFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"subject": ai.Subject})
	})
	r.GET("/admin", RequireRoles(cfg, "Admin"), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthAndRBAC(t *testing.T) {
	cfg := testAuthCfg()
	r := testEngine(cfg)

	// public path skips auth
	if w := get(r, "/health", ""); w.Code != http.StatusOK {
		t.Errorf("public path status = %d, want 200", w.Code)
	}

	// no token on a protected path
	if w := get(r, "/open", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("missing token status = %d, want 401", w.Code)
	}

	// valid token carries the subject through
	token := signToken(t, cfg, "u-1", []string{"Admin", "Driver"}, time.Hour)
	if w := get(r, "/open", token); w.Code != http.StatusOK {
		t.Errorf("valid token status = %d, body %s", w.Code, w.Body.String())
	}

	// RBAC allows an admin and rejects a driver
	if w := get(r, "/admin", token); w.Code != http.StatusOK {
		t.Errorf("admin route status = %d, want 200", w.Code)
	}
	driverToken := signToken(t, cfg, "u-2", []string{"Driver"}, time.Hour)
	if w := get(r, "/admin", driverToken); w.Code != http.StatusForbidden {
		t.Errorf("driver on admin route status = %d, want 403", w.Code)
	}
}

func TestJWTAuthRejectsBadTokens(t *testing.T) {
	cfg := testAuthCfg()
	r := testEngine(cfg)

	// expired well past the leeway
	expired := signToken(t, cfg, "u-1", nil, -time.Hour)
	if w := get(r, "/open", expired); w.Code != http.StatusUnauthorized {
		t.Errorf("expired token status = %d, want 401", w.Code)
	}

	// wrong secret
	other := cfg
	other.JWTSecret = "other-secret"
	forged := signToken(t, other, "u-1", nil, time.Hour)
	if w := get(r, "/open", forged); w.Code != http.StatusUnauthorized {
		t.Errorf("forged token status = %d, want 401", w.Code)
	}

	// wrong issuer
	badIss := cfg
	badIss.Issuer = "someone-else"
	wrongIss := signToken(t, badIss, "u-1", nil, time.Hour)
	if w := get(r, "/open", wrongIss); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong issuer status = %d, want 401", w.Code)
	}
}

func TestJWTAuthDisabledPassesThrough(t *testing.T) {
	cfg := testAuthCfg()
	cfg.Enabled = false

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuth(cfg, nil))
	r.GET("/x", RequireRoles(cfg, "Admin"), func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := get(r, "/x", ""); w.Code != http.StatusOK {
		t.Errorf("auth disabled status = %d, want 200", w.Code)
	}
}
