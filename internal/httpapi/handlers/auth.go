package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/edirooss/qkv-server/internal/httpapi/middleware"
)

// AuthHandler issues and clears the single admin session, following the
// teacher's AuthHandler shape (session cookie, no token/refresh model).
type AuthHandler struct {
	log   *zap.Logger
	creds middleware.AdminCredentials
	isDev bool
}

func NewAuthHandler(log *zap.Logger, creds middleware.AdminCredentials, isDev bool) *AuthHandler {
	return &AuthHandler{log: log.Named("auth"), creds: creds, isDev: isDev}
}

// Login authenticates against the configured admin principal and opens
// a session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !bind(c, &req) {
		return
	}

	if !h.creds.Check(req.Username, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		return
	}

	sess := sessions.Default(c)
	sess.Set("uid", req.Username)
	sess.Set("last_touch", time.Now().Unix())
	sess.Options(sessions.Options{
		Path:     "/api",
		MaxAge:   4 * 3600,
		Secure:   !h.isDev,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	if err := sess.Save(); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}

// Logout clears the current session.
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/api", MaxAge: -1})
	if err := sess.Save(); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}
