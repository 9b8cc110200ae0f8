package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CSRFHandler issues a per-session CSRF token for clients to echo back
// on mutating admin requests (see middleware.ValidateSessionCSRF).
type CSRFHandler struct{ log *zap.Logger }

func NewCSRFHandler(log *zap.Logger) *CSRFHandler { return &CSRFHandler{log.Named("csrf")} }

// IssueSessionCSRF returns the current session's CSRF token, minting one
// if absent.
func (h *CSRFHandler) IssueSessionCSRF(c *gin.Context) {
	sess := sessions.Default(c)
	token, _ := sess.Get("csrf").(string)
	if token == "" {
		var err error
		token, err = randomTokenHex(32)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		sess.Set("csrf", token)
		_ = sess.Save()
	}

	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.JSON(http.StatusOK, gin.H{"csrf": token})
}

func randomTokenHex(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
