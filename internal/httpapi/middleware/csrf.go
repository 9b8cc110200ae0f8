package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// ValidateSessionCSRF checks the X-CSRF-Token header against the token
// stashed in the session by handlers.IssueSessionCSRF, for mutating
// methods only. Every admin route runs behind RequireAdminSession, which
// means every authenticated caller here is session-based — unlike the
// teacher's version there is no Basic/Bearer principal to skip this for.
func ValidateSessionCSRF(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		c.Next()
		return
	}

	want, _ := sessions.Default(c).Get("csrf").(string)
	got := c.GetHeader("X-CSRF-Token")

	if want == "" || got == "" ||
		subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid csrf token"})
		return
	}

	c.Next()
}
