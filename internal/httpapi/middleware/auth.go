package middleware

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// AdminCredentials is the single admin principal's credentials, resolved
// once at startup from internal/config and compared constant-time.
type AdminCredentials struct {
	Username string
	Password string
}

// RequireAdminSession allows the request through only if the session
// cookie carries a valid admin login, following the shape (not the
// multi-scheme fallback) of the teacher's Authentication middleware: a
// single admin principal has no Basic/Bearer alternative to fall back
// to here, so a missing or stale session is a hard 401.
func RequireAdminSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		uid, _ := session.Get("uid").(string)
		if uid == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		const sessionTTL = 15 * 60
		now := time.Now().Unix()
		lastTouch, _ := session.Get("last_touch").(int64)
		if lastTouch == 0 || now-lastTouch > sessionTTL {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		session.Set("last_touch", now)
		_ = session.Save()

		c.Next()
	}
}

// Check constant-time compares against the configured admin
// principal.
func (a AdminCredentials) Check(username, password string) bool {
	okUser := subtle.ConstantTimeCompare([]byte(username), []byte(a.Username)) == 1
	okPass := subtle.ConstantTimeCompare([]byte(password), []byte(a.Password)) == 1
	return okUser && okPass
}
