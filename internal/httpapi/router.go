// Package httpapi builds the Gin router exposing internal/kvservice as
// JSON endpoints. Middleware order: recovery outermost, CORS in dev,
// security headers, sessions, request ID, then access logging; auth and
// CSRF checks are attached per route.
package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/edirooss/qkv-server/internal/config"
	"github.com/edirooss/qkv-server/internal/httpapi/handlers"
	"github.com/edirooss/qkv-server/internal/httpapi/middleware"
	"github.com/edirooss/qkv-server/internal/kvservice"
)

// NewRouter assembles the full middleware chain and route table.
func NewRouter(cfg *config.Config, log *zap.Logger, svc *kvservice.Service) *gin.Engine {
	isDev := cfg.Env == "dev"
	if !isDev {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	_ = r.SetTrustedProxies([]string{"127.0.0.1"})

	r.Use(gin.Recovery())

	if isDev {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Authorization", "X-CSRF-Token"},
			ExposeHeaders:    []string{"X-Total-Count", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.Use(secure.New(secure.Config{
		SSLRedirect:           !isDev,
		STSSeconds:            31536000,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		ContentSecurityPolicy: "default-src 'none'",
	}))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("qkv_session", store))

	r.Use(middleware.RequestID())
	r.Use(middleware.ZapLogger(log))

	creds := middleware.AdminCredentials{Username: cfg.AdminUsername, Password: cfg.AdminPassword}
	authHandler := handlers.NewAuthHandler(log, creds, isDev)
	csrfHandler := handlers.NewCSRFHandler(log)
	listHandler := handlers.NewListHandler(log, svc)

	r.GET("/api/ping", func(c *gin.Context) { c.JSON(200, gin.H{"message": "pong"}) })

	r.POST("/api/auth/login", authHandler.Login)
	r.POST("/api/auth/logout", authHandler.Logout)
	r.GET("/api/auth/csrf", middleware.RequireAdminSession(), csrfHandler.IssueSessionCSRF)

	keys := r.Group("/api/keys/:key")
	{
		keys.GET("/len", listHandler.LLen)
		keys.GET("/range", listHandler.LRange)
		keys.GET("/index", listHandler.LIndex)

		admin := keys.Group("")
		admin.Use(middleware.RequireAdminSession(), middleware.ValidateSessionCSRF)
		{
			admin.POST("/rpush", listHandler.RPush)
			admin.POST("/lpush", listHandler.LPush)
			admin.POST("/rpop", listHandler.RPop)
			admin.POST("/lpop", listHandler.LPop)
			admin.PUT("/index", listHandler.LSet)
			admin.PUT("/trim", listHandler.LTrim)
			admin.POST("/insert", listHandler.LInsert)
			admin.POST("/rem", listHandler.LRem)
			admin.POST("/rotate", listHandler.Rotate)
			admin.POST("/dup", listHandler.Dup)
			admin.DELETE("", listHandler.Del)
		}
	}

	return r
}
