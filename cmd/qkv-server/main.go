// Command qkv-server runs the list-key service: a Gin HTTP API backed by
// internal/kvservice, which wraps internal/quicklist lists materialized
// from Redis via internal/blockstore. Structured the way the teacher's
// cmd/zmux-server/main.go builds its dependency graph and listens.
package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/edirooss/qkv-server/internal/blockstore"
	"github.com/edirooss/qkv-server/internal/config"
	"github.com/edirooss/qkv-server/internal/httpapi"
	"github.com/edirooss/qkv-server/internal/kvservice"
	"github.com/edirooss/qkv-server/redis"
)

func main() {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.TimeKey = ""
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.DisableStacktrace = true
	logConfig.DisableCaller = true
	log := zap.Must(logConfig.Build())
	defer log.Sync()
	log = log.Named("main")

	binding.EnableDecoderDisallowUnknownFields = true

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed", zap.Error(err))
	}

	rdb := redis.NewClient(cfg.RedisAddr, cfg.RedisDB, log)
	defer rdb.Close()

	bs := blockstore.New(rdb.Client, log)
	svc := kvservice.New(bs, cfg.DefaultFill, cfg.MaxNodeBytes, log)

	router := httpapi.NewRouter(cfg, log, svc)

	httpserver := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,

		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,

		MaxHeaderBytes: 1 << 15,

		ErrorLog: zap.NewStdLog(log.Named("http").WithOptions(zap.AddCallerSkip(1))),
	}

	log.Info("running HTTP server", zap.String("addr", cfg.HTTPAddr))
	if err := httpserver.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("server failed", zap.Error(err))
	}
}
