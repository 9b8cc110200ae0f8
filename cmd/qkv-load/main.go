// Command qkv-load bulk-loads newline-delimited entries from a file
// into a list key, streamed directly against internal/blockstore — the
// same CLI shape as cmd/bulk-delete/main.go, repurposed from deleting a
// channel ID range to pushing file lines into a key.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/edirooss/qkv-server/internal/blockstore"
	"github.com/edirooss/qkv-server/internal/config"
	"github.com/edirooss/qkv-server/internal/kvservice"
	"github.com/edirooss/qkv-server/internal/quicklist"
	"github.com/edirooss/qkv-server/redis"
)

func main() {
	key := flag.String("key", "", "destination list key")
	path := flag.String("file", "", "path to newline-delimited input file")
	tail := flag.Bool("tail", true, "push to the tail (RPUSH); false pushes to the head (LPUSH)")
	flag.Parse()

	if *key == "" || *path == "" {
		fmt.Println("Usage: ./qkv-load -key=<key> -file=<path> [-tail=true]")
		os.Exit(1)
	}

	log := buildLogger().Named("main")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed", zap.Error(err))
	}

	rdb := redis.NewClient(cfg.RedisAddr, cfg.RedisDB, log)
	defer rdb.Close()

	bs := blockstore.New(rdb.Client, log)
	svc := kvservice.New(bs, cfg.DefaultFill, cfg.MaxNodeBytes, log)

	f, err := os.Open(*path)
	if err != nil {
		log.Fatal("open input file failed", zap.Error(err))
	}
	defer f.Close()

	where := quicklist.TAIL
	if !*tail {
		where = quicklist.HEAD
	}

	ctx := context.Background()
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	loaded := 0
	start := time.Now()
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		if _, err := svc.Push(ctx, *key, where, []byte(line)); err != nil {
			log.Fatal("push failed", zap.Int("loaded", loaded), zap.Error(err))
		}
		loaded++
	}
	if err := sc.Err(); err != nil {
		log.Fatal("scan input file failed", zap.Error(err))
	}

	log.Info("bulk load complete",
		zap.String("key", *key),
		zap.Int("loaded", loaded),
		zap.Duration("took", time.Since(start)),
	)
}

func buildLogger() *zap.Logger {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.TimeKey = ""
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.DisableStacktrace = true
	logConfig.DisableCaller = true
	logConfig.Level.SetLevel(zap.DebugLevel)
	return zap.Must(logConfig.Build())
}
