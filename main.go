package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/connect360/tagdrop/api"
	"github.com/connect360/tagdrop/config"
	"github.com/connect360/tagdrop/mq/sqsmq"
	"github.com/connect360/tagdrop/ratelimit"
	ratelimitmemory "github.com/connect360/tagdrop/ratelimit/memory"
	ratelimitredis "github.com/connect360/tagdrop/ratelimit/redis"
	"github.com/connect360/tagdrop/store/postgres"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	shutdownCtx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	tagdropStore, err := postgres.NewPostgresTagdropStore(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to create postgres store: %v", err)
	}
	defer tagdropStore.Close()

	scanEventQueue, err := sqsmq.NewSQSMessageQueue(ctx, cfg.DevMode, cfg.SQSEndpoint, cfg.ScanEventQueue)
	if err != nil {
		log.Fatalf("Failed to create SQS MQ: %v", err)
	}

	// A shared Redis keeps rate windows consistent across replicas; without
	// one, ceilings apply per server instance.
	var limiter ratelimit.Limiter
	if cfg.RedisEndpoint != "" {
		redisLimiter, err := ratelimitredis.NewLimiter(ctx, cfg.DevMode, cfg.RedisEndpoint, []byte(cfg.RateLimitSecret))
		if err != nil {
			log.Fatalf("Failed to create redis rate limiter: %v", err)
		}
		limiter = redisLimiter
	} else {
		memoryLimiter := ratelimitmemory.NewLimiter([]byte(cfg.RateLimitSecret))
		go memoryLimiter.Run(shutdownCtx)
		limiter = memoryLimiter
	}

	tagdropAPI := api.NewTagdropAPI(tagdropStore, limiter, scanEventQueue, cfg, shutdownCtx)

	mux := http.NewServeMux()
	tagdropAPI.RegisterRoutes(mux)

	log.Printf("Starting server on host port: %s\n", cfg.HostPort)
	log.Fatal(http.ListenAndServe(":"+cfg.HostPort, mux))
}
