package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"match-service/internal/auth"
	"match-service/internal/config"
	"match-service/internal/db"
	"match-service/internal/handlers"
	"match-service/internal/logger"
	"match-service/internal/matching"
	"match-service/internal/middleware"
	"match-service/internal/observability"
	"match-service/internal/rate"
	"match-service/internal/relay"
	"match-service/internal/repositories"
	"match-service/internal/telemetry"
	"match-service/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer zlog.Sync()

	if cfg.Otel.Enabled && cfg.Otel.Endpoint != "" {
		shutdown, err := observability.InitTracing(context.Background(), "match-service", cfg.Otel.Endpoint)
		if err != nil {
			zlog.Warn("tracing disabled", zap.Error(err))
		} else {
			defer shutdown(context.Background())
		}
	}

	if cfg.AMQP.URL != "" {
		publisher, err := observability.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			zlog.Warn("amqp disabled, events will be dropped", zap.Error(err))
		} else {
			observability.SetPublisher(publisher)
			defer publisher.Close()
		}
	}

	database, err := db.Connect(cfg.DB.DSN, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to db", zap.Error(err))
	}

	var limiter matching.RateLimiter
	if cfg.Redis.Addr != "" {
		redisClient := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		limiter = rate.NewLimiter(rate.NewRedisStore(redisClient), cfg.Swipe.PerMinute, cfg.Swipe.Per10Sec)
	} else {
		zlog.Info("redis not configured, swipe rate limiting disabled")
	}

	swipeRepo := repositories.NewSwipeRepo(database)
	matchRepo := repositories.NewMatchRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	profileRepo := repositories.NewProfileRepo(database)

	emitter := telemetry.NewEmitter("match-service", cfg.Env, zlog)
	matcher := matching.NewService(swipeRepo, matchRepo, limiter, emitter, zlog)

	hub := ws.NewHub(zlog)
	relaySvc := relay.NewService(matchRepo, messageRepo, hub, emitter, zlog)

	verifier := auth.NewVerifier(cfg.Auth.JWTSecret)

	swipeHandler := handlers.NewSwipeHandler(matcher, zlog)
	matchHandler := handlers.NewMatchHandler(matchRepo, profileRepo, zlog)
	messageHandler := handlers.NewMessageHandler(matchRepo, messageRepo, zlog)
	profileHandler := handlers.NewProfileHandler(profileRepo, zlog)
	relayWS := ws.NewRelayWebSocketHandler(hub, relaySvc, verifier, zlog)

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("match-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.AuthMiddleware(verifier)

	router.POST("/swipes", authMiddleware, swipeHandler.PostSwipe)
	router.GET("/matches", authMiddleware, matchHandler.ListMatches)
	router.GET("/matches/:match_id/messages", authMiddleware, messageHandler.GetMessages)
	router.GET("/profiles", authMiddleware, profileHandler.ListCandidates)
	router.POST("/profile", authMiddleware, profileHandler.UpsertProfile)
	router.GET("/profile/me", authMiddleware, profileHandler.GetOwnProfile)
	router.GET("/profile/check", authMiddleware, profileHandler.CheckProfile)

	router.GET("/ws", relayWS.Handle)

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	zlog.Info("server starting", zap.String("addr", cfg.HTTP.Addr), zap.String("env", cfg.Env))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zlog.Fatal("server error", zap.Error(err))
	}
}
