package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"atelier/internal/cache"
	"atelier/internal/config"
	"atelier/internal/database"
	"atelier/internal/domain"
	"atelier/internal/domain/art"
	"atelier/internal/domain/auth"
	"atelier/internal/filestore"
	"atelier/internal/metrics"
	"atelier/internal/middleware"
	jwtsvc "atelier/internal/pkg/jwt"
	"atelier/internal/pkg/logging"
	"atelier/internal/pkg/response"
	"atelier/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config load failed")
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}

	models := append([]interface{}{&domain.User{}}, art.Models()...)
	if err := db.AutoMigrate(models...); err != nil {
		log.WithError(err).Fatal("auto migrate failed")
	}

	files, err := filestore.NewLocal(cfg.UploadDir)
	if err != nil {
		log.WithError(err).Fatal("file store init failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rankingCache art.ListCache
	if cfg.RedisURL != "" {
		client, err := cache.NewClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, ranking cache disabled")
		} else {
			defer client.Close()
			rankingCache = cache.NewRanking(client, cfg.RankingCacheTTL)
		}
	}

	tokens := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	gate := auth.NewGate(tokens)

	userRepo := repository.NewUserRepository(db)
	artService := art.NewService(art.NewRepository(db), userRepo, files, gate, art.Config{
		MasterpieceLimit: cfg.MasterpieceLimit,
		MaxUploadSize:    cfg.MaxUploadSize,
		Cache:            rankingCache,
		Logger:           log,
	})
	artHandler := art.NewHandler(artService)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxUploadSize
	r.Use(
		middleware.RequestID(),
		middleware.ErrorLogger(log),
		middleware.CORS(cfg.CORSOrigins),
		metrics.Instrument(),
	)

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "UNHEALTHY", "database unreachable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	artHandler.RegisterRoutes(v1, gate, limiter.Middleware())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "env": cfg.AppEnv}).Info("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
