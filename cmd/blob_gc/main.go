package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"atelier/internal/config"
	"atelier/internal/database"
	"atelier/internal/domain/art"
	"atelier/internal/domain/auth"
	"atelier/internal/filestore"
	jwtsvc "atelier/internal/pkg/jwt"
	"atelier/internal/pkg/logging"
	"atelier/internal/repository"
)

// blob_gc removes image blobs that no artwork references any more, for
// example after a delete whose blob cleanup failed.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config load failed")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}

	files, err := filestore.NewLocal(cfg.UploadDir)
	if err != nil {
		log.WithError(err).Fatal("file store init failed")
	}

	svc := art.NewService(
		art.NewRepository(db),
		repository.NewUserRepository(db),
		files,
		auth.NewGate(jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)),
		art.Config{Logger: log},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	removed, err := svc.CollectOrphanBlobs(ctx, cfg.BlobGCGrace)
	if err != nil {
		log.WithError(err).Fatal("blob gc failed")
	}

	log.WithFields(logrus.Fields{"removed": removed, "grace": cfg.BlobGCGrace.String()}).Info("blob gc completed")
}
