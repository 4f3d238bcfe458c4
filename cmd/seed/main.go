package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"atelier/internal/config"
	"atelier/internal/database"
	"atelier/internal/domain"
	"atelier/internal/domain/art"
	"atelier/internal/domain/auth"
	"atelier/internal/filestore"
	jwtsvc "atelier/internal/pkg/jwt"
	"atelier/internal/pkg/logging"
	"atelier/internal/repository"
)

var categories = []art.Category{
	{ID: 1, Name: "Painting"},
	{ID: 2, Name: "Illustration"},
	{ID: 3, Name: "Photography"},
	{ID: 4, Name: "Sculpture"},
	{ID: 5, Name: "Digital"},
}

func main() {
	reset := flag.Bool("reset", false, "delete artworks, likes and masterpieces before seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config load failed")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}

	log.Info("Running AutoMigrate...")
	models := append([]interface{}{&domain.User{}}, art.Models()...)
	if err := db.AutoMigrate(models...); err != nil {
		log.WithError(err).Fatal("auto migrate failed")
	}

	if *reset {
		log.Info("Cleaning old data...")
		// Dependent rows first.
		for _, table := range []string{"masterpieces", "art_likes", "arts"} {
			if err := db.Exec("DELETE FROM " + table).Error; err != nil {
				log.WithError(err).WithField("table", table).Fatal("cleanup failed")
			}
		}
	}

	log.Info("Creating categories...")
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&categories).Error; err != nil {
		log.WithError(err).Fatal("seed categories failed")
	}

	log.Info("Creating users...")
	users := repository.NewUserRepository(db)
	artist, err := users.FirstOrCreateByEmail(ctx, &domain.User{
		Email:    "artist@atelier.dev",
		Nickname: "banana",
		Role:     string(auth.RoleArtist),
	})
	if err != nil {
		log.WithError(err).Fatal("seed artist failed")
	}
	viewer, err := users.FirstOrCreateByEmail(ctx, &domain.User{
		Email:    "viewer@atelier.dev",
		Nickname: "visitor",
		Role:     string(auth.RoleUser),
	})
	if err != nil {
		log.WithError(err).Fatal("seed viewer failed")
	}

	tokens := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	if err := seedArtworks(ctx, db, cfg, tokens, log, artist, viewer); err != nil {
		log.WithError(err).Fatal("seed artworks failed")
	}

	artistToken, err := tokens.GenerateToken(artist.ID, artist.Role)
	if err != nil {
		log.WithError(err).Fatal("token generation failed")
	}
	viewerToken, err := tokens.GenerateToken(viewer.ID, viewer.Role)
	if err != nil {
		log.WithError(err).Fatal("token generation failed")
	}

	log.Info("Seed completed!")
	fmt.Printf("ARTIST  id=%d token=%s\n", artist.ID, artistToken)
	fmt.Printf("USER    id=%d token=%s\n", viewer.ID, viewerToken)
}

// seedArtworks adds a few text-only artworks through the service when the
// artist has none yet, likes two of them and showcases the first.
func seedArtworks(ctx context.Context, db *gorm.DB, cfg *config.Config, tokens *jwtsvc.Service, log logrus.FieldLogger, artist, viewer *domain.User) error {
	files, err := filestore.NewLocal(cfg.UploadDir)
	if err != nil {
		return err
	}
	svc := art.NewService(art.NewRepository(db), repository.NewUserRepository(db), files, auth.NewGate(tokens), art.Config{
		MasterpieceLimit: cfg.MasterpieceLimit,
		MaxUploadSize:    cfg.MaxUploadSize,
		Logger:           log,
	})

	existing, err := svc.ListByOwner(ctx, artist.ID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.WithField("count", len(existing)).Info("Artworks already present, skipping")
		return nil
	}

	log.Info("Creating artworks...")
	identity := &auth.Identity{UserID: artist.ID, Role: auth.RoleArtist}
	samples := []art.UploadArtRequest{
		{ArtName: "Morning Harbour", ArtDescription: "Oil on canvas", ArtCategorySeq: 1},
		{ArtName: "Paper Cranes", ArtDescription: "Ink study", ArtCategorySeq: 2},
		{ArtName: "Night Market", ArtDescription: "Long exposure", ArtCategorySeq: 3},
	}

	ids := make([]int64, 0, len(samples))
	for _, req := range samples {
		id, err := svc.UploadArt(ctx, nil, req, identity)
		if err != nil {
			return fmt.Errorf("upload %q: %w", req.ArtName, err)
		}
		ids = append(ids, id)
	}

	for _, id := range ids[:2] {
		if _, err := svc.AddLike(ctx, viewer.ID, id); err != nil {
			return fmt.Errorf("like %d: %w", id, err)
		}
	}

	return svc.SetMasterpieces(ctx, artist.ID, ids[:1])
}
