package art

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"html"
	"path"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"

	"atelier/internal/domain/auth"
	"atelier/internal/filestore"
	"atelier/internal/metrics"
	"atelier/internal/pkg/apperr"
	"atelier/internal/pkg/validator"
)

const (
	DefaultMasterpieceLimit = 5
	DefaultMaxUploadSize    = 20 << 20
)

type Config struct {
	MasterpieceLimit int
	MaxUploadSize    int64
	Cache            ListCache
	Logger           logrus.FieldLogger
}

type Service struct {
	repo   Repository
	users  OwnerDirectory
	files  filestore.Store
	gate   *auth.Gate
	cache  ListCache
	log    logrus.FieldLogger
	policy *bluemonday.Policy
	now    func() time.Time

	masterpieceLimit int
	maxUploadSize    int64
}

func NewService(repo Repository, users OwnerDirectory, files filestore.Store, gate *auth.Gate, cfg Config) *Service {
	if cfg.MasterpieceLimit <= 0 {
		cfg.MasterpieceLimit = DefaultMasterpieceLimit
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = DefaultMaxUploadSize
	}
	if cfg.Cache == nil {
		cfg.Cache = nopCache{}
	}
	if cfg.Logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		cfg.Logger = l
	}

	return &Service{
		repo:             repo,
		users:            users,
		files:            files,
		gate:             gate,
		cache:            cfg.Cache,
		log:              cfg.Logger,
		policy:           bluemonday.StrictPolicy(),
		now:              func() time.Time { return time.Now().UTC() },
		masterpieceLimit: cfg.MasterpieceLimit,
		maxUploadSize:    cfg.MaxUploadSize,
	}
}

func (s *Service) MaxUploadSize() int64 { return s.maxUploadSize }

func (s *Service) MasterpieceLimit() int { return s.masterpieceLimit }

// UploadArt stores the optional image and records a new artwork owned by
// identity. It returns the new artwork id.
func (s *Service) UploadArt(ctx context.Context, file *FilePayload, req UploadArtRequest, identity *auth.Identity) (int64, error) {
	if identity == nil {
		return 0, auth.ErrHeaderMissing
	}

	req.ArtName = s.clean(req.ArtName)
	req.ArtDescription = s.clean(req.ArtDescription)
	if req.ArtName == "" {
		return 0, ErrBlankName
	}
	if err := validator.Check(req); err != nil {
		return 0, err
	}
	if err := s.ensureCategory(ctx, req.ArtCategorySeq); err != nil {
		return 0, err
	}

	a := &Art{
		UserID:      identity.UserID,
		Name:        req.ArtName,
		Description: req.ArtDescription,
		CategoryID:  req.ArtCategorySeq,
		CreatedAt:   s.now(),
	}

	if file != nil && len(file.Data) > 0 {
		if int64(len(file.Data)) > s.maxUploadSize {
			return 0, ErrFileTooLarge
		}
		contentType := filestore.Sniff(file.Data)
		if !strings.HasPrefix(contentType, "image/") {
			return 0, ErrNotAnImage
		}

		obj, err := s.files.Put(ctx, file.Data, file.Name)
		if err != nil {
			return 0, apperr.Storage(err)
		}
		a.FileRef = obj.Reference
		a.FileName = path.Base(strings.ReplaceAll(file.Name, "\\", "/"))
		a.ContentType = obj.ContentType
	}

	if err := s.repo.CreateArt(ctx, a); err != nil {
		if a.FileRef != "" {
			s.removeBlob(ctx, a.FileRef)
		}
		return 0, fmt.Errorf("create art: %w", err)
	}

	s.invalidateRankings(ctx)
	metrics.RecordArtEvent(metrics.EventUpload)
	s.log.WithFields(logrus.Fields{
		"art_id":   a.ID,
		"user_id":  a.UserID,
		"hasImage": a.HasImage(),
	}).Info("artwork uploaded")

	return a.ID, nil
}

// UpdateArt applies the present fields of req to an artwork owned by userID.
func (s *Service) UpdateArt(ctx context.Context, req UpdateArtRequest, userID int64) (*Art, error) {
	if req.ArtSeq <= 0 {
		return nil, ErrInvalidArtID
	}

	a, err := s.repo.GetArt(ctx, req.ArtSeq)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, ErrNotOwner
	}

	updates := map[string]interface{}{}
	if req.ArtName != nil {
		name := s.clean(*req.ArtName)
		if name == "" {
			return nil, ErrBlankName
		}
		req.ArtName = &name
		updates["name"] = name
	}
	if req.ArtDescription != nil {
		desc := s.clean(*req.ArtDescription)
		req.ArtDescription = &desc
		updates["description"] = desc
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if req.ArtCategorySeq != nil {
		if err := s.ensureCategory(ctx, *req.ArtCategorySeq); err != nil {
			return nil, err
		}
		updates["category_id"] = *req.ArtCategorySeq
	}

	if len(updates) == 0 {
		return a, nil
	}
	updates["updated_at"] = s.now()

	if err := s.repo.UpdateArt(ctx, a.ID, updates); err != nil {
		return nil, err
	}

	s.invalidateRankings(ctx)
	metrics.RecordArtEvent(metrics.EventUpdate)

	return s.repo.GetArt(ctx, a.ID)
}

// DeleteArt validates token itself, then removes the artwork with its likes
// and masterpiece entries in one transaction. The blob is removed afterwards
// and a failure there is only logged.
func (s *Service) DeleteArt(ctx context.Context, artID int64, token string) error {
	identity, err := s.gate.ResolveToken(token)
	if err != nil {
		return err
	}
	if err := auth.RequireRole(identity, auth.RoleArtist); err != nil {
		return err
	}
	if artID <= 0 {
		return ErrInvalidArtID
	}

	var fileRef string
	err = s.repo.WithinTx(ctx, func(tx Repository) error {
		a, err := tx.GetArt(ctx, artID)
		if err != nil {
			return err
		}
		if !identity.Is(a.UserID) {
			return ErrNotOwner
		}
		fileRef = a.FileRef

		if err := tx.DeleteLikesForArt(ctx, artID); err != nil {
			return fmt.Errorf("delete likes: %w", err)
		}
		if err := tx.DeleteMasterpiecesForArt(ctx, artID); err != nil {
			return fmt.Errorf("delete masterpieces: %w", err)
		}
		if err := tx.CompactMasterpieces(ctx, a.UserID); err != nil {
			return fmt.Errorf("compact masterpieces: %w", err)
		}
		n, err := tx.DeleteArt(ctx, artID)
		if err != nil {
			return fmt.Errorf("delete art: %w", err)
		}
		if n == 0 {
			return ErrArtNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	if fileRef != "" {
		s.removeBlob(ctx, fileRef)
	}

	s.invalidateRankings(ctx)
	metrics.RecordArtEvent(metrics.EventDelete)
	s.log.WithFields(logrus.Fields{"art_id": artID, "user_id": identity.UserID}).Info("artwork deleted")

	return nil
}

// GetArtDetail composes the detail view for an authenticated viewer.
func (s *Service) GetArtDetail(ctx context.Context, artID int64, viewer *auth.Identity) (*ArtDetail, error) {
	if viewer == nil {
		return nil, auth.ErrHeaderMissing
	}

	a, err := s.repo.GetArt(ctx, artID)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountLikes(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	liked, err := s.repo.HasLiked(ctx, viewer.UserID, a.ID)
	if err != nil {
		return nil, err
	}
	showcased, err := s.repo.IsMasterpiece(ctx, a.UserID, a.ID)
	if err != nil {
		return nil, err
	}

	detail := &ArtDetail{
		ArtSummary: ArtSummary{
			ID:         a.ID,
			Name:       a.Name,
			CategoryID: a.CategoryID,
			OwnerID:    a.UserID,
			LikeCount:  count,
			HasImage:   a.HasImage(),
			CreatedAt:  a.CreatedAt.UTC(),
		},
		Description:   a.Description,
		Liked:         liked,
		IsOwner:       viewer.Is(a.UserID),
		IsMasterpiece: showcased,
		Owner:         OwnerInfo{ID: a.UserID},
	}

	cat, err := s.repo.GetCategory(ctx, a.CategoryID)
	if err != nil {
		return nil, err
	}
	if cat != nil {
		detail.CategoryName = cat.Name
	}

	if s.users != nil {
		owners, err := s.users.GetByIDs(ctx, []int64{a.UserID})
		if err != nil {
			return nil, err
		}
		if u, ok := owners[a.UserID]; ok {
			detail.Owner.Nickname = u.Nickname
			detail.Owner.ProfileImageURL = u.ProfileImageURL
		}
	}

	return detail, nil
}

// DownloadArt returns the stored image of an artwork.
func (s *Service) DownloadArt(ctx context.Context, artID int64) (*Download, error) {
	a, err := s.repo.GetArt(ctx, artID)
	if err != nil {
		return nil, err
	}
	if !a.HasImage() {
		return nil, ErrImageNotFound
	}

	data, err := s.files.Get(ctx, a.FileRef)
	if err != nil {
		if errors.Is(err, filestore.ErrNotFound) || errors.Is(err, filestore.ErrInvalidReference) {
			return nil, ErrImageNotFound
		}
		return nil, apperr.Storage(err)
	}

	contentType := a.ContentType
	if contentType == "" {
		contentType = filestore.Sniff(data)
	}
	fileName := a.FileName
	if fileName == "" {
		fileName = path.Base(a.FileRef)
	}

	sum := blake2b.Sum256(data)
	return &Download{
		Data:        data,
		FileName:    fileName,
		ContentType: contentType,
		ETag:        `"` + hex.EncodeToString(sum[:16]) + `"`,
	}, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

// CollectOrphanBlobs deletes blobs no artwork references that are older
// than grace. It returns how many blobs were removed.
func (s *Service) CollectOrphanBlobs(ctx context.Context, grace time.Duration) (int, error) {
	refs, err := s.repo.FileRefs(ctx)
	if err != nil {
		return 0, fmt.Errorf("load file refs: %w", err)
	}

	cutoff := s.now().Add(-grace)
	var orphans []string
	err = s.files.Walk(ctx, func(ref string, modTime time.Time) error {
		if _, ok := refs[ref]; ok {
			return nil
		}
		if modTime.After(cutoff) {
			return nil
		}
		orphans = append(orphans, ref)
		return nil
	})
	if err != nil {
		return 0, apperr.Storage(err)
	}

	removed := 0
	for _, ref := range orphans {
		if err := s.files.Delete(ctx, ref); err != nil {
			s.log.WithError(err).WithField("ref", ref).Warn("orphan blob not removed")
			metrics.RecordBlobCleanupFailure()
			continue
		}
		removed++
	}
	return removed, nil
}

func (s *Service) ensureCategory(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrUnknownCategory
	}
	cat, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if cat == nil {
		return ErrUnknownCategory
	}
	return nil
}

func (s *Service) removeBlob(ctx context.Context, ref string) {
	if err := s.files.Delete(ctx, ref); err != nil {
		s.log.WithError(err).WithField("ref", ref).Warn("blob cleanup failed")
		metrics.RecordBlobCleanupFailure()
	}
}

// clean strips markup and surrounding whitespace from user text. The policy
// escapes the text it keeps, so entities are decoded back to what the user
// typed.
func (s *Service) clean(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}
