package art

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"atelier/internal/database"
)

type artRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &artRepository{db: db}
}

func (r *artRepository) WithinTx(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&artRepository{db: tx})
	})
}

func (r *artRepository) CreateArt(ctx context.Context, a *Art) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *artRepository) GetArt(ctx context.Context, id int64) (*Art, error) {
	var a Art
	err := r.db.WithContext(ctx).First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrArtNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *artRepository) GetArtsByIDs(ctx context.Context, ids []int64) ([]Art, error) {
	if len(ids) == 0 {
		return []Art{}, nil
	}
	var arts []Art
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&arts).Error
	return arts, err
}

func (r *artRepository) ArtExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Art{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *artRepository) UpdateArt(ctx context.Context, id int64, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&Art{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrArtNotFound
	}
	return nil
}

// DeleteArt returns the number of rows removed so callers can detect a
// concurrent delete.
func (r *artRepository) DeleteArt(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&Art{}, id)
	return res.RowsAffected, res.Error
}

func (r *artRepository) FileRefs(ctx context.Context) (map[string]struct{}, error) {
	var refs []string
	err := r.db.WithContext(ctx).Model(&Art{}).
		Where("file_ref <> ''").
		Pluck("file_ref", &refs).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		out[ref] = struct{}{}
	}
	return out, nil
}

func (r *artRepository) GetCategory(ctx context.Context, id int64) (*Category, error) {
	var c Category
	err := r.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *artRepository) ListCategories(ctx context.Context) ([]Category, error) {
	var cats []Category
	err := r.db.WithContext(ctx).Order("id ASC").Find(&cats).Error
	return cats, err
}

// AddLike is a no-op when the pair already exists. A like for an artwork
// deleted after the caller's existence check fails with ErrArtNotFound.
func (r *artRepository) AddLike(ctx context.Context, like *Like) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "art_id"}},
			DoNothing: true,
		}).
		Create(like).Error
	if database.IsForeignKeyViolation(err) {
		return ErrArtNotFound
	}
	return err
}

func (r *artRepository) RemoveLike(ctx context.Context, userID, artID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND art_id = ?", userID, artID).
		Delete(&Like{}).Error
}

func (r *artRepository) DeleteLikesForArt(ctx context.Context, artID int64) error {
	return r.db.WithContext(ctx).Where("art_id = ?", artID).Delete(&Like{}).Error
}

func (r *artRepository) CountLikes(ctx context.Context, artID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Like{}).Where("art_id = ?", artID).Count(&count).Error
	return count, err
}

func (r *artRepository) CountLikesSince(ctx context.Context, artID int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Like{}).
		Where("art_id = ? AND created_at >= ?", artID, since.UTC()).
		Count(&count).Error
	return count, err
}

func (r *artRepository) HasLiked(ctx context.Context, userID, artID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Like{}).
		Where("user_id = ? AND art_id = ?", userID, artID).
		Count(&count).Error
	return count > 0, err
}

func (r *artRepository) LikedArtIDs(ctx context.Context, userID int64) ([]int64, error) {
	ids := []int64{}
	err := r.db.WithContext(ctx).Model(&Like{}).
		Where("user_id = ?", userID).
		Order("art_id ASC").
		Pluck("art_id", &ids).Error
	return ids, err
}

func (r *artRepository) ReplaceMasterpieces(ctx context.Context, userID int64, artIDs []int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("user_id = ?", userID).Delete(&Masterpiece{}).Error; err != nil {
		return fmt.Errorf("clear masterpieces: %w", err)
	}
	if len(artIDs) == 0 {
		return nil
	}

	entries := make([]Masterpiece, 0, len(artIDs))
	for i, id := range artIDs {
		entries = append(entries, Masterpiece{UserID: userID, ArtID: id, Sequence: i})
	}
	err := db.Create(&entries).Error
	if database.IsForeignKeyViolation(err) {
		return ErrArtNotFound
	}
	return err
}

func (r *artRepository) DeleteMasterpiecesForArt(ctx context.Context, artID int64) error {
	return r.db.WithContext(ctx).Where("art_id = ?", artID).Delete(&Masterpiece{}).Error
}

// CompactMasterpieces renumbers userID's entries to 0..n-1 keeping their
// order. Ascending updates never collide on the sequence index.
func (r *artRepository) CompactMasterpieces(ctx context.Context, userID int64) error {
	var entries []Masterpiece
	db := r.db.WithContext(ctx)
	if err := db.Where("user_id = ?", userID).Order("sequence ASC").Find(&entries).Error; err != nil {
		return err
	}

	for i, e := range entries {
		if e.Sequence == i {
			continue
		}
		err := db.Model(&Masterpiece{}).
			Where("user_id = ? AND art_id = ?", userID, e.ArtID).
			Update("sequence", i).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *artRepository) IsMasterpiece(ctx context.Context, userID, artID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Masterpiece{}).
		Where("user_id = ? AND art_id = ?", userID, artID).
		Count(&count).Error
	return count > 0, err
}

// SummaryQuery selects one ranking view. Zero fields are ignored.
type SummaryQuery struct {
	ArtID          int64
	CategoryID     int64
	OwnerID        int64
	LikedBy        int64
	MasterpiecesOf int64
	RecentSince    time.Time
	Order          SummaryOrder
}

type SummaryOrder int

const (
	OrderByID SummaryOrder = iota
	OrderByNewest
	OrderByLikes
	OrderByRecentLikes
	OrderByLikedAt
	OrderBySequence
)

const summaryColumns = `a.id, a.user_id, a.name, a.category_id, a.file_ref, a.created_at,
	(SELECT COUNT(*) FROM art_likes l WHERE l.art_id = a.id) AS like_count`

type summaryRow struct {
	ID              int64
	UserID          int64
	Name            string
	CategoryID      int64
	FileRef         string
	CreatedAt       time.Time
	LikeCount       int64
	RecentLikeCount int64
}

// ListSummaries builds every list view as one statement. Like counts come
// from a correlated subquery, so the row count never multiplies queries.
func (r *artRepository) ListSummaries(ctx context.Context, q SummaryQuery) ([]ArtSummary, error) {
	var (
		sb    strings.Builder
		where []string
		args  []interface{}
	)

	sb.WriteString("SELECT ")
	sb.WriteString(summaryColumns)

	if q.Order == OrderByRecentLikes {
		// Inner join on the window drops artworks without recent likes.
		sb.WriteString(", COUNT(rl.art_id) AS recent_like_count FROM arts a")
		sb.WriteString(" JOIN art_likes rl ON rl.art_id = a.id AND rl.created_at >= ?")
		args = append(args, q.RecentSince.UTC())
	} else {
		sb.WriteString(" FROM arts a")
	}

	if q.LikedBy > 0 {
		sb.WriteString(" JOIN art_likes ul ON ul.art_id = a.id AND ul.user_id = ?")
		args = append(args, q.LikedBy)
	}
	if q.MasterpiecesOf > 0 {
		sb.WriteString(" JOIN masterpieces m ON m.art_id = a.id AND m.user_id = ?")
		args = append(args, q.MasterpiecesOf)
	}

	if q.ArtID > 0 {
		where = append(where, "a.id = ?")
		args = append(args, q.ArtID)
	}
	if q.CategoryID > 0 {
		where = append(where, "a.category_id = ?")
		args = append(args, q.CategoryID)
	}
	if q.OwnerID > 0 {
		where = append(where, "a.user_id = ?")
		args = append(args, q.OwnerID)
	}
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}

	if q.Order == OrderByRecentLikes {
		sb.WriteString(" GROUP BY a.id, a.user_id, a.name, a.category_id, a.file_ref, a.created_at")
	}

	switch q.Order {
	case OrderByNewest:
		sb.WriteString(" ORDER BY a.created_at DESC, a.id DESC")
	case OrderByLikes:
		sb.WriteString(" ORDER BY like_count DESC, a.created_at DESC, a.id DESC")
	case OrderByRecentLikes:
		sb.WriteString(" ORDER BY recent_like_count DESC, a.created_at DESC, a.id DESC")
	case OrderByLikedAt:
		sb.WriteString(" ORDER BY ul.created_at DESC, a.id DESC")
	case OrderBySequence:
		sb.WriteString(" ORDER BY m.sequence ASC")
	default:
		sb.WriteString(" ORDER BY a.id ASC")
	}

	var rows []summaryRow
	if err := r.db.WithContext(ctx).Raw(sb.String(), args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]ArtSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, ArtSummary{
			ID:              row.ID,
			Name:            row.Name,
			CategoryID:      row.CategoryID,
			OwnerID:         row.UserID,
			LikeCount:       row.LikeCount,
			RecentLikeCount: row.RecentLikeCount,
			HasImage:        row.FileRef != "",
			CreatedAt:       row.CreatedAt.UTC(),
		})
	}
	return out, nil
}
