package art

import (
	"context"
	"time"

	"atelier/internal/domain"
)

// Repository is the storage side of the art domain.
type Repository interface {
	// WithinTx runs fn against a repository bound to one transaction.
	WithinTx(ctx context.Context, fn func(Repository) error) error

	CreateArt(ctx context.Context, a *Art) error
	GetArt(ctx context.Context, id int64) (*Art, error)
	GetArtsByIDs(ctx context.Context, ids []int64) ([]Art, error)
	ArtExists(ctx context.Context, id int64) (bool, error)
	UpdateArt(ctx context.Context, id int64, updates map[string]interface{}) error
	DeleteArt(ctx context.Context, id int64) (int64, error)
	FileRefs(ctx context.Context) (map[string]struct{}, error)

	GetCategory(ctx context.Context, id int64) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)

	AddLike(ctx context.Context, like *Like) error
	RemoveLike(ctx context.Context, userID, artID int64) error
	DeleteLikesForArt(ctx context.Context, artID int64) error
	CountLikes(ctx context.Context, artID int64) (int64, error)
	CountLikesSince(ctx context.Context, artID int64, since time.Time) (int64, error)
	HasLiked(ctx context.Context, userID, artID int64) (bool, error)
	LikedArtIDs(ctx context.Context, userID int64) ([]int64, error)

	ReplaceMasterpieces(ctx context.Context, userID int64, artIDs []int64) error
	DeleteMasterpiecesForArt(ctx context.Context, artID int64) error
	CompactMasterpieces(ctx context.Context, userID int64) error
	IsMasterpiece(ctx context.Context, userID, artID int64) (bool, error)

	ListSummaries(ctx context.Context, q SummaryQuery) ([]ArtSummary, error)
}

// OwnerDirectory resolves display info of artwork owners.
type OwnerDirectory interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.User, error)
}

// ListCache keeps computed ranking lists for a short time.
type ListCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	Invalidate(ctx context.Context, keys ...string) error
}

type nopCache struct{}

func (nopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (nopCache) Set(context.Context, string, any) error         { return nil }
func (nopCache) Invalidate(context.Context, ...string) error    { return nil }
