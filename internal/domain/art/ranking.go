package art

import (
	"context"
	"time"
)

// TrendingWindow is how far back a like counts towards trending.
const TrendingWindow = 14 * 24 * time.Hour

const (
	popularKey  = "ranking:popular"
	trendingKey = "ranking:trending"
)

func (s *Service) ListAll(ctx context.Context) ([]ArtSummary, error) {
	return s.repo.ListSummaries(ctx, SummaryQuery{Order: OrderByID})
}

func (s *Service) ListNew(ctx context.Context) ([]ArtSummary, error) {
	return s.repo.ListSummaries(ctx, SummaryQuery{Order: OrderByNewest})
}

func (s *Service) ListByCategory(ctx context.Context, categoryID int64) ([]ArtSummary, error) {
	if categoryID <= 0 {
		return nil, ErrUnknownCategory
	}
	return s.repo.ListSummaries(ctx, SummaryQuery{CategoryID: categoryID, Order: OrderByNewest})
}

func (s *Service) ListByOwner(ctx context.Context, ownerID int64) ([]ArtSummary, error) {
	return s.repo.ListSummaries(ctx, SummaryQuery{OwnerID: ownerID, Order: OrderByNewest})
}

// ListLikedBy returns what userID liked, most recently liked first.
func (s *Service) ListLikedBy(ctx context.Context, userID int64) ([]ArtSummary, error) {
	return s.repo.ListSummaries(ctx, SummaryQuery{LikedBy: userID, Order: OrderByLikedAt})
}

// ListPopular orders by all-time like count.
func (s *Service) ListPopular(ctx context.Context) ([]ArtSummary, error) {
	return s.cachedList(ctx, popularKey, func() ([]ArtSummary, error) {
		return s.repo.ListSummaries(ctx, SummaryQuery{Order: OrderByLikes})
	})
}

// ListTrending orders by likes inside TrendingWindow. Artworks without a
// like in the window are left out.
func (s *Service) ListTrending(ctx context.Context) ([]ArtSummary, error) {
	return s.cachedList(ctx, trendingKey, func() ([]ArtSummary, error) {
		return s.repo.ListSummaries(ctx, SummaryQuery{
			RecentSince: s.now().Add(-TrendingWindow),
			Order:       OrderByRecentLikes,
		})
	})
}

func (s *Service) cachedList(ctx context.Context, key string, load func() ([]ArtSummary, error)) ([]ArtSummary, error) {
	var cached []ArtSummary
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("ranking cache read failed")
	}
	if hit {
		return cached, nil
	}

	list, err := load()
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, list); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("ranking cache write failed")
	}
	return list, nil
}

func (s *Service) invalidateRankings(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, popularKey, trendingKey); err != nil {
		s.log.WithError(err).Warn("ranking cache invalidation failed")
	}
}
