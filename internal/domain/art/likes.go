package art

import (
	"context"
	"time"

	"atelier/internal/metrics"
)

// AddLike records that userID likes artID. Liking twice changes nothing.
func (s *Service) AddLike(ctx context.Context, userID, artID int64) (*ArtState, error) {
	if err := s.ensureArt(ctx, artID); err != nil {
		return nil, err
	}

	like := &Like{UserID: userID, ArtID: artID, CreatedAt: s.now()}
	if err := s.repo.AddLike(ctx, like); err != nil {
		return nil, err
	}

	s.invalidateRankings(ctx)
	metrics.RecordArtEvent(metrics.EventLike)

	return s.artState(ctx, userID, artID)
}

// RemoveLike withdraws a like. Removing an absent like is not an error.
func (s *Service) RemoveLike(ctx context.Context, userID, artID int64) (*ArtState, error) {
	if err := s.ensureArt(ctx, artID); err != nil {
		return nil, err
	}

	if err := s.repo.RemoveLike(ctx, userID, artID); err != nil {
		return nil, err
	}

	s.invalidateRankings(ctx)
	metrics.RecordArtEvent(metrics.EventUnlike)

	return s.artState(ctx, userID, artID)
}

func (s *Service) LikeCount(ctx context.Context, artID int64) (int64, error) {
	return s.repo.CountLikes(ctx, artID)
}

func (s *Service) LikedArtIDs(ctx context.Context, userID int64) ([]int64, error) {
	return s.repo.LikedArtIDs(ctx, userID)
}

// RecentLikeCount counts likes of artID created at or after windowStart.
func (s *Service) RecentLikeCount(ctx context.Context, artID int64, windowStart time.Time) (int64, error) {
	return s.repo.CountLikesSince(ctx, artID, windowStart)
}

func (s *Service) artState(ctx context.Context, userID, artID int64) (*ArtState, error) {
	count, err := s.repo.CountLikes(ctx, artID)
	if err != nil {
		return nil, err
	}
	liked, err := s.repo.HasLiked(ctx, userID, artID)
	if err != nil {
		return nil, err
	}
	return &ArtState{ArtID: artID, LikeCount: count, Liked: liked}, nil
}

func (s *Service) ensureArt(ctx context.Context, artID int64) error {
	if artID <= 0 {
		return ErrInvalidArtID
	}
	ok, err := s.repo.ArtExists(ctx, artID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrArtNotFound
	}
	return nil
}
