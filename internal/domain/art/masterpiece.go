package art

import (
	"context"
	"fmt"

	"atelier/internal/database"
	"atelier/internal/metrics"
	"atelier/internal/pkg/apperr"
)

// SetMasterpieces replaces the showcase of userID with artIDs in the given
// order. Repeated ids keep their first position. An empty list clears it.
func (s *Service) SetMasterpieces(ctx context.Context, userID int64, artIDs []int64) error {
	ids := dedupe(artIDs)
	if len(ids) > s.masterpieceLimit {
		return apperr.Limit(fmt.Sprintf("at most %d masterpieces are allowed", s.masterpieceLimit))
	}
	for _, id := range ids {
		if id <= 0 {
			return ErrInvalidArtID
		}
	}

	replace := func() error {
		return s.repo.WithinTx(ctx, func(tx Repository) error {
			arts, err := tx.GetArtsByIDs(ctx, ids)
			if err != nil {
				return err
			}
			if len(arts) != len(ids) {
				return ErrArtNotFound
			}
			for _, a := range arts {
				if a.UserID != userID {
					return ErrNotOwnedArt
				}
			}
			return tx.ReplaceMasterpieces(ctx, userID, ids)
		})
	}

	err := replace()
	if database.IsUniqueViolation(err) {
		// A concurrent replace for the same user won the race.
		err = replace()
	}
	if err != nil {
		return err
	}

	metrics.RecordArtEvent(metrics.EventMasterpieceSet)
	s.log.WithField("user_id", userID).WithField("count", len(ids)).Info("masterpieces replaced")
	return nil
}

// GetMasterpieces returns the showcase of ownerID in sequence order.
func (s *Service) GetMasterpieces(ctx context.Context, ownerID int64) ([]ArtSummary, error) {
	return s.repo.ListSummaries(ctx, SummaryQuery{MasterpiecesOf: ownerID, Order: OrderBySequence})
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
