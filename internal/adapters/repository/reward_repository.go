package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/comitanigiacomo/kanso-habitos/internal/adapters/docstore"
	"github.com/comitanigiacomo/kanso-habitos/internal/core/domain"
)

var _ domain.RewardRepository = (*DocumentRewardRepository)(nil)

type DocumentRewardRepository struct {
	store docstore.Store
}

func NewDocumentRewardRepository(store docstore.Store) *DocumentRewardRepository {
	return &DocumentRewardRepository{store: store}
}

func (r *DocumentRewardRepository) AddPoints(ctx context.Context, userID string, points int) error {
	if err := r.store.Increment(ctx, CollectionUsers, userID, fieldBalance, int64(points)); err != nil {
		return fmt.Errorf("failed to add points: %w", err)
	}
	return nil
}

func (r *DocumentRewardRepository) Balance(ctx context.Context, userID string) (int, error) {
	doc, err := r.store.Get(ctx, CollectionUsers, userID)
	if errors.Is(err, docstore.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}

	switch v := doc.Fields[fieldBalance].(type) {
	case float64:
		return int(v), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unexpected balance type %T for user %s", v, userID)
	}
}
