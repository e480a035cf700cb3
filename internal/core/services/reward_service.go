package services

import (
	"context"
	"strings"

	"github.com/comitanigiacomo/kanso-habitos/internal/core/domain"
)

type RewardService struct {
	rewards domain.RewardRepository
}

func NewRewardService(rewards domain.RewardRepository) *RewardService {
	return &RewardService{rewards: rewards}
}

// Grant adds points to the user's balance and returns the amount granted.
// Nil points means DefaultRewardPoints.
func (s *RewardService) Grant(ctx context.Context, userID string, points *int) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, domain.ErrUserIDRequired
	}

	amount := domain.DefaultRewardPoints
	if points != nil {
		amount = *points
	}
	if amount <= 0 {
		return 0, domain.ErrInvalidPoints
	}

	if err := s.rewards.AddPoints(ctx, userID, amount); err != nil {
		return 0, err
	}
	return amount, nil
}

func (s *RewardService) Balance(ctx context.Context, userID string) (int, error) {
	return s.rewards.Balance(ctx, userID)
}
