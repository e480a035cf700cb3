package domain

import "fmt"

var (
	ErrUserIDRequired = fmt.Errorf("%w: user id is required", ErrValidation)
	ErrInvalidPoints  = fmt.Errorf("%w: points must be positive", ErrValidation)
)

const DefaultRewardPoints = 5
