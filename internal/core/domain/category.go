package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryInUse         = errors.New("category has active habits")
	ErrCategoryNameEmpty     = fmt.Errorf("%w: category name cannot be empty", ErrValidation)
	ErrInvalidCategoryStatus = fmt.Errorf("%w: invalid category status (must be activa or inactiva)", ErrValidation)
)

const (
	CategoryStatusActive   = "activa"
	CategoryStatusInactive = "inactiva"
	DefaultCategoryColor   = "#9E9E9E"
	DefaultCategoryIcon    = "category"

	categoryIDPrefix = "ch_"
)

// CategoryInUseError names the category whose deletion was refused.
type CategoryInUseError struct {
	Name string
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("category %q has active habits", e.Name)
}

func (e *CategoryInUseError) Is(target error) bool {
	return target == ErrCategoryInUse
}

type Category struct {
	ID        string    `json:"id_categoria"`
	Name      string    `json:"nombre"`
	Color     string    `json:"color"`
	Icon      string    `json:"icono"`
	UserID    *string   `json:"id_usuario"`
	Status    string    `json:"estado"`
	CreatedAt time.Time `json:"fecha_creacion"`
}

// CategoryView is a category annotated with the number of the requesting
// user's active habits filed under it.
type CategoryView struct {
	Category
	TotalHabits int `json:"total_habitos"`
}

type CategoryPatch struct {
	Name   *string
	Color  *string
	Icon   *string
	Status *string
}

func NewCategory(name string, userID *string) (*Category, error) {
	c := &Category{
		ID:        NewShortID(categoryIDPrefix),
		Name:      strings.TrimSpace(name),
		Color:     DefaultCategoryColor,
		Icon:      DefaultCategoryIcon,
		UserID:    userID,
		Status:    CategoryStatusActive,
		CreatedAt: time.Now().UTC(),
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Category) Apply(p CategoryPatch) error {
	next := *c

	if p.Name != nil {
		next.Name = strings.TrimSpace(*p.Name)
	}
	if p.Color != nil {
		next.Color = *p.Color
	}
	if p.Icon != nil {
		next.Icon = *p.Icon
	}
	if p.Status != nil {
		next.Status = *p.Status
	}

	if err := next.Validate(); err != nil {
		return err
	}

	*c = next
	return nil
}

func (c *Category) Validate() error {
	if c.Name == "" {
		return ErrCategoryNameEmpty
	}

	switch c.Status {
	case CategoryStatusActive, CategoryStatusInactive:
	default:
		return ErrInvalidCategoryStatus
	}
	return nil
}

// Deactivate is the soft delete for categories.
func (c *Category) Deactivate() {
	c.Status = CategoryStatusInactive
}
