package services

import (
	"context"
	"sort"
	"strings"

	"github.com/comitanigiacomo/kanso-habitos/internal/core/domain"
)

type CategoryService struct {
	categories domain.CategoryRepository
	habits     domain.HabitRepository
}

func NewCategoryService(categories domain.CategoryRepository, habits domain.HabitRepository) *CategoryService {
	return &CategoryService{
		categories: categories,
		habits:     habits,
	}
}

type CreateCategoryInput struct {
	Name   string
	Color  *string
	Icon   *string
	UserID *string
}

func (s *CategoryService) Create(ctx context.Context, input CreateCategoryInput) (*domain.Category, error) {
	category, err := domain.NewCategory(input.Name, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := category.Apply(domain.CategoryPatch{Color: input.Color, Icon: input.Icon}); err != nil {
		return nil, err
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// List returns the active global categories plus the user's own, each with
// the number of the user's active habits filed under it.
func (s *CategoryService) List(ctx context.Context, userID string) ([]*domain.CategoryView, error) {
	categories, err := s.categories.ListActive(ctx, nil)
	if err != nil {
		return nil, err
	}

	own, err := s.categories.ListActive(ctx, &userID)
	if err != nil {
		return nil, err
	}
	categories = append(categories, own...)

	habits, err := s.habits.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(habits))
	for _, h := range habits {
		if h.IsActive() {
			counts[h.Category]++
		}
	}

	views := make([]*domain.CategoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, &domain.CategoryView{
			Category:    *c,
			TotalHabits: counts[c.Name],
		})
	}

	sort.SliceStable(views, func(i, j int) bool {
		return strings.ToLower(views[i].Name) < strings.ToLower(views[j].Name)
	})

	return views, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, patch domain.CategoryPatch) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := category.Apply(patch); err != nil {
		return nil, err
	}

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete deactivates the category. It is refused with a CategoryInUseError
// while any active habit, of any user, is filed under its name.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}

	inUse, err := s.habits.HasActiveInCategory(ctx, category.Name)
	if err != nil {
		return err
	}
	if inUse {
		return &domain.CategoryInUseError{Name: category.Name}
	}

	category.Deactivate()
	return s.categories.Update(ctx, category)
}
