package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/comitanigiacomo/kanso-habitos/internal/adapters/docstore"
	"github.com/comitanigiacomo/kanso-habitos/internal/core/domain"
)

var _ domain.HabitRepository = (*DocumentHabitRepository)(nil)

type DocumentHabitRepository struct {
	store docstore.Store
}

func NewDocumentHabitRepository(store docstore.Store) *DocumentHabitRepository {
	return &DocumentHabitRepository{store: store}
}

func decodeHabit(doc docstore.Document) (*domain.Habit, error) {
	var h domain.Habit
	if err := docstore.Decode(doc.Fields, &h); err != nil {
		return nil, fmt.Errorf("failed to decode habit %s: %w", doc.ID, err)
	}
	if h.ID == "" {
		h.ID = doc.ID
	}
	return &h, nil
}

func decodeHabits(docs []docstore.Document) ([]*domain.Habit, error) {
	habits := make([]*domain.Habit, 0, len(docs))
	for _, doc := range docs {
		h, err := decodeHabit(doc)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, nil
}

func (r *DocumentHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	fields, err := docstore.Encode(habit)
	if err != nil {
		return err
	}

	err = r.store.Create(ctx, CollectionHabits, habit.ID, fields)
	if errors.Is(err, docstore.ErrAlreadyExists) {
		return fmt.Errorf("%w: id %s is taken", domain.ErrHabitAlreadyExists, habit.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to create habit: %w", err)
	}
	return nil
}

func (r *DocumentHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	doc, err := r.store.Get(ctx, CollectionHabits, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, domain.ErrHabitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}
	return decodeHabit(*doc)
}

func (r *DocumentHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	docs, err := r.store.Query(ctx, docstore.Query{
		Collection: CollectionHabits,
		Filters:    []docstore.Filter{docstore.Where("id_usuario", docstore.OpEq, userID)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	return decodeHabits(docs)
}

func (r *DocumentHabitRepository) ListActiveByName(ctx context.Context, userID, name string, limit int) ([]*domain.Habit, error) {
	docs, err := r.store.Query(ctx, docstore.Query{
		Collection: CollectionHabits,
		Filters: []docstore.Filter{
			docstore.Where("id_usuario", docstore.OpEq, userID),
			docstore.Where("nombre_habito", docstore.OpEq, name),
			docstore.Where("estado_habito", docstore.OpEq, domain.HabitStatusActive),
		},
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query habits by name: %w", err)
	}
	return decodeHabits(docs)
}

func (r *DocumentHabitRepository) HasActiveInCategory(ctx context.Context, categoryName string) (bool, error) {
	docs, err := r.store.Query(ctx, docstore.Query{
		Collection: CollectionHabits,
		Filters: []docstore.Filter{
			docstore.Where("id_categoria", docstore.OpEq, categoryName),
			docstore.Where("estado_habito", docstore.OpEq, domain.HabitStatusActive),
		},
		Limit: 1,
	})
	if err != nil {
		return false, fmt.Errorf("failed to query habits by category: %w", err)
	}
	return len(docs) > 0, nil
}

func (r *DocumentHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	fields, err := docstore.Encode(habit)
	if err != nil {
		return err
	}

	err = r.store.Update(ctx, CollectionHabits, habit.ID, fields)
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.ErrHabitNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}
	return nil
}

func (r *DocumentHabitRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, CollectionHabits, id); err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	return nil
}
