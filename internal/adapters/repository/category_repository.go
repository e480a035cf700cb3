package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/comitanigiacomo/kanso-habitos/internal/adapters/docstore"
	"github.com/comitanigiacomo/kanso-habitos/internal/core/domain"
)

var _ domain.CategoryRepository = (*DocumentCategoryRepository)(nil)

type DocumentCategoryRepository struct {
	store docstore.Store
}

func NewDocumentCategoryRepository(store docstore.Store) *DocumentCategoryRepository {
	return &DocumentCategoryRepository{store: store}
}

func decodeCategory(doc docstore.Document) (*domain.Category, error) {
	var c domain.Category
	if err := docstore.Decode(doc.Fields, &c); err != nil {
		return nil, fmt.Errorf("failed to decode category %s: %w", doc.ID, err)
	}
	if c.ID == "" {
		c.ID = doc.ID
	}
	return &c, nil
}

func (r *DocumentCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	fields, err := docstore.Encode(category)
	if err != nil {
		return err
	}
	if err := r.store.Create(ctx, CollectionCategories, category.ID, fields); err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *DocumentCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	doc, err := r.store.Get(ctx, CollectionCategories, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, domain.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return decodeCategory(*doc)
}

func (r *DocumentCategoryRepository) ListActive(ctx context.Context, userID *string) ([]*domain.Category, error) {
	var owner any
	if userID != nil {
		owner = *userID
	}

	docs, err := r.store.Query(ctx, docstore.Query{
		Collection: CollectionCategories,
		Filters: []docstore.Filter{
			docstore.Where("id_usuario", docstore.OpEq, owner),
			docstore.Where("estado", docstore.OpEq, domain.CategoryStatusActive),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]*domain.Category, 0, len(docs))
	for _, doc := range docs {
		c, err := decodeCategory(doc)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, nil
}

func (r *DocumentCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	fields, err := docstore.Encode(category)
	if err != nil {
		return err
	}

	err = r.store.Update(ctx, CollectionCategories, category.ID, fields)
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.ErrCategoryNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}
