package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/comitanigiacomo/kanso-habitos/internal/adapters/docstore"
	"github.com/comitanigiacomo/kanso-habitos/internal/core/domain"
)

var _ domain.TrackingRepository = (*DocumentTrackingRepository)(nil)

type DocumentTrackingRepository struct {
	store docstore.Store
}

func NewDocumentTrackingRepository(store docstore.Store) *DocumentTrackingRepository {
	return &DocumentTrackingRepository{store: store}
}

func decodeRecord(doc docstore.Document) (*domain.TrackingRecord, error) {
	var rec domain.TrackingRecord
	if err := docstore.Decode(doc.Fields, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode tracking record %s: %w", doc.ID, err)
	}
	rec.ID = doc.ID
	return &rec, nil
}

func (r *DocumentTrackingRepository) list(ctx context.Context, q docstore.Query) ([]*domain.TrackingRecord, error) {
	q.Collection = CollectionTracking

	docs, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracking records: %w", err)
	}

	records := make([]*domain.TrackingRecord, 0, len(docs))
	for _, doc := range docs {
		rec, err := decodeRecord(doc)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *DocumentTrackingRepository) FindByHabitAndDate(ctx context.Context, habitID, date string) (*domain.TrackingRecord, error) {
	records, err := r.list(ctx, docstore.Query{
		Filters: []docstore.Filter{
			docstore.Where("id_habito", docstore.OpEq, habitID),
			docstore.Where("fecha", docstore.OpEq, date),
		},
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrTrackingNotFound
	}
	return records[0], nil
}

func (r *DocumentTrackingRepository) Create(ctx context.Context, record *domain.TrackingRecord) error {
	fields, err := docstore.Encode(record)
	if err != nil {
		return err
	}

	err = r.store.Create(ctx, CollectionTracking, record.ID, fields)
	if errors.Is(err, docstore.ErrAlreadyExists) {
		return domain.ErrTrackingConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create tracking record: %w", err)
	}
	return nil
}

func (r *DocumentTrackingRepository) Update(ctx context.Context, record *domain.TrackingRecord) error {
	fields, err := docstore.Encode(record)
	if err != nil {
		return err
	}

	err = r.store.Update(ctx, CollectionTracking, record.ID, fields)
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.ErrTrackingNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update tracking record: %w", err)
	}
	return nil
}

func (r *DocumentTrackingRepository) ListByHabitSince(ctx context.Context, habitID, fromDate string) ([]*domain.TrackingRecord, error) {
	return r.list(ctx, docstore.Query{
		Filters: []docstore.Filter{
			docstore.Where("id_habito", docstore.OpEq, habitID),
			docstore.Where("fecha", docstore.OpGte, fromDate),
		},
	})
}

func (r *DocumentTrackingRepository) ListCompleted(ctx context.Context, habitID string) ([]*domain.TrackingRecord, error) {
	return r.list(ctx, docstore.Query{
		Filters: []docstore.Filter{
			docstore.Where("id_habito", docstore.OpEq, habitID),
			docstore.Where("progreso", docstore.OpGte, 1.0),
		},
	})
}
