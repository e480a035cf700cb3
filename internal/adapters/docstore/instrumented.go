package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/comitanigiacomo/kanso-habitos/internal/adapters/metrics"
)

var _ Store = (*InstrumentedStore)(nil)

// InstrumentedStore records the latency and outcome of every operation.
type InstrumentedStore struct {
	next Store
}

func NewInstrumentedStore(next Store) *InstrumentedStore {
	return &InstrumentedStore{next: next}
}

func storeStatus(err error) string {
	switch {
	case err == nil:
		return metrics.StoreStatusOK
	case errors.Is(err, ErrNotFound):
		return metrics.StoreStatusNotFound
	case errors.Is(err, ErrAlreadyExists):
		return metrics.StoreStatusConflict
	default:
		return metrics.StoreStatusError
	}
}

func observe(op, collection string, start time.Time, err error) {
	metrics.RecordStoreOperation(op, collection, storeStatus(err), time.Since(start))
}

func (s *InstrumentedStore) Get(ctx context.Context, collection, id string) (doc *Document, err error) {
	defer func(start time.Time) { observe("get", collection, start, err) }(time.Now())
	return s.next.Get(ctx, collection, id)
}

func (s *InstrumentedStore) Set(ctx context.Context, collection, id string, fields Fields) (err error) {
	defer func(start time.Time) { observe("set", collection, start, err) }(time.Now())
	return s.next.Set(ctx, collection, id, fields)
}

func (s *InstrumentedStore) Create(ctx context.Context, collection, id string, fields Fields) (err error) {
	defer func(start time.Time) { observe("create", collection, start, err) }(time.Now())
	return s.next.Create(ctx, collection, id, fields)
}

func (s *InstrumentedStore) Update(ctx context.Context, collection, id string, fields Fields) (err error) {
	defer func(start time.Time) { observe("update", collection, start, err) }(time.Now())
	return s.next.Update(ctx, collection, id, fields)
}

func (s *InstrumentedStore) Delete(ctx context.Context, collection, id string) (err error) {
	defer func(start time.Time) { observe("delete", collection, start, err) }(time.Now())
	return s.next.Delete(ctx, collection, id)
}

func (s *InstrumentedStore) Add(ctx context.Context, collection string, fields Fields) (id string, err error) {
	defer func(start time.Time) { observe("add", collection, start, err) }(time.Now())
	return s.next.Add(ctx, collection, fields)
}

func (s *InstrumentedStore) Query(ctx context.Context, q Query) (docs []Document, err error) {
	defer func(start time.Time) { observe("query", q.Collection, start, err) }(time.Now())
	return s.next.Query(ctx, q)
}

func (s *InstrumentedStore) Increment(ctx context.Context, collection, id, field string, delta int64) (err error) {
	defer func(start time.Time) { observe("increment", collection, start, err) }(time.Now())
	return s.next.Increment(ctx, collection, id, field, delta)
}

func (s *InstrumentedStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *InstrumentedStore) Close() error {
	return s.next.Close()
}
