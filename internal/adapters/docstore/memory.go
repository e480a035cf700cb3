package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps documents in process memory. Each operation holds the
// store lock, so single-document operations are atomic.
type MemoryStore struct {
	collections map[string]map[string]Fields

	mu sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Fields),
	}
}

func (s *MemoryStore) collection(name string) map[string]Fields {
	c, ok := s.collections[name]
	if !ok {
		c = make(map[string]Fields)
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}

	clone, err := normalize(fields)
	if err != nil {
		return nil, err
	}
	return &Document{ID: id, Fields: clone}, nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, fields Fields) error {
	clone, err := normalize(fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.collection(collection)[id] = clone
	return nil
}

func (s *MemoryStore) Create(ctx context.Context, collection, id string, fields Fields) error {
	clone, err := normalize(fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)
	if _, exists := c[id]; exists {
		return fmt.Errorf("%w: %s/%s", ErrAlreadyExists, collection, id)
	}
	c[id] = clone
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields Fields) error {
	patch, err := normalize(fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range patch {
		existing[k] = v
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections[collection], id)
	return nil
}

func (s *MemoryStore) Add(ctx context.Context, collection string, fields Fields) (string, error) {
	id := uuid.NewString()
	if err := s.Create(ctx, collection, id, fields); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MemoryStore) Query(ctx context.Context, q Query) ([]Document, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.collections[q.Collection]
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	docs := []Document{}
	for _, id := range ids {
		if !matchesAll(c[id], q.Filters) {
			continue
		}

		clone, err := normalize(c[id])
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: id, Fields: clone})

		if q.Limit > 0 && len(docs) >= q.Limit {
			break
		}
	}
	return docs, nil
}

func (s *MemoryStore) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	if err := validateField(field); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)
	doc, ok := c[id]
	if !ok {
		doc = Fields{}
		c[id] = doc
	}

	var current float64
	if v := doc[field]; v != nil {
		n, ok := numeric(v)
		if !ok {
			return fmt.Errorf("%w: %q is not a number", ErrInvalidValue, field)
		}
		current = n
	}
	doc[field] = current + float64(delta)
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func matchesAll(fields Fields, filters []Filter) bool {
	for _, f := range filters {
		if !matches(fields[f.Field], f.Op, f.Value) {
			return false
		}
	}
	return true
}

// matches compares like a typed document database: values of different
// kinds never match, and a nil filter value matches missing or null fields.
func matches(docVal any, op Op, want any) bool {
	if want == nil {
		return op == OpEq && docVal == nil
	}
	if docVal == nil {
		return false
	}

	if w, ok := numeric(want); ok {
		d, ok := numeric(docVal)
		if !ok {
			return false
		}
		return compareOrdered(d, w, op)
	}

	switch w := want.(type) {
	case string:
		d, ok := docVal.(string)
		if !ok {
			return false
		}
		return compareOrdered(strings.Compare(d, w), 0, op)
	case bool:
		d, ok := docVal.(bool)
		return ok && op == OpEq && d == w
	}
	return false
}

func compareOrdered[T int | float64](a, b T, op Op) bool {
	switch op {
	case OpEq:
		return a == b
	case OpGt:
		return a > b
	case OpGte:
		return a >= b
	case OpLt:
		return a < b
	case OpLte:
		return a <= b
	}
	return false
}
