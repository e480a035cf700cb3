// Package docstore is the document store adapter: flat JSON documents
// grouped in named collections, with equality and range queries.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrAlreadyExists = errors.New("document already exists")
	ErrInvalidField  = errors.New("invalid field name")
	ErrInvalidValue  = errors.New("invalid value")
)

var fieldNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Fields is the content of a document. Values are JSON scalars or arrays;
// numbers read back from any store are float64.
type Fields map[string]any

type Document struct {
	ID     string
	Fields Fields
}

type Op string

const (
	OpEq  Op = "=="
	OpGt  Op = ">"
	OpGte Op = ">="
	OpLt  Op = "<"
	OpLte Op = "<="
)

type Filter struct {
	Field string
	Op    Op
	Value any
}

func Where(field string, op Op, value any) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

type Query struct {
	Collection string
	Filters    []Filter
	// Limit caps the number of results when > 0.
	Limit int
}

type Store interface {
	// Get returns ErrNotFound when the document does not exist.
	Get(ctx context.Context, collection, id string) (*Document, error)

	// Set creates the document or replaces all of its fields.
	Set(ctx context.Context, collection, id string, fields Fields) error

	// Create inserts the document and fails with ErrAlreadyExists if the id is taken.
	Create(ctx context.Context, collection, id string, fields Fields) error

	// Update merges fields into an existing document, ErrNotFound otherwise.
	Update(ctx context.Context, collection, id string, fields Fields) error

	// Delete removes the document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error

	// Add inserts a document under a store-assigned id and returns it.
	Add(ctx context.Context, collection string, fields Fields) (string, error)

	// Query returns the matching documents ordered by id.
	Query(ctx context.Context, q Query) ([]Document, error)

	// Increment atomically adds delta to a numeric field, creating the
	// document and the field when missing.
	Increment(ctx context.Context, collection, id, field string, delta int64) error

	Ping(ctx context.Context) error
	Close() error
}

func validateField(name string) error {
	if !fieldNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidField, name)
	}
	return nil
}

func validateQuery(q Query) error {
	for _, f := range q.Filters {
		if err := validateField(f.Field); err != nil {
			return err
		}
		switch f.Op {
		case OpEq:
		case OpGt, OpGte, OpLt, OpLte:
			if f.Value == nil {
				return fmt.Errorf("%w: range filter on %q needs a value", ErrInvalidValue, f.Field)
			}
		default:
			return fmt.Errorf("%w: operator %q", ErrInvalidValue, f.Op)
		}
	}
	return nil
}
