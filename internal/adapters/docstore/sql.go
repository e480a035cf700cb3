package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var _ Store = (*SQLStore)(nil)

// SQLStore keeps every collection in a single documents table whose fields
// column holds the JSON document.
type SQLStore struct {
	db      *sqlx.DB
	dialect dialect
}

func NewPostgresStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db, dialect: postgresDialect}
}

func NewSQLiteStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db, dialect: sqliteDialect}
}

// Migrate creates the documents table when it does not exist yet.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.schema); err != nil {
		return fmt.Errorf("docstore: creating %s schema: %w", s.dialect.name, err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	query := s.db.Rebind(`SELECT id, fields FROM documents WHERE collection = ? AND id = ?`)

	var docID string
	var raw []byte
	err := s.db.QueryRowxContext(ctx, query, collection, id).Scan(&docID, &raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	fields, err := unmarshalFields(raw)
	if err != nil {
		return nil, err
	}
	return &Document{ID: docID, Fields: fields}, nil
}

func (s *SQLStore) Set(ctx context.Context, collection, id string, fields Fields) error {
	data, err := marshalFields(fields)
	if err != nil {
		return err
	}

	query := s.db.Rebind(fmt.Sprintf(`INSERT INTO documents (collection, id, fields)
VALUES (?, ?, %s)
ON CONFLICT (collection, id) DO UPDATE
SET fields = excluded.fields, updated_at = %s`, s.dialect.jsonParam, s.dialect.now))

	_, err = s.db.ExecContext(ctx, query, collection, id, data)
	return err
}

func (s *SQLStore) Create(ctx context.Context, collection, id string, fields Fields) error {
	data, err := marshalFields(fields)
	if err != nil {
		return err
	}

	query := s.db.Rebind(fmt.Sprintf(
		`INSERT INTO documents (collection, id, fields) VALUES (?, ?, %s)`, s.dialect.jsonParam))

	if _, err := s.db.ExecContext(ctx, query, collection, id, data); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s/%s", ErrAlreadyExists, collection, id)
		}
		return err
	}
	return nil
}

func (s *SQLStore) Update(ctx context.Context, collection, id string, fields Fields) error {
	patch, err := normalize(fields)
	if err != nil {
		return err
	}
	if len(patch) == 0 {
		_, err := s.Get(ctx, collection, id)
		return err
	}

	expr, args, err := s.dialect.merge(patch)
	if err != nil {
		return err
	}

	query := s.db.Rebind(fmt.Sprintf(
		`UPDATE documents SET fields = %s, updated_at = %s WHERE collection = ? AND id = ?`,
		expr, s.dialect.now))
	args = append(args, collection, id)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, collection, id string) error {
	query := s.db.Rebind(`DELETE FROM documents WHERE collection = ? AND id = ?`)
	_, err := s.db.ExecContext(ctx, query, collection, id)
	return err
}

func (s *SQLStore) Add(ctx context.Context, collection string, fields Fields) (string, error) {
	id := uuid.NewString()
	if err := s.Create(ctx, collection, id, fields); err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLStore) Query(ctx context.Context, q Query) ([]Document, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(`SELECT id, fields FROM documents WHERE collection = ?`)
	args := []any{q.Collection}

	for _, f := range q.Filters {
		cond, condArgs, err := s.dialect.condition(f)
		if err != nil {
			return nil, err
		}
		sb.WriteString(" AND ")
		sb.WriteString(cond)
		args = append(args, condArgs...)
	}

	sb.WriteString(" ORDER BY id")
	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.Limit)
	}

	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(sb.String()), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	docs := []Document{}
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}

		fields, err := unmarshalFields(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: id, Fields: fields})
	}
	return docs, rows.Err()
}

func (s *SQLStore) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	if err := validateField(field); err != nil {
		return err
	}

	query := s.db.Rebind(s.dialect.increment(field))
	res, err := s.db.ExecContext(ctx, query, collection, id, delta, delta)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q is not a number", ErrInvalidValue, field)
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func marshalFields(fields Fields) (string, error) {
	if fields == nil {
		fields = Fields{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("docstore: marshal fields: %w", err)
	}
	return string(data), nil
}

func unmarshalFields(raw []byte) (Fields, error) {
	fields := Fields{}
	if len(raw) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("docstore: corrupted document: %w", err)
	}
	return fields, nil
}

// isUniqueViolation recognises primary key collisions from every supported
// driver: lib/pq, pgx and modernc sqlite.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
