package docstore

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// dialect holds the SQL that differs between the JSONB (Postgres) and the
// JSON1 (SQLite) flavours of the documents table. Field names are validated
// before they are spliced into expressions.
type dialect struct {
	name      string
	schema    string
	jsonParam string
	now       string

	text    func(field string) string
	number  func(field string) string
	boolean func(field string) string
	isNull  func(field string) string

	// merge returns the expression assigned to the fields column when a
	// partial update is applied, together with its arguments.
	merge func(patch Fields) (string, []any, error)

	// increment returns the upsert statement for Increment; its arguments
	// are collection, id, delta, delta. The update is skipped, affecting no
	// rows, when the stored field is not a number.
	increment func(field string) string
}

var postgresDialect = dialect{
	name: "postgres",
	schema: `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	fields JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_fields ON documents USING GIN (fields);
`,
	jsonParam: "CAST(? AS jsonb)",
	now:       "now()",

	text: func(f string) string {
		return fmt.Sprintf("fields->>'%s'", f)
	},
	number: func(f string) string {
		return fmt.Sprintf("(fields->>'%s')::double precision", f)
	},
	boolean: func(f string) string {
		return fmt.Sprintf("(fields->>'%s')::boolean", f)
	},
	isNull: func(f string) string {
		return fmt.Sprintf("(fields->'%s' IS NULL OR jsonb_typeof(fields->'%s') = 'null')", f, f)
	},
	merge: func(patch Fields) (string, []any, error) {
		data, err := json.Marshal(patch)
		if err != nil {
			return "", nil, err
		}
		return "fields || CAST(? AS jsonb)", []any{string(data)}, nil
	},
	increment: func(f string) string {
		return fmt.Sprintf(`INSERT INTO documents (collection, id, fields)
VALUES (?, ?, jsonb_build_object('%[1]s', CAST(? AS numeric)))
ON CONFLICT (collection, id) DO UPDATE
SET fields = jsonb_set(documents.fields, '{%[1]s}', to_jsonb(COALESCE((documents.fields->>'%[1]s')::numeric, 0) + CAST(? AS numeric))),
    updated_at = now()
WHERE documents.fields->'%[1]s' IS NULL OR jsonb_typeof(documents.fields->'%[1]s') IN ('number', 'null')`, f)
	},
}

var sqliteDialect = dialect{
	name: "sqlite",
	schema: `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	fields TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (collection, id)
);
`,
	jsonParam: "json(?)",
	now:       "CURRENT_TIMESTAMP",

	text: func(f string) string {
		return fmt.Sprintf("json_extract(fields, '$.%s')", f)
	},
	number: func(f string) string {
		return fmt.Sprintf("CAST(json_extract(fields, '$.%s') AS REAL)", f)
	},
	boolean: func(f string) string {
		return fmt.Sprintf("json_extract(fields, '$.%s')", f)
	},
	isNull: func(f string) string {
		return fmt.Sprintf("json_extract(fields, '$.%s') IS NULL", f)
	},
	// json_patch would drop keys set to null, so every key gets its own
	// json_set path instead.
	merge: func(patch Fields) (string, []any, error) {
		keys := make([]string, 0, len(patch))
		for k := range patch {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := []string{"fields"}
		args := make([]any, 0, len(keys))
		for _, k := range keys {
			if err := validateField(k); err != nil {
				return "", nil, err
			}
			data, err := json.Marshal(patch[k])
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, fmt.Sprintf("'$.%s', json(?)", k))
			args = append(args, string(data))
		}
		return "json_set(" + strings.Join(parts, ", ") + ")", args, nil
	},
	increment: func(f string) string {
		return fmt.Sprintf(`INSERT INTO documents (collection, id, fields)
VALUES (?, ?, json_object('%[1]s', ?))
ON CONFLICT (collection, id) DO UPDATE
SET fields = json_set(documents.fields, '$.%[1]s', COALESCE(json_extract(documents.fields, '$.%[1]s'), 0) + ?),
    updated_at = CURRENT_TIMESTAMP
WHERE json_type(documents.fields, '$.%[1]s') IS NULL OR json_type(documents.fields, '$.%[1]s') IN ('integer', 'real', 'null')`, f)
	},
}

// condition renders one filter as a SQL predicate with its arguments.
func (d dialect) condition(f Filter) (string, []any, error) {
	if f.Value == nil {
		return d.isNull(f.Field), nil, nil
	}

	op := string(f.Op)
	if f.Op == OpEq {
		op = "="
	}

	if n, ok := numeric(f.Value); ok {
		return fmt.Sprintf("%s %s ?", d.number(f.Field), op), []any{n}, nil
	}

	switch v := f.Value.(type) {
	case string:
		return fmt.Sprintf("%s %s ?", d.text(f.Field), op), []any{v}, nil
	case bool:
		if f.Op != OpEq {
			return "", nil, fmt.Errorf("%w: range filter on boolean %q", ErrInvalidValue, f.Field)
		}
		return fmt.Sprintf("%s = ?", d.boolean(f.Field)), []any{v}, nil
	}
	return "", nil, fmt.Errorf("%w: %T for %q", ErrInvalidValue, f.Value, f.Field)
}
