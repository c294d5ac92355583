package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const documentsTable = "documents"

// SQLiteStore implements Store on a single SQLite table holding one JSON
// body per (collection, id). Conditions are evaluated with json_extract.
type SQLiteStore struct {
	db *sqlx.DB
}

// OpenSQLite opens the database at dsn and creates the documents table.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = "file:sughar.db?_pragma=foreign_keys(1)"
	}
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := NewSQLiteStore(db)
	if err := s.CreateTable(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating documents table: %w", err)
	}
	return s, nil
}

// NewSQLiteStore wraps an open database handle.
func NewSQLiteStore(db *sqlx.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// CreateTable creates the documents table if it does not exist.
func (s *SQLiteStore) CreateTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			body       TEXT NOT NULL,
			PRIMARY KEY (collection, id)
		)`)
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, collection, id string, out any) error {
	if id == "" {
		return ErrNotFound
	}
	query, args := entsql.Dialect(dialect.SQLite).
		Select("body").
		From(entsql.Table(documentsTable)).
		Where(entsql.And(entsql.EQ("collection", collection), entsql.EQ("id", id))).
		Limit(1).
		Query()

	var bodies []string
	if err := s.db.SelectContext(ctx, &bodies, query, args...); err != nil {
		return fmt.Errorf("querying %s/%s: %w", collection, id, err)
	}
	if len(bodies) == 0 {
		return ErrNotFound
	}
	if err := json.Unmarshal([]byte(bodies[0]), out); err != nil {
		return fmt.Errorf("decoding %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *SQLiteStore) Find(ctx context.Context, collection string, filter Filter, out any) error {
	if err := filter.Validate(); err != nil {
		return err
	}

	var bodies []string
	if !filter.MatchesNothing() {
		query, args := s.selectQuery(collection, filter)
		if err := s.db.SelectContext(ctx, &bodies, query, args...); err != nil {
			return fmt.Errorf("querying %s: %w", collection, err)
		}
	}

	arr := "[" + strings.Join(bodies, ",") + "]"
	if err := json.Unmarshal([]byte(arr), out); err != nil {
		return fmt.Errorf("decoding %s results: %w", collection, err)
	}
	return nil
}

// selectQuery builds the SELECT for filter. Rows come back in insertion order.
func (s *SQLiteStore) selectQuery(collection string, filter Filter) (string, []any) {
	preds := []*entsql.Predicate{entsql.EQ("collection", collection)}
	for _, c := range filter {
		alts := make([]*entsql.Predicate, 0, len(c.Fields))
		for _, f := range c.Fields {
			alts = append(alts, condPredicate(f, c.Values))
		}
		preds = append(preds, entsql.Or(alts...))
	}
	return entsql.Dialect(dialect.SQLite).
		Select("body").
		From(entsql.Table(documentsTable)).
		Where(entsql.And(preds...)).
		OrderBy("rowid").
		Query()
}

func condPredicate(field string, values []string) *entsql.Predicate {
	path := "$." + field
	if len(values) == 1 {
		return entsql.ExprP("json_extract(body, ?) = ?", path, values[0])
	}
	args := make([]any, 0, len(values)+1)
	args = append(args, path)
	marks := make([]string, len(values))
	for i, v := range values {
		marks[i] = "?"
		args = append(args, v)
	}
	return entsql.ExprP("json_extract(body, ?) IN ("+strings.Join(marks, ", ")+")", args...)
}

func (s *SQLiteStore) Insert(ctx context.Context, collection string, docs ...any) error {
	if len(docs) == 0 {
		return nil
	}
	ins := entsql.Dialect(dialect.SQLite).
		Insert(documentsTable).
		Columns("collection", "id", "body")
	for _, d := range docs {
		raw, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("encoding %s document: %w", collection, err)
		}
		var head struct {
			ID string `json:"_id"`
		}
		if err := json.Unmarshal(raw, &head); err != nil || head.ID == "" {
			return fmt.Errorf("docstore: %s document without _id", collection)
		}
		ins.Values(collection, head.ID, string(raw))
	}
	ins.OnConflict(
		entsql.ConflictColumns("collection", "id"),
		entsql.ResolveWithNewValues(),
	)

	query, args := ins.Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting %s documents: %w", collection, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
