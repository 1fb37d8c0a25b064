package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"demoreel/internal/docs"
)

func init() {
	sqlite_vec.Auto()
}

// validCollection guards collection names before they are interpolated into
// table names. CollectionID output always satisfies it.
var validCollection = regexp.MustCompile(`^[a-z0-9_]+$`)

// SQLite is a local vector store backed by SQLite + sqlite-vec. Each
// collection gets its own document table and vec0 virtual table, created
// lazily once the embedding dimension is known.
type SQLite struct {
	db       *sql.DB
	embedder Embedder
}

// OpenSQLite creates or opens the database at dbPath.
func OpenSQLite(dbPath string, emb Embedder) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return &SQLite{db: db, embedder: emb}, nil
}

func (s *SQLite) Ensure(ctx context.Context, collection string) error {
	if !validCollection.MatchString(collection) {
		return fmt.Errorf("invalid collection name %q", collection)
	}
	return s.db.PingContext(ctx)
}

func (s *SQLite) Upsert(ctx context.Context, collection string, documents []docs.Document) error {
	if len(documents) == 0 {
		return nil
	}
	if !validCollection.MatchString(collection) {
		return fmt.Errorf("invalid collection name %q", collection)
	}

	texts := make([]string, len(documents))
	for i, d := range documents {
		texts[i] = d.Content
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return fmt.Errorf("embedder returned no vectors")
	}
	if err := s.ensureTables(ctx, collection, len(vectors[0])); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	docTable, vecTable := tableNames(collection)
	for i, d := range documents {
		// Replace any prior version of this id, vector included.
		var oldRowID int64
		err := tx.QueryRowContext(ctx,
			fmt.Sprintf("SELECT rowid FROM %s WHERE id = ?", docTable), d.ID).Scan(&oldRowID)
		switch {
		case err == nil:
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf("DELETE FROM %s WHERE doc_rowid = ?", vecTable), oldRowID); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf("DELETE FROM %s WHERE rowid = ?", docTable), oldRowID); err != nil {
				return err
			}
		case err != sql.ErrNoRows:
			return err
		}

		res, err := tx.ExecContext(ctx, fmt.Sprintf(
			"INSERT INTO %s (id, content, type, source, category, path, language) VALUES (?, ?, ?, ?, ?, ?, ?)",
			docTable),
			d.ID, d.Content, d.Metadata.Type, d.Metadata.Source,
			d.Metadata.Category, d.Metadata.Path, d.Metadata.Language)
		if err != nil {
			return fmt.Errorf("insert document %s: %w", d.ID, err)
		}
		rowID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		blob, err := sqlite_vec.SerializeFloat32(vectors[i])
		if err != nil {
			return fmt.Errorf("serialize embedding for %s: %w", d.ID, err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(
			"INSERT INTO %s (doc_rowid, embedding) VALUES (?, ?)", vecTable), rowID, blob); err != nil {
			return fmt.Errorf("insert embedding for %s: %w", d.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) Query(ctx context.Context, collection, text string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 5
	}
	if !validCollection.MatchString(collection) {
		return nil, fmt.Errorf("invalid collection name %q", collection)
	}

	vector, err := s.embedder.EmbedSingle(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	blob, err := sqlite_vec.SerializeFloat32(vector)
	if err != nil {
		return nil, fmt.Errorf("serialize query embedding: %w", err)
	}

	docTable, vecTable := tableNames(collection)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT d.id, d.content, d.type, d.source, d.category, d.path, d.language, v.distance
		FROM %s v
		JOIN %s d ON d.rowid = v.doc_rowid
		WHERE v.embedding MATCH ?
		ORDER BY v.distance
		LIMIT ?
	`, vecTable, docTable), blob, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.Content, &r.Metadata.Type, &r.Metadata.Source,
			&r.Metadata.Category, &r.Metadata.Path, &r.Metadata.Language, &r.Distance); err != nil {
			return nil, err
		}
		r.Relevance = 1 - r.Distance
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) ensureTables(ctx context.Context, collection string, dimension int) error {
	docTable, vecTable := tableNames(collection)
	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    id       TEXT NOT NULL UNIQUE,
    content  TEXT NOT NULL,
    type     TEXT NOT NULL DEFAULT '',
    source   TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    path     TEXT NOT NULL DEFAULT '',
    language TEXT NOT NULL DEFAULT ''
);
CREATE VIRTUAL TABLE IF NOT EXISTS %s USING vec0(
    doc_rowid INTEGER PRIMARY KEY,
    embedding float[%d] distance_metric=cosine
);
`, docTable, vecTable, dimension)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create collection tables: %w", err)
	}
	return nil
}

func tableNames(collection string) (docTable, vecTable string) {
	return "docs_" + collection, "vec_" + collection
}
