package sqlite

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"slices"
	"time"

	"github.com/fwojciec/ragdoc"
	"github.com/ncruces/go-sqlite3"
)

// Compile-time interface verification.
var _ ragdoc.IndexService = (*IndexService)(nil)

// IndexService implements ragdoc.IndexService on SQLite. Queries scan every
// vector in the namespace, which suits corpora of a few hundred thousand
// chunks at most.
type IndexService struct {
	db *DB
}

// NewIndexService creates a new IndexService.
func NewIndexService(db *DB) *IndexService {
	return &IndexService{db: db}
}

// IndexExists reports whether the named index exists.
func (s *IndexService) IndexExists(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM indexes WHERE name = ?`, name).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DescribeIndex returns the spec of the named index.
func (s *IndexService) DescribeIndex(ctx context.Context, name string) (*ragdoc.IndexSpec, error) {
	var spec ragdoc.IndexSpec
	var metric string
	err := s.db.QueryRowContext(ctx, `
		SELECT name, dimension, metric, cloud, region
		FROM indexes
		WHERE name = ?
	`, name).Scan(&spec.Name, &spec.Dimension, &metric, &spec.Cloud, &spec.Region)
	if err == sql.ErrNoRows {
		return nil, ragdoc.Errorf(ragdoc.ENOTFOUND, "index %q not found", name)
	}
	if err != nil {
		return nil, err
	}
	spec.Metric = ragdoc.Metric(metric)
	return &spec, nil
}

// CreateIndex creates a new index.
func (s *IndexService) CreateIndex(ctx context.Context, spec ragdoc.IndexSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO indexes (name, dimension, metric, cloud, region, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, spec.Name, spec.Dimension, string(spec.Metric), spec.Cloud, spec.Region,
		time.Now().UTC().Format(time.RFC3339))

	if isConstraintError(err) {
		return ragdoc.Errorf(ragdoc.ECONFLICT, "index %q already exists", spec.Name)
	}
	return err
}

// Upsert inserts entries or replaces those with an existing ID, in one
// transaction.
func (s *IndexService) Upsert(ctx context.Context, index, namespace string, entries []ragdoc.IndexEntry) error {
	spec, err := s.DescribeIndex(ctx, index)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.ID == "" {
			return ragdoc.Errorf(ragdoc.EINVALID, "entry ID required")
		}
		if len(e.Values) != spec.Dimension {
			return ragdoc.Errorf(ragdoc.EDIMENSION, "entry %s has dimension %d, index %s expects %d",
				e.ID, len(e.Values), index, spec.Dimension)
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (index_name, namespace, id, vector, source, chunk_index, text, content_hash, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (index_name, namespace, id) DO UPDATE SET
			vector = excluded.vector,
			source = excluded.source,
			chunk_index = excluded.chunk_index,
			text = excluded.text,
			content_hash = excluded.content_hash,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, index, namespace, e.ID, encodeVector(e.Values),
			e.Metadata.Source, e.Metadata.ChunkIndex, e.Metadata.Text, e.Metadata.ContentHash, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Query returns the topK entries most similar to vector under the index
// metric. Entries with equal scores keep insertion order.
func (s *IndexService) Query(ctx context.Context, index, namespace string, vector []float32, topK int) ([]ragdoc.Match, error) {
	spec, err := s.DescribeIndex(ctx, index)
	if err != nil {
		return nil, err
	}
	if len(vector) != spec.Dimension {
		return nil, ragdoc.Errorf(ragdoc.EDIMENSION, "query has dimension %d, index %s expects %d",
			len(vector), index, spec.Dimension)
	}
	if topK <= 0 {
		return nil, ragdoc.Errorf(ragdoc.EINVALID, "topK must be positive, got %d", topK)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, vector, source, chunk_index, text, content_hash
		FROM entries
		WHERE index_name = ? AND namespace = ?
		ORDER BY rowid
	`, index, namespace)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []ragdoc.Match
	for rows.Next() {
		var m ragdoc.Match
		var blob []byte
		if err := rows.Scan(&m.ID, &blob, &m.Metadata.Source, &m.Metadata.ChunkIndex,
			&m.Metadata.Text, &m.Metadata.ContentHash); err != nil {
			return nil, err
		}
		values, err := decodeVector(blob)
		if err != nil {
			return nil, ragdoc.Errorf(ragdoc.EINTERNAL, "entry %s: %v", m.ID, err)
		}
		m.Score = similarity(spec.Metric, vector, values)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(matches, func(a, b ragdoc.Match) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// CountEntries returns the number of entries in a namespace.
func (s *IndexService) CountEntries(ctx context.Context, index, namespace string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM entries WHERE index_name = ? AND namespace = ?
	`, index, namespace).Scan(&n)
	return n, err
}

func isConstraintError(err error) bool {
	var serr *sqlite3.Error
	return errors.As(err, &serr) && serr.Code() == sqlite3.CONSTRAINT
}
