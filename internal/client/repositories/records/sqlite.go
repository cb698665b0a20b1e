// Package records keeps small opaque payloads, such as the sealed session,
// under fixed namespaces in the local SQLite store.
package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tuniguard/internal/dbx"
)

type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Get(ctx context.Context, namespace string) ([]byte, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM records WHERE namespace = ?`, namespace).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record[%s]: %w", namespace, err)
	}
	return payload, nil
}

// Put inserts or replaces the payload; the last writer wins.
func (r *SQLiteRepository) Put(ctx context.Context, namespace string, payload []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO records (namespace, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(namespace) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, namespace, payload, dbx.FormatTime(r.now()))
	if err != nil {
		return fmt.Errorf("failed to put record[%s]: %w", namespace, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, namespace string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE namespace = ?`, namespace)
	if err != nil {
		return fmt.Errorf("failed to delete record[%s]: %w", namespace, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) (map[string][]byte, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT namespace, payload FROM records`)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]byte)
	for rows.Next() {
		var ns string
		var payload []byte
		if err := rows.Scan(&ns, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		result[ns] = payload
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate record rows: %w", err)
	}
	return result, nil
}
