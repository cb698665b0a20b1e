// Package scans keeps the results of a user's scans so they can be listed
// and exported without another round-trip.
package scans

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tuniguard/internal/client/models"
	"github.com/dmitrijs2005/tuniguard/internal/common"
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

// Save stores r, replacing an earlier copy with the same scan id. A result
// without a server timestamp is dated at save time.
func (r *SQLiteRepository) Save(ctx context.Context, userID string, res models.ScanResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode scan[%s]: %w", res.ScanID, err)
	}

	now := r.now()
	scannedAt := res.Timestamp.Time
	if scannedAt.IsZero() {
		scannedAt = now
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO scans (user_id, scan_id, payload, scanned_at, saved_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, scan_id) DO UPDATE SET
			payload = excluded.payload,
			scanned_at = excluded.scanned_at,
			saved_at = excluded.saved_at
	`, userID, res.ScanID.String(), string(payload), dbx.FormatTime(scannedAt), dbx.FormatTime(now))
	if err != nil {
		return fmt.Errorf("failed to save scan[%s]: %w", res.ScanID, err)
	}
	return nil
}

// List returns the newest results first. limit <= 0 means no limit.
func (r *SQLiteRepository) List(ctx context.Context, userID string, limit int) ([]models.ScanResult, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT payload FROM scans
		WHERE user_id = ?
		ORDER BY scanned_at DESC, saved_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans[%s]: %w", userID, err)
	}
	defer rows.Close()

	var out []models.ScanResult
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan scans row: %w", err)
		}
		var res models.ScanResult
		if err := json.Unmarshal([]byte(payload), &res); err != nil {
			return nil, fmt.Errorf("failed to decode scan payload: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scans rows: %w", err)
	}
	return out, nil
}

// Get returns common.ErrorNotFound when the user has no such scan.
func (r *SQLiteRepository) Get(ctx context.Context, userID, scanID string) (*models.ScanResult, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM scans WHERE user_id = ? AND scan_id = ?`, userID, scanID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan[%s]: %w", scanID, err)
	}

	var res models.ScanResult
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return nil, fmt.Errorf("failed to decode scan payload: %w", err)
	}
	return &res, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM scans WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear scans[%s]: %w", userID, err)
	}
	return nil
}
