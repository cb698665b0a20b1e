package transcripts

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tuniguard/internal/client/models"
	"github.com/dmitrijs2005/tuniguard/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Append(ctx context.Context, userID string, e models.TranscriptEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transcript_entries (entry_id, user_id, text, sender, failed, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, userID, e.Text, string(e.Sender), e.Failed, dbx.FormatTime(e.Timestamp))
	if err != nil {
		return fmt.Errorf("failed to append transcript entry[%s]: %w", e.ID, err)
	}
	return nil
}

// List returns the user's entries in the order they were appended.
func (r *SQLiteRepository) List(ctx context.Context, userID string) ([]models.TranscriptEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT entry_id, text, sender, failed, created_at
		FROM transcript_entries
		WHERE user_id = ?
		ORDER BY seq
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcript[%s]: %w", userID, err)
	}
	defer rows.Close()

	var out []models.TranscriptEntry
	for rows.Next() {
		var (
			e       models.TranscriptEntry
			sender  string
			created string
		)
		if err := rows.Scan(&e.ID, &e.Text, &sender, &e.Failed, &created); err != nil {
			return nil, fmt.Errorf("failed to scan transcript row: %w", err)
		}
		e.Sender = models.Role(sender)
		if e.Timestamp, err = dbx.ParseTime(created); err != nil {
			return nil, fmt.Errorf("failed to parse transcript timestamp %q: %w", created, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transcript rows: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM transcript_entries WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear transcript[%s]: %w", userID, err)
	}
	return nil
}
