package transcripts

import (
	"context"

	"github.com/dmitrijs2005/tuniguard/internal/client/models"
)

// Repository is the per-user, append-only chat transcript.
type Repository interface {
	Append(ctx context.Context, userID string, e models.TranscriptEntry) error
	List(ctx context.Context, userID string) ([]models.TranscriptEntry, error)
	Clear(ctx context.Context, userID string) error
}
