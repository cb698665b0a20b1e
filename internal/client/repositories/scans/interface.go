package scans

import (
	"context"

	"github.com/dmitrijs2005/tuniguard/internal/client/models"
)

// Repository is the local history of scan results per user.
type Repository interface {
	Save(ctx context.Context, userID string, r models.ScanResult) error
	List(ctx context.Context, userID string, limit int) ([]models.ScanResult, error)
	Get(ctx context.Context, userID, scanID string) (*models.ScanResult, error)
	Clear(ctx context.Context, userID string) error
}
