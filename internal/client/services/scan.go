package services

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"github.com/dmitrijs2005/tuniguard/internal/client/client"
	"github.com/dmitrijs2005/tuniguard/internal/client/models"
	"github.com/dmitrijs2005/tuniguard/internal/client/repositories/scans"
	"github.com/dmitrijs2005/tuniguard/internal/common"
	"github.com/dmitrijs2005/tuniguard/internal/logging"
	"github.com/dmitrijs2005/tuniguard/internal/validatex"
)

// ScanService submits messages for analysis and keeps the local history.
type ScanService interface {
	Scan(ctx context.Context, content string, contentType models.ContentType) (*models.ScanResult, error)
	Detail(ctx context.Context, scanID string) (*models.ScanDetail, error)
	History(ctx context.Context, limit int) ([]models.ScanResult, error)
	// LastScanID returns the id of the current user's latest scan, or "".
	LastScanID() models.ID
}

type scanService struct {
	auth   Authenticator
	client client.Client
	repo   scans.Repository
	log    logging.Logger

	mu       sync.Mutex
	lastUser string
	lastScan models.ID
}

// NewScanService constructs a ScanService storing history in db.
func NewScanService(auth Authenticator, c client.Client, db *sql.DB, log logging.Logger) ScanService {
	return &scanService{
		auth:   auth,
		client: c,
		repo:   scans.NewSQLiteRepository(db),
		log:    log.With("service", "scan"),
	}
}

// Scan validates and submits content. A successful result becomes the
// current scan id and is saved to the history; a history write failure is
// logged and does not hide the result.
func (s *scanService) Scan(ctx context.Context, content string, contentType models.ContentType) (*models.ScanResult, error) {
	cur := s.auth.Current()
	if err := requireAuthenticated(cur); err != nil {
		return nil, err
	}

	req := models.ScanRequest{
		UserID:       models.ID(cur.UserID),
		Content:      strings.TrimSpace(content),
		ContentType:  contentType,
		LocationHint: common.LocationHint,
	}
	if err := validatex.Validate(req); err != nil {
		return nil, err
	}

	token, err := s.auth.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.client.Scan(ctx, token, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lastUser, s.lastScan = cur.UserID, res.ScanID
	s.mu.Unlock()

	if !res.ScanID.IsZero() {
		if err := s.repo.Save(ctx, cur.UserID, *res); err != nil {
			s.log.Error(ctx, "failed to save scan history", "scan_id", res.ScanID.String(), "error", err)
		}
	}
	return res, nil
}

func (s *scanService) Detail(ctx context.Context, scanID string) (*models.ScanDetail, error) {
	cur := s.auth.Current()
	if err := requireAuthenticated(cur); err != nil {
		return nil, err
	}
	scanID = strings.TrimSpace(scanID)
	if scanID == "" {
		return nil, &validatex.ValidationError{Field: "scan_id", Tag: "required", Message: "Please enter a scan id"}
	}

	token, err := s.auth.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.GetScan(ctx, token, scanID)
}

func (s *scanService) History(ctx context.Context, limit int) ([]models.ScanResult, error) {
	cur := s.auth.Current()
	if err := requireAuthenticated(cur); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, cur.UserID, limit)
}

func (s *scanService) LastScanID() models.ID {
	cur := s.auth.Current()
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur == nil || cur.UserID != s.lastUser {
		return ""
	}
	return s.lastScan
}
