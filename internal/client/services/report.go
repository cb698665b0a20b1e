package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tuniguard/internal/client/export"
	"github.com/dmitrijs2005/tuniguard/internal/client/models"
	"github.com/dmitrijs2005/tuniguard/internal/client/repositories/scans"
	"github.com/dmitrijs2005/tuniguard/internal/client/repositories/transcripts"
	"github.com/dmitrijs2005/tuniguard/internal/logging"
)

// ReportService exports the current user's transcript and scan history.
type ReportService interface {
	// Export writes the report and returns its location.
	Export(ctx context.Context) (string, error)
}

type reportService struct {
	auth        Authenticator
	transcripts transcripts.Repository
	scans       scans.Repository
	exporter    export.Exporter
	log         logging.Logger
	now         func() time.Time
}

func NewReportService(auth Authenticator, db *sql.DB, exporter export.Exporter, log logging.Logger) ReportService {
	return &reportService{
		auth:        auth,
		transcripts: transcripts.NewSQLiteRepository(db),
		scans:       scans.NewSQLiteRepository(db),
		exporter:    exporter,
		log:         log.With("service", "report"),
		now:         time.Now,
	}
}

func (r *reportService) Export(ctx context.Context) (string, error) {
	cur := r.auth.Current()
	if err := requireAuthenticated(cur); err != nil {
		return "", err
	}

	entries, err := r.transcripts.List(ctx, cur.UserID)
	if err != nil {
		return "", err
	}
	history, err := r.scans.List(ctx, cur.UserID, 0)
	if err != nil {
		return "", err
	}

	now := r.now().UTC()
	report := models.Report{
		GeneratedAt: now,
		User: models.ReportUser{
			UserID:       cur.UserID,
			Username:     cur.Username,
			AnonymizedID: cur.AnonymizedID,
		},
		Transcript: entries,
		Scans:      history,
	}
	if report.Transcript == nil {
		report.Transcript = []models.TranscriptEntry{}
	}
	if report.Scans == nil {
		report.Scans = []models.ScanResult{}
	}

	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	owner := cur.AnonymizedID
	if owner == "" {
		owner = cur.UserID
	}
	loc, err := r.exporter.Export(ctx, export.ReportKey(now, owner), body)
	if err != nil {
		return "", err
	}
	r.log.Info(ctx, "report exported", "location", loc, "entries", len(entries), "scans", len(history))
	return loc, nil
}
