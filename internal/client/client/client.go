package client

import (
	"context"

	"github.com/dmitrijs2005/tuniguard/internal/client/models"
)

// Client is the TuniGuard HTTP API. Authenticated calls take the bearer
// token explicitly; the client itself holds no session.
type Client interface {
	Login(ctx context.Context, c models.Credentials) (*models.LoginResult, error)
	Register(ctx context.Context, r models.Registration) (*models.RegistrationResult, error)
	Logout(ctx context.Context, accessToken string) error
	Refresh(ctx context.Context, refreshToken string) (string, error)
	UpdatePassword(ctx context.Context, accessToken, userID, oldPassword, newPassword string) error
	DeleteAccount(ctx context.Context, accessToken, userID, password string) error
	Scan(ctx context.Context, accessToken string, req models.ScanRequest) (*models.ScanResult, error)
	GetScan(ctx context.Context, accessToken, scanID string) (*models.ScanDetail, error)
	Chat(ctx context.Context, accessToken string, req models.ChatRequest) (*models.ChatReply, error)
	Threats(ctx context.Context, filter models.ThreatFilter) (*models.ThreatList, error)
	NationalAnalytics(ctx context.Context, days int) (*models.NationalStats, error)
	Ping(ctx context.Context) error
}
