package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/tuniguard/internal/client/client"
	"github.com/dmitrijs2005/tuniguard/internal/client/models"
	"github.com/dmitrijs2005/tuniguard/internal/cryptox"
	"github.com/dmitrijs2005/tuniguard/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "tuniguard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testSealer(t *testing.T) cryptox.Sealer {
	t.Helper()
	s, err := cryptox.NewGCMSealer(make([]byte, 32))
	require.NoError(t, err)
	return s
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return tok
}

type env struct {
	db     *sql.DB
	fc     *fakeClient
	sealer cryptox.Sealer
	sess   *sessionService
	scans  ScanService
	chat   *chatService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := setupDB(t)
	fc := newFakeClient()
	sealer := testSealer(t)
	log := logging.NewDiscard()

	sess := NewSessionService(fc, db, sealer, log).(*sessionService)
	scans := NewScanService(sess, fc, db, log)
	chat := NewChatService(sess, fc, scans, db, false, log).(*chatService)
	return &env{db: db, fc: fc, sealer: sealer, sess: sess, scans: scans, chat: chat}
}

// login establishes an authenticated session for user 42.
func (e *env) login(t *testing.T) *models.Session {
	t.Helper()
	s, err := e.sess.Establish(context.Background(), models.Credentials{Username: "amira", Password: "secret1"})
	require.NoError(t, err)
	e.fc.reset()
	return s
}

// ---- fake client ----

// fakeClient implements client.Client and counts calls per operation.
type fakeClient struct {
	mu     sync.Mutex
	calls  map[client.Op]int
	order  []client.Op
	tokens []string

	LoginRes    *models.LoginResult
	LoginErr    error
	RegisterRes *models.RegistrationResult
	RegisterErr error
	LogoutErr   error
	LogoutBlock bool
	RefreshRet  string
	RefreshErr  error
	UpdateErr   error
	DeleteErr   error
	ScanRes     *models.ScanResult
	ScanErr     error
	DetailRes   *models.ScanDetail
	DetailErr   error
	ChatRes     *models.ChatReply
	ChatErr     error
	ChatHook    func()
	ThreatsRes  *models.ThreatList
	ThreatsErr  error
	NationalRes *models.NationalStats
	NationalErr error
	PingErr     error

	LastRegister models.Registration
	LastUpdate   [3]string
	LastDelete   [2]string
	LastScan     models.ScanRequest
	LastChat     models.ChatRequest
	LastFilter   models.ThreatFilter
	LastDays     int
}

var _ client.Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{
		calls: map[client.Op]int{},
		LoginRes: &models.LoginResult{
			UserID:       "42",
			Username:     "amira",
			AnonymizedID: "anon-42",
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
		},
		RefreshRet: "access-2",
		ScanRes: &models.ScanResult{
			ScanID:         "scan-7",
			ThreatDetected: true,
			DetectionScore: 87,
			Severity:       models.SeverityHigh,
		},
		ChatRes: &models.ChatReply{Response: "Do not click the link."},
	}
}

func (f *fakeClient) record(op client.Op, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	f.order = append(f.order, op)
	f.tokens = append(f.tokens, token)
}

func (f *fakeClient) count(op client.Op) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeClient) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.order)
}

func (f *fakeClient) lastToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tokens) == 0 {
		return ""
	}
	return f.tokens[len(f.tokens)-1]
}

func (f *fakeClient) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = map[client.Op]int{}
	f.order = nil
	f.tokens = nil
}

func (f *fakeClient) Login(ctx context.Context, cr models.Credentials) (*models.LoginResult, error) {
	f.record(client.OpLogin, "")
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	res := *f.LoginRes
	return &res, nil
}

func (f *fakeClient) Register(ctx context.Context, r models.Registration) (*models.RegistrationResult, error) {
	f.record(client.OpRegister, "")
	f.LastRegister = r
	if f.RegisterErr != nil {
		return nil, f.RegisterErr
	}
	if f.RegisterRes != nil {
		return f.RegisterRes, nil
	}
	return &models.RegistrationResult{UserID: "43", Username: r.Username, Region: r.Region, City: r.City, Carrier: r.Carrier}, nil
}

func (f *fakeClient) Logout(ctx context.Context, accessToken string) error {
	f.record(client.OpLogout, accessToken)
	if f.LogoutBlock {
		<-ctx.Done()
		return &client.TransportError{Op: client.OpLogout, Err: ctx.Err()}
	}
	return f.LogoutErr
}

func (f *fakeClient) Refresh(ctx context.Context, refreshToken string) (string, error) {
	f.record(client.OpRefresh, refreshToken)
	return f.RefreshRet, f.RefreshErr
}

func (f *fakeClient) UpdatePassword(ctx context.Context, accessToken, userID, oldPassword, newPassword string) error {
	f.record(client.OpProfile, accessToken)
	f.LastUpdate = [3]string{userID, oldPassword, newPassword}
	return f.UpdateErr
}

func (f *fakeClient) DeleteAccount(ctx context.Context, accessToken, userID, password string) error {
	f.record(client.OpDelete, accessToken)
	f.LastDelete = [2]string{userID, password}
	return f.DeleteErr
}

func (f *fakeClient) Scan(ctx context.Context, accessToken string, req models.ScanRequest) (*models.ScanResult, error) {
	f.record(client.OpScan, accessToken)
	f.LastScan = req
	if f.ScanErr != nil {
		return nil, f.ScanErr
	}
	res := *f.ScanRes
	return &res, nil
}

func (f *fakeClient) GetScan(ctx context.Context, accessToken, scanID string) (*models.ScanDetail, error) {
	f.record(client.OpScanDetail, accessToken)
	if f.DetailErr != nil {
		return nil, f.DetailErr
	}
	if f.DetailRes != nil {
		return f.DetailRes, nil
	}
	return &models.ScanDetail{ScanID: models.ID(scanID)}, nil
}

func (f *fakeClient) Chat(ctx context.Context, accessToken string, req models.ChatRequest) (*models.ChatReply, error) {
	f.record(client.OpChat, accessToken)
	f.mu.Lock()
	f.LastChat = req
	f.mu.Unlock()
	if f.ChatHook != nil {
		f.ChatHook()
	}
	if f.ChatErr != nil {
		return nil, f.ChatErr
	}
	res := *f.ChatRes
	return &res, nil
}

func (f *fakeClient) Threats(ctx context.Context, filter models.ThreatFilter) (*models.ThreatList, error) {
	f.record(client.OpThreats, "")
	f.LastFilter = filter
	if f.ThreatsErr != nil {
		return nil, f.ThreatsErr
	}
	if f.ThreatsRes != nil {
		return f.ThreatsRes, nil
	}
	return &models.ThreatList{}, nil
}

func (f *fakeClient) NationalAnalytics(ctx context.Context, days int) (*models.NationalStats, error) {
	f.record(client.OpAnalytics, "")
	f.mu.Lock()
	f.LastDays = days
	f.mu.Unlock()
	if f.NationalErr != nil {
		return nil, f.NationalErr
	}
	if f.NationalRes != nil {
		return f.NationalRes, nil
	}
	return &models.NationalStats{PeriodDays: days}, nil
}

func (f *fakeClient) Ping(ctx context.Context) error {
	f.record(client.OpHealth, "")
	return f.PingErr
}
