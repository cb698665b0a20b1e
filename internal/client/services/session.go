// Package services contains application services for the TuniGuard client.
// This file defines the session manager: login, registration, guest mode,
// teardown, password change, account deletion and the access token
// lifecycle.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/tuniguard/internal/client/client"
	"github.com/dmitrijs2005/tuniguard/internal/client/models"
	"github.com/dmitrijs2005/tuniguard/internal/client/repositories/records"
	"github.com/dmitrijs2005/tuniguard/internal/client/repositories/scans"
	"github.com/dmitrijs2005/tuniguard/internal/client/repositories/transcripts"
	"github.com/dmitrijs2005/tuniguard/internal/common"
	"github.com/dmitrijs2005/tuniguard/internal/cryptox"
	"github.com/dmitrijs2005/tuniguard/internal/dbx"
	"github.com/dmitrijs2005/tuniguard/internal/logging"
	"github.com/dmitrijs2005/tuniguard/internal/validatex"
)

const (
	defaultLogoutTimeout = 5 * time.Second
	defaultRefreshWindow = 30 * time.Second
)

// SessionService manages the single local session.
//
// Contract:
//   - Restore: load the persisted session; ErrNoSession when there is none
//     or it cannot be read.
//   - Establish: validate credentials, log in and persist the session.
//   - Register: validate the form and create the account; no session is created.
//   - EstablishGuest: start a local-only guest session.
//   - Teardown: best-effort server logout, then clear local state unconditionally.
//   - ChangePassword / DeleteAccount: authenticated profile operations.
//   - AccessToken / RefreshTokens: bearer for outbound calls, refreshed when
//     it is about to expire.
type SessionService interface {
	Restore(ctx context.Context) (*models.Session, error)
	Establish(ctx context.Context, cr models.Credentials) (*models.Session, error)
	Register(ctx context.Context, r models.Registration) (*models.RegistrationResult, error)
	EstablishGuest(ctx context.Context) (*models.Session, error)
	Teardown(ctx context.Context) error
	ChangePassword(ctx context.Context, oldPassword, newPassword, confirm string) error
	DeleteAccount(ctx context.Context, confirmer Confirmer) error
	RefreshTokens(ctx context.Context) error
	Authenticator
}

// Authenticator is the part of the session manager other services depend on.
type Authenticator interface {
	Current() *models.Session
	AccessToken(ctx context.Context) (string, error)
}

// Confirmer collects the two confirmations account deletion requires.
type Confirmer interface {
	// ConfirmPassword returns the re-entered password; empty cancels.
	ConfirmPassword(ctx context.Context) (string, error)
	// ConfirmDeletion returns the explicit yes/no answer.
	ConfirmDeletion(ctx context.Context) (bool, error)
}

// sessionStore persists the session as one sealed record.
type sessionStore struct {
	repo   records.Repository
	sealer cryptox.Sealer
}

func (st *sessionStore) load(ctx context.Context) (*models.Session, error) {
	blob, err := st.repo.Get(ctx, common.SessionNamespace)
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, nil
	}
	var s models.Session
	if err := st.sealer.Open(blob, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (st *sessionStore) save(ctx context.Context, s *models.Session) error {
	blob, err := st.sealer.Seal(s)
	if err != nil {
		return fmt.Errorf("failed to seal session: %w", err)
	}
	return st.repo.Put(ctx, common.SessionNamespace, blob)
}

func (st *sessionStore) clear(ctx context.Context) error {
	return st.repo.Delete(ctx, common.SessionNamespace)
}

type sessionService struct {
	client client.Client
	db     *sql.DB
	store  *sessionStore
	log    logging.Logger

	logoutTimeout time.Duration
	refreshWindow time.Duration
	now           func() time.Time

	mu        sync.Mutex
	current   *models.Session
	refreshMu sync.Mutex
}

// NewSessionService constructs a SessionService bound to the API client and
// the local database. The session record is sealed with sealer.
func NewSessionService(c client.Client, db *sql.DB, sealer cryptox.Sealer, log logging.Logger) SessionService {
	return &sessionService{
		client:        c,
		db:            db,
		store:         &sessionStore{repo: records.NewSQLiteRepository(db), sealer: sealer},
		log:           log.With("service", "session"),
		logoutTimeout: defaultLogoutTimeout,
		refreshWindow: defaultRefreshWindow,
		now:           time.Now,
	}
}

// Current returns a copy of the active session, or nil.
func (s *sessionService) Current() *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	c := *s.current
	return &c
}

func (s *sessionService) set(sess *models.Session) {
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
}

// Restore reads the persisted session. A record that cannot be opened or
// is malformed is logged and treated as absent.
func (s *sessionService) Restore(ctx context.Context) (*models.Session, error) {
	sess, err := s.store.load(ctx)
	if err != nil {
		s.log.Warn(ctx, "discarding unreadable session", "error", err)
		return nil, ErrNoSession
	}
	if sess == nil {
		return nil, ErrNoSession
	}
	if err := sess.Validate(); err != nil {
		s.log.Warn(ctx, "discarding malformed session", "error", err)
		return nil, ErrNoSession
	}
	s.set(sess)
	return s.Current(), nil
}

// Establish logs in with cr and persists the resulting session. On any
// failure the previous state is left untouched.
func (s *sessionService) Establish(ctx context.Context, cr models.Credentials) (*models.Session, error) {
	cr.Username = strings.TrimSpace(cr.Username)
	if err := validatex.Validate(cr); err != nil {
		return nil, err
	}

	res, err := s.client.Login(ctx, cr)
	if err != nil {
		return nil, err
	}

	sess := &models.Session{
		UserID:       res.UserID.String(),
		Username:     res.Username,
		AnonymizedID: res.AnonymizedID,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		LoginTime:    s.now().UTC(),
	}
	if sess.Username == "" {
		sess.Username = cr.Username
	}
	if err := sess.Validate(); err != nil {
		return nil, fmt.Errorf("login response: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.save(ctx, sess); err != nil {
		return nil, err
	}
	s.current = sess
	c := *sess
	return &c, nil
}

// Register validates r and creates the account on the server.
func (s *sessionService) Register(ctx context.Context, r models.Registration) (*models.RegistrationResult, error) {
	r.Username = strings.TrimSpace(r.Username)
	r.City = strings.TrimSpace(r.City)
	if r.City == "" {
		r.City = models.DefaultCity
	}
	if err := validatex.Validate(r); err != nil {
		return nil, err
	}
	return s.client.Register(ctx, r)
}

// EstablishGuest starts and persists a local-only guest session.
func (s *sessionService) EstablishGuest(ctx context.Context) (*models.Session, error) {
	sess := models.NewGuestSession(s.now())

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.save(ctx, sess); err != nil {
		return nil, err
	}
	s.current = sess
	c := *sess
	return &c, nil
}

// Teardown ends the session. The server logout is best effort and bounded
// by its own timeout; local state is cleared whatever its outcome, and only
// a local clear failure is returned.
func (s *sessionService) Teardown(ctx context.Context) error {
	cur := s.Current()
	if cur.Kind() == models.SessionAuthenticated {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.logoutTimeout)
		if err := s.client.Logout(lctx, cur.AccessToken); err != nil {
			s.log.Warn(ctx, "logout call failed", "error", err)
		}
		cancel()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	if err := s.store.clear(context.WithoutCancel(ctx)); err != nil {
		s.log.Error(ctx, "failed to clear session", "error", err)
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// ChangePassword validates the form and updates the password. Stored tokens
// are kept.
func (s *sessionService) ChangePassword(ctx context.Context, oldPassword, newPassword, confirm string) error {
	cur := s.Current()
	if err := requireAuthenticated(cur); err != nil {
		return err
	}

	pc := models.PasswordChange{OldPassword: oldPassword, NewPassword: newPassword, Confirm: confirm}
	if err := validatex.Validate(pc); err != nil {
		return err
	}

	token, err := s.AccessToken(ctx)
	if err != nil {
		return err
	}
	return s.client.UpdatePassword(ctx, token, cur.UserID, pc.OldPassword, pc.NewPassword)
}

// DeleteAccount asks for the password and an explicit confirmation, in that
// order, then deletes the account. On success the user's local transcript
// and scan history are purged and the session is torn down.
func (s *sessionService) DeleteAccount(ctx context.Context, confirmer Confirmer) error {
	cur := s.Current()
	if err := requireAuthenticated(cur); err != nil {
		return err
	}

	password, err := confirmer.ConfirmPassword(ctx)
	if err != nil {
		return err
	}
	if password == "" {
		return ErrCancelled
	}
	ok, err := confirmer.ConfirmDeletion(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCancelled
	}

	token, err := s.AccessToken(ctx)
	if err != nil {
		return err
	}
	if err := s.client.DeleteAccount(ctx, token, cur.UserID, password); err != nil {
		return err
	}

	purgeErr := dbx.WithTx(context.WithoutCancel(ctx), s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := transcripts.NewSQLiteRepository(tx).Clear(ctx, cur.UserID); err != nil {
			return err
		}
		return scans.NewSQLiteRepository(tx).Clear(ctx, cur.UserID)
	})
	if purgeErr != nil {
		s.log.Error(ctx, "failed to purge local data", "user_id", cur.UserID, "error", purgeErr)
	}

	return errors.Join(purgeErr, s.Teardown(ctx))
}

// AccessToken returns the bearer of the authenticated session, refreshing
// it first when it expires within the refresh window.
func (s *sessionService) AccessToken(ctx context.Context) (string, error) {
	cur := s.Current()
	if err := requireAuthenticated(cur); err != nil {
		return "", err
	}
	if !client.ExpiresWithin(cur.AccessToken, s.now(), s.refreshWindow) {
		return cur.AccessToken, nil
	}
	if err := s.refresh(ctx, false); err != nil {
		return "", err
	}
	return s.Current().AccessToken, nil
}

// RefreshTokens forces an access token refresh.
func (s *sessionService) RefreshTokens(ctx context.Context) error {
	return s.refresh(ctx, true)
}

// refresh swaps the access token. Concurrent callers are serialized, and a
// caller that finds the token already fresh returns without a call.
func (s *sessionService) refresh(ctx context.Context, force bool) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	cur := s.Current()
	if err := requireAuthenticated(cur); err != nil {
		return err
	}
	if !force && !client.ExpiresWithin(cur.AccessToken, s.now(), s.refreshWindow) {
		return nil
	}
	if cur.RefreshToken == "" {
		return &client.APIError{Op: client.OpRefresh, StatusCode: http.StatusUnauthorized, Message: client.FallbackMessage(client.OpRefresh)}
	}

	token, err := s.client.Refresh(ctx, cur.RefreshToken)
	if err != nil {
		s.log.Warn(ctx, "token refresh failed", "error", err)
		return err
	}
	next := cur.WithAccessToken(token)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.UserID != cur.UserID {
		return ErrNoSession
	}
	if err := s.store.save(ctx, next); err != nil {
		return err
	}
	s.current = next
	return nil
}
