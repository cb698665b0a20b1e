// Package models defines the client-side data models of the TuniGuard CLI:
// the persisted session, request/response payloads of the HTTP API and
// the local transcript and report records.
package models

import (
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/tuniguard/internal/common"
	"github.com/dmitrijs2005/tuniguard/internal/timex"
)

// SessionKind classifies the active session.
type SessionKind int

const (
	SessionAbsent SessionKind = iota
	SessionGuest
	SessionAuthenticated
)

func (k SessionKind) String() string {
	switch k {
	case SessionGuest:
		return "guest"
	case SessionAuthenticated:
		return "authenticated"
	default:
		return "absent"
	}
}

var ErrMalformedSession = errors.New("malformed session")

// Session is the locally persisted identity. It is replaced as a whole,
// except that a token refresh swaps AccessToken.
type Session struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	AnonymizedID string    `json:"anonymized_id,omitempty"`
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	IsGuest      bool      `json:"is_guest,omitempty"`
	LoginTime    time.Time `json:"login_time"`
}

// NewGuestSession returns a local-only session with no tokens.
func NewGuestSession(now time.Time) *Session {
	return &Session{
		UserID:    common.GuestUserID,
		Username:  "Guest",
		IsGuest:   true,
		LoginTime: now.UTC(),
	}
}

// Kind reports the session kind; a nil session is absent.
func (s *Session) Kind() SessionKind {
	switch {
	case s == nil:
		return SessionAbsent
	case s.IsGuest:
		return SessionGuest
	default:
		return SessionAuthenticated
	}
}

// Validate checks that s is well formed: a user id is present, a guest
// uses the guest sentinel id, and an authenticated session has an access
// token.
func (s *Session) Validate() error {
	if s == nil || strings.TrimSpace(s.UserID) == "" {
		return ErrMalformedSession
	}
	if s.IsGuest {
		if s.UserID != common.GuestUserID {
			return ErrMalformedSession
		}
		return nil
	}
	if s.UserID == common.GuestUserID || s.AccessToken == "" {
		return ErrMalformedSession
	}
	return nil
}

// DisplayName is what the prompt shows.
func (s *Session) DisplayName() string {
	if s.Kind() == SessionGuest {
		return "Guest"
	}
	if s == nil {
		return ""
	}
	return s.Username
}

// WithAccessToken returns a copy of s carrying token.
func (s Session) WithAccessToken(token string) *Session {
	s.AccessToken = token
	return &s
}

// Credentials is the login request.
type Credentials struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

func (Credentials) ValidationMessages() map[string]string {
	return map[string]string{
		"notblank": "Please enter your username and password",
		"required": "Please enter your username and password",
	}
}

// LoginResult is the login response.
type LoginResult struct {
	UserID       ID     `json:"user_id"`
	Username     string `json:"username"`
	AnonymizedID string `json:"anonymized_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Message      string `json:"message,omitempty"`
}

// Regions are the governorates accepted at registration.
var Regions = []string{
	"Tunis", "Sfax", "Ariana", "Bizerte", "Sousse", "Monastir",
	"Kairouan", "Kasserine", "Sidi_Bouzid", "Gafsa", "Tozeur",
	"Kebili", "Tataouine", "Ben_Arous", "Manouba", "Nabeul",
}

// Carriers are the mobile operators accepted at registration.
var Carriers = []string{"Tunisie_Telecom", "Orange", "Ooredoo", "Other"}

// DefaultCity is sent when the user leaves the city blank.
const DefaultCity = "Unknown"

// Registration is the register form. PasswordConfirm never leaves the
// client.
type Registration struct {
	Username        string `json:"username" validate:"notblank"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Region          string `json:"region" validate:"required,oneof=Tunis Sfax Ariana Bizerte Sousse Monastir Kairouan Kasserine Sidi_Bouzid Gafsa Tozeur Kebili Tataouine Ben_Arous Manouba Nabeul"`
	Carrier         string `json:"carrier" validate:"required,oneof=Tunisie_Telecom Orange Ooredoo Other"`
	City            string `json:"city"`
}

func (Registration) ValidationMessages() map[string]string {
	return map[string]string{
		"notblank":                 "Please fill in all required fields",
		"required":                 "Please fill in all required fields",
		"password_confirm.eqfield": "Passwords do not match",
		"password.min":             "Password must be at least 6 characters",
		"region.oneof":             "Invalid region",
		"carrier.oneof":            "Invalid carrier",
	}
}

// RegistrationResult is the register response.
type RegistrationResult struct {
	UserID       ID         `json:"user_id"`
	Username     string     `json:"username"`
	AnonymizedID string     `json:"anonymized_id"`
	Region       string     `json:"region"`
	City         string     `json:"city"`
	Carrier      string     `json:"carrier"`
	Message      string     `json:"message,omitempty"`
	CreatedAt    timex.Time `json:"created_at"`
}

// PasswordChange is the change-password form.
type PasswordChange struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"password" validate:"required,min=6"`
	Confirm     string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

func (PasswordChange) ValidationMessages() map[string]string {
	return map[string]string{
		"required":                 "Please fill in all fields",
		"confirm_password.eqfield": "New passwords do not match",
		"password.min":             "New password must be at least 6 characters",
	}
}
