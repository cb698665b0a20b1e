package services

import (
	"errors"

	"github.com/dmitrijs2005/tuniguard/internal/client/models"
)

var (
	// ErrNoSession is returned when an operation needs a session and none is active.
	ErrNoSession = errors.New("no active session")

	// ErrGuestRestricted is returned when a guest attempts an authenticated operation.
	ErrGuestRestricted = errors.New("operation requires an account")

	// ErrCancelled is returned when the user declines a confirmation.
	ErrCancelled = errors.New("cancelled")

	// ErrEmptyMessage is returned for a blank chat submission.
	ErrEmptyMessage = errors.New("empty message")
)

// requireAuthenticated rejects absent and guest sessions before any network call.
func requireAuthenticated(s *models.Session) error {
	switch s.Kind() {
	case models.SessionAbsent:
		return ErrNoSession
	case models.SessionGuest:
		return ErrGuestRestricted
	}
	return nil
}
