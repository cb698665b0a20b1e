package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/tuniguard/internal/client/models"
	"github.com/dmitrijs2005/tuniguard/internal/common"
)

// getSimpleText, getPassword, getMultiline and getConfirmation are
// indirections used to facilitate testing. They point to interactive input
// helpers and can be swapped in tests.
var (
	getSimpleText   = GetSimpleText
	getPassword     = GetPassword
	getMultiline    = GetMultiline
	getConfirmation = GetConfirmation
)

// Login prompts for credentials and establishes a session. Validation and
// server errors are returned unchanged.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	return a.login(ctx, models.Credentials{Username: username, Password: string(password)})
}

func (a *App) login(ctx context.Context, cr models.Credentials) error {
	s, err := a.sessions.Establish(ctx, cr)
	if err != nil {
		return err
	}
	a.printf("✅ Welcome, %s!\n", s.DisplayName())
	a.loadTranscript(ctx)
	return nil
}

// Register prompts for the registration form, creates the account and
// logs in with the same credentials.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Choose a username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Choose a password (min 6 characters)", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirm, err := getPassword(a.reader, "Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	region, err := getSimpleText(a.reader, "Region ("+strings.Join(models.Regions, ", ")+")", a.out)
	if err != nil {
		return err
	}
	carrier, err := getSimpleText(a.reader, "Carrier ("+strings.Join(models.Carriers, ", ")+")", a.out)
	if err != nil {
		return err
	}
	city, err := getSimpleText(a.reader, "City (optional)", a.out)
	if err != nil {
		return err
	}

	r := models.Registration{
		Username:        username,
		Password:        string(password),
		PasswordConfirm: string(confirm),
		Region:          region,
		Carrier:         carrier,
		City:            city,
	}
	res, err := a.sessions.Register(ctx, r)
	if err != nil {
		return err
	}
	a.printf("✅ Account created! Region: %s, Carrier: %s\n", res.Region, res.Carrier)
	if res.AnonymizedID != "" {
		a.printf("Your anonymized id: %s\n", res.AnonymizedID)
	}

	return a.login(ctx, models.Credentials{Username: r.Username, Password: r.Password})
}

// Guest starts a local-only session.
func (a *App) Guest(ctx context.Context) error {
	if _, err := a.sessions.EstablishGuest(ctx); err != nil {
		return err
	}
	a.loadTranscript(ctx)
	a.println("👋 Continuing as Guest. Scanning and chat require an account.")
	return nil
}

// Logout ends the session. The transcript stays on this device.
func (a *App) Logout(ctx context.Context) error {
	err := a.sessions.Teardown(ctx)
	a.loadTranscript(ctx)
	if err != nil {
		return err
	}
	a.println("👋 Logged out.")
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	cur := a.sessions.Current()
	if cur == nil {
		a.println("Not logged in.")
		return nil
	}
	if cur.Kind() == models.SessionGuest {
		a.println("Guest (local only)")
		return nil
	}
	a.printf("Username: %s\n", cur.Username)
	a.printf("User ID: %s\n", cur.UserID)
	if cur.AnonymizedID != "" {
		a.printf("Anonymized ID: %s\n", cur.AnonymizedID)
	}
	a.printf("Logged in since: %s\n", formatTime(cur.LoginTime))
	return nil
}

func (a *App) Passwd(ctx context.Context) error {
	if err := a.requireAccount(); err != nil {
		return err
	}
	oldPassword, err := getPassword(a.reader, "Current password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(oldPassword)
	newPassword, err := getPassword(a.reader, "New password (min 6 characters)", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(newPassword)
	confirm, err := getPassword(a.reader, "Confirm new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := a.sessions.ChangePassword(ctx, string(oldPassword), string(newPassword), string(confirm)); err != nil {
		return err
	}
	a.println("✅ Password changed successfully")
	return nil
}

// promptConfirmer asks for the account deletion confirmations on the terminal.
type promptConfirmer struct {
	a *App
}

func (c promptConfirmer) ConfirmPassword(ctx context.Context) (string, error) {
	pw, err := getPassword(c.a.reader, "Enter your password to confirm account deletion (This cannot be undone)", c.a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

func (c promptConfirmer) ConfirmDeletion(ctx context.Context) (bool, error) {
	return getConfirmation(c.a.reader, "⚠️ Are you absolutely sure? This will permanently delete your account and all data!", c.a.out)
}

func (a *App) DeleteAccount(ctx context.Context) error {
	if err := a.sessions.DeleteAccount(ctx, promptConfirmer{a: a}); err != nil {
		return err
	}
	a.loadTranscript(ctx)
	a.println("✅ Account deleted successfully")
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	if err := a.sessions.RefreshTokens(ctx); err != nil {
		return err
	}
	a.println("✅ Access token refreshed")
	return nil
}

func (a *App) Export(ctx context.Context) error {
	loc, err := a.reports.Export(ctx)
	if err != nil {
		return err
	}
	a.printf("📄 Report saved to %s\n", loc)
	return nil
}
