package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/tuniguard/internal/client/models"
	"github.com/dmitrijs2005/tuniguard/internal/client/services"
)

const defaultHistoryLimit = 10

// requireAccount refuses guests before any prompt is shown.
func (a *App) requireAccount() error {
	if a.sessions.Current().Kind() == models.SessionGuest {
		return services.ErrGuestRestricted
	}
	return nil
}

// Scan submits a message for analysis. The content type may be given as the
// first argument; otherwise it is prompted for, defaulting to sms.
func (a *App) Scan(ctx context.Context, args []string) error {
	if err := a.requireAccount(); err != nil {
		return err
	}
	var contentType string
	if len(args) > 0 {
		contentType = args[0]
	} else {
		ct, err := getSimpleText(a.reader, "Content type (sms, call, app_message) [sms]", a.out)
		if err != nil {
			return err
		}
		contentType = ct
	}
	if strings.TrimSpace(contentType) == "" {
		contentType = string(models.ContentSMS)
	}

	content, err := getMultiline(a.reader, "Paste the message to scan", a.out)
	if err != nil {
		return err
	}

	a.println("🔍 Scanning…")
	res, err := a.scans.Scan(ctx, content, models.ContentType(strings.ToLower(strings.TrimSpace(contentType))))
	if err != nil {
		return err
	}
	printScanResult(a.out, res)
	return nil
}

// Show prints the server-side record of a scan; without an argument the
// latest scan is shown.
func (a *App) Show(ctx context.Context, args []string) error {
	var id string
	if len(args) > 0 {
		id = args[0]
	} else if last := a.scans.LastScanID(); !last.IsZero() {
		id = last.String()
	} else {
		v, err := getSimpleText(a.reader, "Scan ID", a.out)
		if err != nil {
			return err
		}
		id = v
	}

	d, err := a.scans.Detail(ctx, id)
	if err != nil {
		return err
	}
	printScanDetail(a.out, d)
	return nil
}

func (a *App) History(ctx context.Context, args []string) error {
	limit := defaultHistoryLimit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			a.println("Usage: history [limit]")
			return nil
		}
		limit = n
	}

	results, err := a.scans.History(ctx, limit)
	if err != nil {
		return err
	}
	printHistory(a.out, results)
	return nil
}

func (a *App) Chat(ctx context.Context, args []string) error {
	if err := a.requireAccount(); err != nil {
		return err
	}
	text := strings.Join(args, " ")
	if text == "" {
		v, err := getSimpleText(a.reader, "Ask TuniGuard", a.out)
		if err != nil {
			return err
		}
		text = v
	}

	entry, err := a.chat.Send(ctx, text)
	if entry != nil {
		fmt.Fprintf(a.out, "🤖 %s\n", entry.Text)
		return nil
	}
	return err
}

func (a *App) Transcript(ctx context.Context) error {
	printTranscript(a.out, a.chat.Transcript())
	return nil
}
