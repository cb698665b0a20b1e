package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/tuniguard/internal/client/config"
	"github.com/dmitrijs2005/tuniguard/internal/client/models"
	"github.com/dmitrijs2005/tuniguard/internal/client/services"
	"github.com/dmitrijs2005/tuniguard/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

// Services groups the application services the CLI drives.
type Services struct {
	Sessions services.SessionService
	Scans    services.ScanService
	Chat     services.ChatService
	Catalog  services.CatalogService
	Reports  services.ReportService
}

type App struct {
	config   *config.Config
	sessions services.SessionService
	scans    services.ScanService
	chat     services.ChatService
	catalog  services.CatalogService
	reports  services.ReportService
	log      logging.Logger
	reader   *bufio.Reader
	out      io.Writer

	mu    sync.Mutex
	mode  Mode
	stats *models.NationalStats
}

// NewApp builds the CLI over in and out. All output, including the
// watchers', is serialized onto out.
func NewApp(c *config.Config, svc Services, log logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		config:   c,
		sessions: svc.Sessions,
		scans:    svc.Scans,
		chat:     svc.Chat,
		catalog:  svc.Catalog,
		reports:  svc.Reports,
		log:      log,
		reader:   bufio.NewReader(in),
		out:      &syncWriter{w: out},
	}
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) getMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()
	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) isLoggedIn() bool {
	return a.sessions.Current() != nil
}

// getStatus renders the prompt status, e.g. "(amira online)".
func (a *App) getStatus() string {
	s := ""
	if cur := a.sessions.Current(); cur != nil {
		s = cur.DisplayName() + " "
	}
	if mode := a.getMode(); mode != "" {
		s += string(mode)
	}
	if s == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", s)
}

// Run restores the previous session, starts the watchers and blocks in the
// command loop until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.println("Welcome to TuniGuard CLI (type 'help' for commands)")

	if cur, err := a.sessions.Restore(ctx); err != nil {
		a.println("You are not logged in. Use 'login', 'register' or 'guest' to start.")
	} else {
		a.printf("Welcome back, %s!\n", cur.DisplayName())
		a.loadTranscript(ctx)
	}

	a.chat.SetObserver(a.onChatState)

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.checkOnline(wctx)
	go a.StartOnlineStatusWatcher(wctx, a.config.OnlineCheckInterval)
	go a.catalog.WatchNational(wctx, a.config.AnalyticsInterval, a.config.AnalyticsDays, a.onNationalStats)

	done := make(chan struct{})
	go func() {
		defer close(done)
		runREPL(ctx, a, a.getStatus, a.reader, a.out)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		a.println("\nBye!")
	}
	return nil
}

// StartOnlineStatusWatcher probes the health endpoint every interval and
// flips the prompt between online and offline.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.catalog.Ping(pctx)
	cancel()
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		a.setMode(ModeOffline)
	} else {
		a.setMode(ModeOnline)
	}
}

func (a *App) onNationalStats(stats *models.NationalStats, err error) {
	if err != nil {
		return
	}
	a.mu.Lock()
	a.stats = stats
	a.mu.Unlock()
}

func (a *App) cachedStats() *models.NationalStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

func (a *App) onChatState(s services.ChatState) {
	if s == services.ChatAwaitingReply {
		a.println("🤖 TuniGuard is typing…")
	}
}

func (a *App) loadTranscript(ctx context.Context) {
	entries, err := a.chat.Load(ctx)
	if err != nil {
		a.log.Warn(ctx, "failed to load transcript", "error", err)
		return
	}
	if len(entries) > 0 {
		a.printf("Restored %d chat messages (type 'transcript' to view).\n", len(entries))
	}
}
