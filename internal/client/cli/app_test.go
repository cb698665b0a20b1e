package cli

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/tuniguard/internal/client/client"
	"github.com/dmitrijs2005/tuniguard/internal/client/config"
	"github.com/dmitrijs2005/tuniguard/internal/client/export"
	"github.com/dmitrijs2005/tuniguard/internal/client/services"
	"github.com/dmitrijs2005/tuniguard/internal/cryptox"
	"github.com/dmitrijs2005/tuniguard/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fake API ----

type fakeAPI struct {
	mu      sync.Mutex
	calls   map[string]int
	bearers map[string]string
	chat    map[string]any

	chatStatus int
	healthy    bool
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) hit(name string, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	f.bearers[name] = r.Header.Get("Authorization")
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) lastChat() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chat
}

func (f *fakeAPI) setChatStatus(status int) {
	f.mu.Lock()
	f.chatStatus = status
	f.mu.Unlock()
}

func (f *fakeAPI) setHealthy(ok bool) {
	f.mu.Lock()
	f.healthy = ok
	f.mu.Unlock()
}

func (f *fakeAPI) bearer(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bearers[name]
}

func newFakeAPI(t *testing.T) (*fakeAPI, string) {
	t.Helper()
	f := &fakeAPI{calls: map[string]int{}, bearers: map[string]string{}, chatStatus: http.StatusOK, healthy: true}

	r := chi.NewRouter()
	r.Post("/api/login", func(w http.ResponseWriter, r *http.Request) {
		f.hit("login", r)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"user_id": 42, "username": body["username"], "anonymized_id": "TN-42",
			"access_token": "acc", "refresh_token": "ref",
		})
	})
	r.Post("/api/register", func(w http.ResponseWriter, r *http.Request) {
		f.hit("register", r)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusCreated, map[string]any{
			"user_id": 43, "username": body["username"], "anonymized_id": "TN-43",
			"region": body["region"], "carrier": body["carrier"], "city": body["city"],
		})
	})
	r.Post("/api/logout", func(w http.ResponseWriter, r *http.Request) {
		f.hit("logout", r)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
	})
	r.Delete("/api/user/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.hit("delete", r)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Account deleted"})
	})
	r.Post("/api/scan", func(w http.ResponseWriter, r *http.Request) {
		f.hit("scan", r)
		writeJSON(w, http.StatusOK, map[string]any{
			"scan_id": "s-1", "threat_detected": true, "detection_score": 91.6,
			"threat_type": "prize_scam", "severity": "high", "advice": "Do not reply.",
			"explanation": "Unsolicited prize claim.", "red_flags": []string{"urgency"},
			"timestamp": "2026-05-01T10:00:00",
		})
	})
	r.Post("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		f.hit("chat", r)
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.chat = body
		status := f.chatStatus
		f.mu.Unlock()
		if status != http.StatusOK {
			writeJSON(w, status, map[string]string{"error": "Assistant down"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"response": "Never share your code.", "conversation_length": 2})
	})
	r.Get("/api/threats", func(w http.ResponseWriter, r *http.Request) {
		f.hit("threats", r)
		writeJSON(w, http.StatusOK, map[string]any{"total": 1, "threats": []map[string]any{
			{"threat_id": 1, "type": "fake_delivery", "category": r.URL.Query().Get("category"), "severity": "Medium", "description": "Parcel fee SMS"},
		}})
	})
	r.Get("/api/analytics/national", func(w http.ResponseWriter, r *http.Request) {
		f.hit("national", r)
		writeJSON(w, http.StatusOK, map[string]any{
			"period_days": 7, "total_scans": 120, "threats_detected": 30, "threat_percentage": 25,
			"most_common_threats": []map[string]any{{"threat_type": "prize_scam", "count": 12}},
		})
	})
	r.Get("/api/analytics/health", func(w http.ResponseWriter, r *http.Request) {
		f.hit("health", r)
		f.mu.Lock()
		ok := f.healthy
		f.mu.Unlock()
		status := "healthy"
		if !ok {
			status = "degraded"
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": status, "service": "analytics"})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return f, srv.URL
}

// ---- app wiring ----

type harness struct {
	cfg    *config.Config
	db     *sql.DB
	sealer cryptox.Sealer
	api    *fakeAPI
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api, url := newFakeAPI(t)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ServerURL = url
	cfg.DataDir = t.TempDir()
	cfg.AnalyticsInterval = time.Hour
	cfg.OnlineCheckInterval = time.Hour
	cfg.Export.Dir = filepath.Join(cfg.DataDir, "reports")

	db, err := client.InitDatabase(context.Background(), filepath.Join(cfg.DataDir, "tuniguard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sealer, err := cryptox.NewDeviceSealer(filepath.Join(cfg.DataDir, "device.key"), "tuniguard session")
	require.NoError(t, err)

	origTTY := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = origTTY })

	return &harness{cfg: cfg, db: db, sealer: sealer, api: api}
}

// run drives a fresh App over input and returns everything it printed.
func (h *harness) run(t *testing.T, input string) string {
	t.Helper()
	log := logging.NewDiscard()
	api, err := client.NewHTTPClient(h.cfg.ServerURL, 2*time.Second, log)
	require.NoError(t, err)

	sessions := services.NewSessionService(api, h.db, h.sealer, log)
	scans := services.NewScanService(sessions, api, h.db, log)
	svc := Services{
		Sessions: sessions,
		Scans:    scans,
		Chat:     services.NewChatService(sessions, api, scans, h.db, h.cfg.PersistChatErrors, log),
		Catalog:  services.NewCatalogService(api, log),
		Reports:  services.NewReportService(sessions, h.db, export.NewFileExporter(h.cfg.Export.Dir), log),
	}

	var out bytes.Buffer
	app := NewApp(h.cfg, svc, log, strings.NewReader(input), &out)
	require.NoError(t, app.Run(context.Background()))
	return out.String()
}

func lines(in ...string) string {
	return strings.Join(in, "\n") + "\n"
}

// ---- tests ----

func TestApp_FullSessionFlow(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, lines(
		"login", "amira", "secret1",
		"scan sms", "You won 1000 TND! Send your card code.", "",
		"chat is it safe?",
		"transcript",
		"whoami",
		"history",
		"export",
		"logout",
		"exit",
	))

	assert.Contains(t, out, "You are not logged in.")
	assert.Contains(t, out, "✅ Welcome, amira!")
	assert.Contains(t, out, "tuniguard (amira online)> ")
	assert.Contains(t, out, "⚠️ THREAT DETECTED!")
	assert.Contains(t, out, "Threat confidence score: 92/100")
	assert.Contains(t, out, "Scan ID: s-1")
	assert.Contains(t, out, "🤖 TuniGuard is typing…")
	assert.Contains(t, out, "🤖 Never share your code.")
	assert.Contains(t, out, "You: is it safe?")
	assert.Contains(t, out, "TuniGuard: Never share your code.")
	assert.Contains(t, out, "User ID: 42")
	assert.Contains(t, out, "Anonymized ID: TN-42")
	assert.Contains(t, out, "threat   92/100  High")
	assert.Contains(t, out, "📄 Report saved to "+filepath.Join(h.cfg.Export.Dir, "reports"))
	assert.Contains(t, out, "👋 Logged out.")
	assert.Contains(t, out, "Bye!")

	assert.Equal(t, 1, h.api.count("login"))
	assert.Equal(t, 1, h.api.count("scan"))
	assert.Equal(t, "Bearer acc", h.api.bearer("scan"))
	assert.Equal(t, 1, h.api.count("chat"))
	chat := h.api.lastChat()
	assert.Equal(t, "s-1", chat["scan_id"])
	assert.Equal(t, "is it safe?", chat["message"])
	assert.EqualValues(t, 42, chat["user_id"])
	assert.Equal(t, 1, h.api.count("logout"))
	assert.Equal(t, "Bearer acc", h.api.bearer("logout"))
}

func TestApp_RestoresSessionAndTranscript(t *testing.T) {
	h := newHarness(t)
	h.run(t, lines("login", "amira", "secret1", "chat hello", "exit"))

	out := h.run(t, lines("whoami", "transcript", "exit"))
	assert.Contains(t, out, "Welcome back, amira!")
	assert.Contains(t, out, "Restored 2 chat messages")
	assert.Contains(t, out, "You: hello")
	assert.Equal(t, 1, h.api.count("login"))
}

func TestApp_LoginValidationAndRejection(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, lines(
		"login", "", "secret1",
		"login", "amira", "wrong",
		"exit",
	))
	assert.Contains(t, out, "⚠️ Please enter your username and password")
	assert.Contains(t, out, "❌ Invalid credentials")
	assert.Equal(t, 1, h.api.count("login"))
}

func TestApp_GuestCannotScanOrChat(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, lines(
		"guest",
		"scan sms",
		"chat hello",
		"whoami",
		"exit",
	))
	assert.Contains(t, out, "👋 Continuing as Guest.")
	assert.Contains(t, out, "tuniguard (Guest online)> ")
	assert.Contains(t, out, "This feature requires an account.")
	assert.Contains(t, out, "Guest (local only)")
	assert.Zero(t, h.api.count("scan"))
	assert.Zero(t, h.api.count("chat"))
}

func TestApp_ChatFailureShowsErrorEntry(t *testing.T) {
	h := newHarness(t)
	h.api.setChatStatus(http.StatusInternalServerError)
	out := h.run(t, lines("login", "amira", "secret1", "chat hello", "transcript", "exit"))
	assert.Contains(t, out, "🤖 ❌ Assistant down")
	assert.Contains(t, out, "TuniGuard: ❌ Assistant down")
}

func TestApp_EmptyChatMakesNoCall(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, lines("login", "amira", "secret1", "chat", "   ", "exit"))
	assert.Contains(t, out, "Please type a message.")
	assert.Zero(t, h.api.count("chat"))
}

func TestApp_RegisterMismatchMakesNoCall(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, lines("register", "amira", "secret1", "secret2", "Sfax", "Orange", "", "exit"))
	assert.Contains(t, out, "⚠️ Passwords do not match")
	assert.Zero(t, h.api.count("register"))
	assert.Zero(t, h.api.count("login"))
}

func TestApp_RegisterThenAutoLogin(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, lines("register", "amira", "secret1", "secret1", "Sfax", "Orange", "", "whoami", "exit"))
	assert.Contains(t, out, "✅ Account created! Region: Sfax, Carrier: Orange")
	assert.Contains(t, out, "✅ Welcome, amira!")
	assert.Equal(t, 1, h.api.count("register"))
	assert.Equal(t, 1, h.api.count("login"))
}

func TestApp_DeleteAccount(t *testing.T) {
	t.Run("empty password cancels", func(t *testing.T) {
		h := newHarness(t)
		out := h.run(t, lines("login", "amira", "secret1", "delete-account", "", "exit"))
		assert.Contains(t, out, "Cancelled.")
		assert.Zero(t, h.api.count("delete"))
	})

	t.Run("declined confirmation cancels", func(t *testing.T) {
		h := newHarness(t)
		out := h.run(t, lines("login", "amira", "secret1", "delete-account", "secret1", "n", "exit"))
		assert.Contains(t, out, "Cancelled.")
		assert.Zero(t, h.api.count("delete"))
	})

	t.Run("confirmed", func(t *testing.T) {
		h := newHarness(t)
		out := h.run(t, lines("login", "amira", "secret1", "delete-account", "secret1", "yes", "whoami", "exit"))
		assert.Contains(t, out, "✅ Account deleted successfully")
		assert.Contains(t, out, "Please log in first")
		assert.Equal(t, 1, h.api.count("delete"))
		assert.Equal(t, "Bearer acc", h.api.bearer("delete"))
	})
}

func TestApp_CatalogCommands(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, lines("threats category=sms", "threats bogus", "stats", "stats 30", "exit"))
	assert.Contains(t, out, "⚠️ fake_delivery [sms] Medium")
	assert.Contains(t, out, "Usage: threats")
	assert.Contains(t, out, "National statistics (last 7 days)")
	assert.Contains(t, out, "prize_scam: 12 detected")
	assert.Equal(t, 1, h.api.count("threats"))
	assert.GreaterOrEqual(t, h.api.count("national"), 2)
}

func TestApp_OfflinePrompt(t *testing.T) {
	h := newHarness(t)
	h.api.setHealthy(false)
	out := h.run(t, lines("exit"))
	assert.Contains(t, out, "tuniguard (offline)> ")
}
