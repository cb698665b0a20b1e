package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/tuniguard/internal/client/client"
	"github.com/dmitrijs2005/tuniguard/internal/client/models"
	"github.com/dmitrijs2005/tuniguard/internal/client/repositories/transcripts"
	"github.com/dmitrijs2005/tuniguard/internal/logging"
	"github.com/dmitrijs2005/tuniguard/internal/validatex"
	"github.com/google/uuid"
)

// ChatState is the submission state of the chat.
type ChatState int

const (
	ChatIdle ChatState = iota
	ChatAwaitingReply
)

func (s ChatState) String() string {
	if s == ChatAwaitingReply {
		return "awaiting-reply"
	}
	return "idle"
}

// ConnectionErrorEntry is the assistant entry appended on a connectivity failure.
const ConnectionErrorEntry = "⚠️ " + client.ConnectionErrorMessage

// ChatService holds the transcript of the current user and talks to the
// assistant.
//
// The transcript is append-only. Entries of authenticated users are
// persisted and replayed by Load; a guest never chats.
type ChatService interface {
	Load(ctx context.Context) ([]models.TranscriptEntry, error)
	// Send appends the user entry, calls the assistant and appends the
	// reply. On a call failure the appended error entry is returned along
	// with the error.
	Send(ctx context.Context, text string) (*models.TranscriptEntry, error)
	Transcript() []models.TranscriptEntry
	State() ChatState
	// SetObserver registers fn to be called on each state transition.
	SetObserver(fn func(ChatState))
	Clear(ctx context.Context) error
}

type chatService struct {
	auth          Authenticator
	client        client.Client
	scans         ScanService
	repo          transcripts.Repository
	log           logging.Logger
	persistErrors bool
	now           func() time.Time

	pending atomic.Int32

	mu       sync.Mutex
	owner    string
	entries  []models.TranscriptEntry
	observer func(ChatState)
}

// NewChatService constructs a ChatService. Scan ids from scans are sent as
// context; failed replies are persisted only when persistErrors is set.
func NewChatService(auth Authenticator, c client.Client, scans ScanService, db *sql.DB, persistErrors bool, log logging.Logger) ChatService {
	return &chatService{
		auth:          auth,
		client:        c,
		scans:         scans,
		repo:          transcripts.NewSQLiteRepository(db),
		log:           log.With("service", "chat"),
		persistErrors: persistErrors,
		now:           time.Now,
	}
}

// Load resets the in-memory transcript to the current session and, for an
// authenticated user, replays the persisted entries in send order.
func (c *chatService) Load(ctx context.Context) ([]models.TranscriptEntry, error) {
	cur := c.auth.Current()
	if cur.Kind() != models.SessionAuthenticated {
		c.reset("")
		return nil, nil
	}

	entries, err := c.repo.List(ctx, cur.UserID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.owner = cur.UserID
	c.entries = entries
	c.mu.Unlock()
	return c.Transcript(), nil
}

func (c *chatService) reset(owner string) {
	c.mu.Lock()
	c.owner = owner
	c.entries = nil
	c.mu.Unlock()
}

func (c *chatService) Send(ctx context.Context, text string) (*models.TranscriptEntry, error) {
	cur := c.auth.Current()
	if err := requireAuthenticated(cur); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	req := models.ChatRequest{
		UserID:  models.ID(cur.UserID),
		Message: text,
		ScanID:  c.scans.LastScanID(),
	}
	if err := validatex.Validate(req); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.owner != cur.UserID {
		c.owner, c.entries = cur.UserID, nil
	}
	c.mu.Unlock()

	if _, err := c.append(ctx, cur.UserID, text, models.RoleUser, false, true); err != nil {
		return nil, err
	}

	c.begin()
	defer c.end()

	reply, err := c.ask(ctx, req)
	if err != nil {
		c.log.Warn(ctx, "chat call failed", "error", err)
		entry, aerr := c.append(ctx, cur.UserID, errorEntryText(err), models.RoleAssistant, true, c.persistErrors)
		if aerr != nil {
			c.log.Error(ctx, "failed to persist chat error entry", "error", aerr)
		}
		return entry, err
	}

	return c.append(ctx, cur.UserID, reply.Response, models.RoleAssistant, false, true)
}

func (c *chatService) ask(ctx context.Context, req models.ChatRequest) (*models.ChatReply, error) {
	token, err := c.auth.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return c.client.Chat(ctx, token, req)
}

// append persists the entry first when persist is set, so a failed write
// leaves the in-memory transcript unchanged.
func (c *chatService) append(ctx context.Context, userID, text string, sender models.Role, failed, persist bool) (*models.TranscriptEntry, error) {
	e := models.TranscriptEntry{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    sender,
		Failed:    failed,
		Timestamp: c.now().UTC(),
	}
	if persist {
		if err := c.repo.Append(ctx, userID, e); err != nil {
			if failed {
				c.appendMemory(userID, e)
				return &e, err
			}
			return nil, err
		}
	}
	c.appendMemory(userID, e)
	return &e, nil
}

func (c *chatService) appendMemory(userID string, e models.TranscriptEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.owner == userID {
		c.entries = append(c.entries, e)
	}
}

func errorEntryText(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		return "❌ " + apiErr.Message
	case errors.Is(err, client.ErrUnavailable):
		return ConnectionErrorEntry
	default:
		return "❌ " + client.FallbackMessage(client.OpChat)
	}
}

func (c *chatService) begin() {
	if c.pending.Add(1) == 1 {
		c.notify(ChatAwaitingReply)
	}
}

func (c *chatService) end() {
	if c.pending.Add(-1) == 0 {
		c.notify(ChatIdle)
	}
}

func (c *chatService) notify(st ChatState) {
	c.mu.Lock()
	fn := c.observer
	c.mu.Unlock()
	if fn != nil {
		fn(st)
	}
}

func (c *chatService) SetObserver(fn func(ChatState)) {
	c.mu.Lock()
	c.observer = fn
	c.mu.Unlock()
}

func (c *chatService) State() ChatState {
	if c.pending.Load() > 0 {
		return ChatAwaitingReply
	}
	return ChatIdle
}

// Transcript returns a copy of the in-memory transcript.
func (c *chatService) Transcript() []models.TranscriptEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.TranscriptEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Clear deletes the current user's transcript.
func (c *chatService) Clear(ctx context.Context) error {
	cur := c.auth.Current()
	if err := requireAuthenticated(cur); err != nil {
		return err
	}
	if err := c.repo.Clear(ctx, cur.UserID); err != nil {
		return err
	}
	c.reset(cur.UserID)
	return nil
}
