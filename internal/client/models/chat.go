package models

import (
	"time"

	"github.com/dmitrijs2005/tuniguard/internal/timex"
)

// Role is the sender of a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TranscriptEntry is one line of the chat transcript. Failed marks an
// assistant entry that reports an error instead of a reply.
type TranscriptEntry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Role      `json:"sender"`
	Failed    bool      `json:"failed,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatRequest is sent to POST /api/chat.
type ChatRequest struct {
	UserID  ID     `json:"user_id"`
	Message string `json:"message" validate:"max=1000"`
	ScanID  ID     `json:"scan_id,omitempty"`
}

func (ChatRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"message.max": "Message is too long (max 1000 characters)",
	}
}

// ChatReply is the response of POST /api/chat.
type ChatReply struct {
	ConvID             ID         `json:"conv_id"`
	Response           string     `json:"response"`
	Timestamp          timex.Time `json:"timestamp"`
	ConversationLength int        `json:"conversation_length"`
}
