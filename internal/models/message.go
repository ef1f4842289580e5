package models

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID             uuid.UUID `json:"id" db:"id"`
	ConversationID uuid.UUID `json:"conversation_id" db:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id" db:"sender_id"`
	Content        string    `json:"content" db:"content"`
	AttachmentURL  *string   `json:"attachment_url,omitempty" db:"attachment_url"`
	AttachmentName *string   `json:"attachment_name,omitempty" db:"attachment_name"`
	// IsRead is the admin moderation flag only. Per-recipient read state
	// lives on the Participant row, not here.
	IsRead    bool      `json:"is_read" db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Sender *User `json:"sender,omitempty"`
}

// IsUnread reports whether a message created at createdAt is unread
// relative to a recipient's read watermark. A nil watermark means nothing
// has been read yet.
func IsUnread(createdAt time.Time, lastReadAt *time.Time) bool {
	return lastReadAt == nil || createdAt.After(*lastReadAt)
}

// InboxRow is one received message in the inbox projection. Every message is
// its own row; rows are not collapsed per conversation.
type InboxRow struct {
	MessageID      uuid.UUID `json:"message_id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Subject        string    `json:"subject"`
	Preview        string    `json:"preview"`
	SenderID       uuid.UUID `json:"sender_id"`
	SenderName     string    `json:"sender_name"`
	SenderEmail    string    `json:"sender_email"`
	Unread         bool      `json:"unread"`
	CreatedAt      time.Time `json:"created_at"`
}

// SentRow is one authored message in the sent projection
type SentRow struct {
	MessageID      uuid.UUID `json:"message_id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Subject        string    `json:"subject"`
	Preview        string    `json:"preview"`
	RecipientID    uuid.UUID `json:"recipient_id"`
	RecipientName  string    `json:"recipient_name"`
	RecipientEmail string    `json:"recipient_email"`
	CreatedAt      time.Time `json:"created_at"`
}

// ConversationSummary is the per-conversation entry of the unread summary
type ConversationSummary struct {
	ConversationID  uuid.UUID `json:"conversation_id"`
	Subject         string    `json:"subject"`
	UnreadCount     int       `json:"unread_count"`
	LastSenderName  string    `json:"last_sender_name"`
	LastMessageTime time.Time `json:"last_message_time"`
}

// UnreadSummary is the payload served to polling clients
type UnreadSummary struct {
	TotalUnread   int                   `json:"total_unread"`
	Notifications []ConversationSummary `json:"notifications"`
}

type SendMessageRequest struct {
	RecipientID uuid.UUID `json:"recipient_id" binding:"required"`
	Subject     string    `json:"subject" binding:"max=255"`
	Body        string    `json:"body" binding:"required,max=10000"`
}

type ReplyRequest struct {
	Body string `json:"body" binding:"required,max=10000"`
}

type MarkReadRequest struct {
	// MessageIDs are accepted for audit purposes; the effect is always
	// advancing the caller's conversation-level read watermark.
	MessageIDs     []uuid.UUID `json:"message_ids"`
	ConversationID uuid.UUID   `json:"conversation_id" binding:"required"`
}
