package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records privileged admin actions on the message store
type AuditLog struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	ActorID        uuid.UUID      `json:"actor_id" db:"actor_id"`
	Action         string         `json:"action" db:"action"` // mark_read, mark_unread, delete
	MessageID      *uuid.UUID     `json:"message_id,omitempty" db:"message_id"`
	ConversationID *uuid.UUID     `json:"conversation_id,omitempty" db:"conversation_id"`
	TargetUserID   *uuid.UUID     `json:"target_user_id,omitempty" db:"target_user_id"`
	Metadata       map[string]any `json:"metadata,omitempty" db:"metadata"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}

const (
	AuditActionMarkRead   = "mark_read"
	AuditActionMarkUnread = "mark_unread"
	AuditActionDelete     = "delete"
)
