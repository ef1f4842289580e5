package models

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	ID        uuid.UUID `json:"id" db:"id"`
	PairKey   string    `json:"-" db:"pair_key"`
	Subject   *string   `json:"subject,omitempty" db:"subject"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Participants []Participant `json:"participants,omitempty"`
	Messages     []Message     `json:"messages,omitempty"`
}

// Participant is the per-user membership row of a conversation. It carries
// the user's read state: last_read_at is the authoritative watermark, and
// unread_count is a denormalized counter maintained by atomic SQL updates.
type Participant struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	ConversationID uuid.UUID  `json:"conversation_id" db:"conversation_id"`
	UserID         uuid.UUID  `json:"user_id" db:"user_id"`
	UnreadCount    int        `json:"unread_count" db:"unread_count"`
	LastReadAt     *time.Time `json:"last_read_at,omitempty" db:"last_read_at"`
	JoinedAt       time.Time  `json:"joined_at" db:"joined_at"`

	User *User `json:"user,omitempty"`
}

// PairKey builds the canonical key for a two-party conversation. The key is
// identical for (a,b) and (b,a); a unique index on it guarantees at most one
// conversation per pair even under concurrent first sends.
func PairKey(a, b uuid.UUID) string {
	as, bs := a.String(), b.String()
	if as > bs {
		as, bs = bs, as
	}
	return as + ":" + bs
}
